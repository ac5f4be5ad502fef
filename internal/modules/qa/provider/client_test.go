package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	appcfg "github.com/selam-edu/core/internal/config"
	"go.uber.org/zap"
)

func compatConfig(endpoint string) appcfg.AIConfig {
	return appcfg.AIConfig{
		Providers: []appcfg.AIProvider{{
			ID:       "local",
			Type:     "OpenAI-Compatible",
			APIKey:   "test-key",
			Endpoint: endpoint,
			Enabled:  true,
		}},
		ChatModelCandidates: []appcfg.ModelAssignment{
			{ProviderID: "local", Model: "test-model"},
		},
	}
}

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeChatReply(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
}

func TestGenerateOpenAICompatible(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		writeChatReply(w, "  Timkat commemorates the baptism of Christ.  ")
	})

	c := NewClient(compatConfig(srv.URL), 2, zap.NewNop())
	resp, err := c.Generate(context.Background(), "system", "user question")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "Timkat commemorates the baptism of Christ." {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.ModelID != "test-model" {
		t.Fatalf("unexpected model id %q", resp.ModelID)
	}
}

func TestGenerateRetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream overloaded", http.StatusInternalServerError)
			return
		}
		writeChatReply(w, "recovered answer")
	})

	c := NewClient(compatConfig(srv.URL), 2, zap.NewNop())
	resp, err := c.Generate(context.Background(), "", "q")
	if err != nil {
		t.Fatalf("generate after retries: %v", err)
	}
	if resp.Text != "recovered answer" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGenerateEmptyTextIsTransient(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeChatReply(w, "   ")
			return
		}
		writeChatReply(w, "real answer")
	})

	c := NewClient(compatConfig(srv.URL), 1, zap.NewNop())
	resp, err := c.Generate(context.Background(), "", "q")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "real answer" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
}

func TestGeneratePermanentErrorAborts(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	c := NewClient(compatConfig(srv.URL), 3, zap.NewNop())
	_, err := c.Generate(context.Background(), "", "q")
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("permanent error must not retry, got %d calls", got)
	}
}

func TestGenerateModelNotFoundFallsBack(t *testing.T) {
	good := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChatReply(w, "fallback answer")
	})
	bad := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	})

	cfg := appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "bad", Type: "OpenAI-Compatible", APIKey: "k", Endpoint: bad.URL, Enabled: true},
			{ID: "good", Type: "OpenAI-Compatible", APIKey: "k", Endpoint: good.URL, Enabled: true},
		},
		ChatModelCandidates: []appcfg.ModelAssignment{
			{ProviderID: "bad", Model: "missing-model"},
			{ProviderID: "good", Model: "working-model"},
		},
	}
	c := NewClient(cfg, 0, zap.NewNop())

	resp, err := c.Generate(context.Background(), "", "q")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "fallback answer" || resp.ModelID != "working-model" {
		t.Fatalf("expected fallback candidate, got %+v", resp)
	}

	// The working candidate is remembered for the next call.
	resp, err = c.Generate(context.Background(), "", "q")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if resp.ModelID != "working-model" {
		t.Fatalf("expected remembered candidate, got %q", resp.ModelID)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	c := NewClient(appcfg.AIConfig{}, 0, zap.NewNop())
	_, err := c.Generate(context.Background(), "", "q")
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestEmbed(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	})

	cfg := compatConfig(srv.URL)
	cfg.EmbeddingModel = appcfg.ModelAssignment{ProviderID: "local", Model: "embed-model"}
	c := NewClient(cfg, 0, zap.NewNop())

	vec, err := c.Embed(context.Background(), "Timkat")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(vec))
	}
}

func TestEmbedNotConfigured(t *testing.T) {
	c := NewClient(appcfg.AIConfig{}, 0, zap.NewNop())
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error without embedding model")
	}
}

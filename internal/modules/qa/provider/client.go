// Package provider invokes the configured LLM services with timeout,
// retry and candidate-model fallback.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	appcfg "github.com/selam-edu/core/internal/config"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	"go.uber.org/zap"
)

const (
	maxOutputTokens  = 600
	backoffBase      = 100 * time.Millisecond
	embedHTTPTimeout = 10 * time.Second
)

// Response is the parsed outcome of one successful generation.
type Response struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	FinishReason string `json:"finish_reason"`
	LatencyMS    int64  `json:"latency_ms"`
}

// Generator is what the pipeline depends on; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrExhausted means every candidate failed or the deadline elapsed.
var ErrExhausted = errors.New("all provider candidates exhausted")

var errEmptyResponse = errors.New("empty response from provider")

// Client walks the ordered candidate list, initializing models lazily and
// remembering the first one that works.
type Client struct {
	ai         appcfg.AIConfig
	candidates []appcfg.ModelAssignment
	maxRetries int
	log        *zap.Logger

	mu      sync.Mutex
	current int
	models  map[int]jetapi.LanguageModel

	httpc *http.Client
}

func NewClient(ai appcfg.AIConfig, maxRetries int, log *zap.Logger) *Client {
	return &Client{
		ai:         ai,
		candidates: ai.ChatModelCandidates,
		maxRetries: maxRetries,
		log:        log,
		current:    -1,
		models:     make(map[int]jetapi.LanguageModel),
		httpc:      &http.Client{},
	}
}

// Generate calls the current candidate under the caller's deadline.
// Attempts are strictly sequential: transient failures retry with
// exponential backoff, not-found errors advance to the next candidate.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error) {
	start := time.Now()

	order := c.candidateOrder()
	if len(order) == 0 {
		return Response{}, fmt.Errorf("%w: no chat model candidates configured", ErrExhausted)
	}

	var lastErr error
	for _, idx := range order {
		assignment := c.candidates[idx]
		prov := c.ai.ProviderByID(assignment.ProviderID)
		if prov == nil || !prov.Enabled {
			continue
		}

		text, finish, err := c.generateWithRetry(ctx, idx, prov, assignment.Model, systemPrompt, userPrompt)
		if err == nil {
			c.rememberCurrent(idx)
			return Response{
				Text:         strings.TrimSpace(text),
				ModelID:      assignment.Model,
				FinishReason: finish,
				LatencyMS:    time.Since(start).Milliseconds(),
			}, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if isNotFoundErr(err) {
			c.log.Warn("model not found, trying next candidate",
				zap.String("model", assignment.Model),
				zap.Error(err))
			continue
		}
		break
	}

	if lastErr == nil {
		lastErr = errors.New("no usable provider candidate")
	}
	return Response{}, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

func (c *Client) generateWithRetry(ctx context.Context, idx int, prov *appcfg.AIProvider, modelID, systemPrompt, userPrompt string) (string, string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := backoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, finish, err := c.generateOnce(ctx, idx, prov, modelID, systemPrompt, userPrompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyResponse
		}
		if err == nil {
			return text, finish, nil
		}

		lastErr = err
		if ctx.Err() != nil || isNotFoundErr(err) || isPermanentErr(err) {
			return "", "", err
		}
	}
	return "", "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, idx int, prov *appcfg.AIProvider, modelID, systemPrompt, userPrompt string) (string, string, error) {
	if isOpenAICompatibleProviderType(prov.Type) {
		text, err := c.callChatCompletions(ctx, prov, modelID, systemPrompt, userPrompt)
		return text, "stop", err
	}

	model, err := c.modelFor(idx, prov, modelID)
	if err != nil {
		return "", "", err
	}

	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(systemPrompt, userPrompt),
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(maxOutputTokens),
	)
	if err != nil {
		return "", "", err
	}
	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", "", err
	}
	return text, "stop", nil
}

func (c *Client) modelFor(idx int, prov *appcfg.AIProvider, modelID string) (jetapi.LanguageModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if model, ok := c.models[idx]; ok {
		return model, nil
	}
	model, err := buildLanguageModel(prov, modelID)
	if err != nil {
		return nil, err
	}
	c.models[idx] = model
	return model, nil
}

// candidateOrder starts from the remembered working candidate, then the
// remaining candidates in configuration order.
func (c *Client) candidateOrder() []int {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	order := make([]int, 0, len(c.candidates))
	if current >= 0 && current < len(c.candidates) {
		order = append(order, current)
	}
	for i := range c.candidates {
		if i != current {
			order = append(order, i)
		}
	}
	return order
}

func (c *Client) rememberCurrent(idx int) {
	c.mu.Lock()
	c.current = idx
	c.mu.Unlock()
}

func buildPromptMessages(systemPrompt, userPrompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(userPrompt)})
	return messages
}

func extractTextFromResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}
	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}
	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func isNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "not_found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "404")
}

func isPermanentErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api key") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "401") ||
		strings.Contains(msg, "403")
}

// callChatCompletions is the OpenAI-compatible HTTP path for providers
// without SDK support.
func (c *Client) callChatCompletions(ctx context.Context, prov *appcfg.AIProvider, modelID, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(prov.APIKey) == "" {
		return "", errors.New("AI provider api key is empty")
	}

	endpoint := normalizeOpenAICompatibleEndpoint(prov.Endpoint)
	if modelID == "" {
		modelID = strings.TrimSpace(prov.DefaultModel)
	}

	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userPrompt})

	body, _ := json.Marshal(map[string]interface{}{
		"model":      modelID,
		"messages":   messages,
		"max_tokens": maxOutputTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(prov.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("chat completions failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", fmt.Errorf("chat completions error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

// Embed obtains an embedding over the OpenAI-compatible embeddings
// endpoint of the configured embedding provider. Failures return an
// error; callers degrade to empty retrieval context.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	assignment := c.ai.EmbeddingModel
	if assignment.ProviderID == "" {
		return nil, errors.New("no embedding model configured")
	}
	prov := c.ai.ProviderByID(assignment.ProviderID)
	if prov == nil || !prov.Enabled {
		return nil, errors.New("embedding provider not available")
	}

	endpoint := normalizeOpenAICompatibleEndpoint(prov.Endpoint)
	body, _ := json.Marshal(map[string]interface{}{
		"model": assignment.Model,
		"input": text,
	})

	ctx, cancel := context.WithTimeout(ctx, embedHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(prov.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("embeddings failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, errors.New("empty embedding from provider")
	}
	return result.Data[0].Embedding, nil
}

package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	appcfg "github.com/selam-edu/core/internal/config"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	wmodels "github.com/weaviate/weaviate/entities/models"
)

// NewWeaviateClient builds a client from the knowledge base configuration.
func NewWeaviateClient(cfg appcfg.KnowledgeBaseConfig) (*weaviate.Client, error) {
	host := strings.TrimSpace(cfg.Host)
	scheme := cfg.Scheme
	if strings.HasPrefix(host, "https://") {
		scheme = "https"
		host = strings.TrimPrefix(host, "https://")
	} else if strings.HasPrefix(host, "http://") {
		scheme = "http"
		host = strings.TrimPrefix(host, "http://")
	}
	if host == "" {
		return nil, fmt.Errorf("knowledge base host is empty")
	}
	return weaviate.NewClient(weaviate.Config{
		Host:   host,
		Scheme: scheme,
	})
}

// chunkQueryResponse mirrors the GraphQL shape for the doctrine chunk class.
type chunkQueryResponse struct {
	Get map[string][]chunkResult `json:"Get"`
}

type chunkResult struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	Additional struct {
		Certainty float64 `json:"certainty"`
	} `json:"_additional"`
}

func (r *Retriever) searchChunks(ctx context.Context, vector []float32, f Filters, k int) ([]Item, error) {
	nearVector := r.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	fields := []graphql.Field{
		{Name: "title"},
		{Name: "category"},
		{Name: "content"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}

	query := r.client.GraphQL().Get().
		WithClassName(r.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k)

	if where := buildWhere(f); where != nil {
		query = query.WithWhere(where)
	}

	result, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge base search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("knowledge base search: %s", result.Errors[0].Message)
	}

	parsed, err := parseGraphQLResponse[chunkQueryResponse](result)
	if err != nil {
		return nil, err
	}

	chunks := parsed.Get[r.className]
	items := make([]Item, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, Item{
			Title:    c.Title,
			Category: c.Category,
			Content:  c.Content,
			Score:    c.Additional.Certainty,
		})
	}
	return items, nil
}

func buildWhere(f Filters) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if f.ChapterID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"chapterId"}).
			WithOperator(filters.Equal).
			WithValueString(f.ChapterID))
	}
	if f.CourseID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"courseId"}).
			WithOperator(filters.Equal).
			WithValueString(f.CourseID))
	}
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}

// parseGraphQLResponse converts the dynamic GraphQL payload into a typed
// struct via a JSON round trip.
func parseGraphQLResponse[T any](resp *wmodels.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal GraphQL response data: %w", err)
	}
	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal GraphQL response: %w", err)
	}
	return &result, nil
}

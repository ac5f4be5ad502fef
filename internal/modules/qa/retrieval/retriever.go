// Package retrieval fetches supporting doctrinal context from the
// knowledge base for prompt assembly.
package retrieval

import (
	"context"
	"sort"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"
)

// Item is one retrieved context chunk.
type Item struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// Filters narrow the search to the learner's current position in the
// curriculum when known.
type Filters struct {
	ChapterID string
	CourseID  string
}

// Embedder turns question text into a vector. The provider client
// implements this; tests substitute a fixed-vector fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever queries the knowledge base. Unavailability is not an error:
// the pipeline proceeds with an empty context.
type Retriever struct {
	client    *weaviate.Client
	embedder  Embedder
	className string
	topK      int
	minScore  float64
	log       *zap.Logger
}

func NewRetriever(client *weaviate.Client, embedder Embedder, className string, topK int, minScore float64, log *zap.Logger) *Retriever {
	return &Retriever{
		client:    client,
		embedder:  embedder,
		className: className,
		topK:      topK,
		minScore:  minScore,
		log:       log,
	}
}

// Retrieve returns the top matching chunks for the question, sorted by
// score descending with insertion order breaking ties. Any failure in
// embedding or search degrades to an empty result.
func (r *Retriever) Retrieve(ctx context.Context, question string, f Filters) []Item {
	if r == nil || r.client == nil || r.embedder == nil {
		return nil
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil || len(vector) == 0 {
		r.log.Warn("question embedding failed, skipping retrieval", zap.Error(err))
		return nil
	}

	items, err := r.searchChunks(ctx, vector, f, r.topK)
	if err != nil {
		r.log.Warn("knowledge base unavailable, proceeding without context", zap.Error(err))
		return nil
	}

	filtered := items[:0]
	for _, item := range items {
		if item.Score >= r.minScore {
			filtered = append(filtered, item)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if len(filtered) > r.topK {
		filtered = filtered[:r.topK]
	}
	return filtered
}

package search

import (
	"context"

	"github.com/community-brain/braintrust/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs KNN search over the thread index.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int, filter domain.SearchFilter) ([]domain.SearchResult, error)
}

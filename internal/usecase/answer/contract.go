package answer

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

// ThreadReader fetches full thread bodies from the community service.
type ThreadReader interface {
	GetThread(ctx context.Context, id string) (domain.Thread, error)
}

// Generator produces an answer grounded in the supplied context documents.
type Generator interface {
	AnswerQuestion(ctx context.Context, question string, docs []domain.ContextDoc) (domain.Generation, error)
}

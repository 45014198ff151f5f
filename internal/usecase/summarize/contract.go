package summarize

import (
	"context"

	"github.com/community-brain/braintrust/internal/domain"
)

// ContentReader fetches thread content from the community service.
type ContentReader interface {
	GetThread(ctx context.Context, id string) (domain.Thread, error)
	GetThreadPosts(ctx context.Context, id string) ([]domain.Post, error)
}

// Generator produces a structured summary from a thread transcript.
type Generator interface {
	Summarize(ctx context.Context, transcript string) (domain.ThreadSummary, error)
}

// Package search implements the similar-threads pipeline. Unlike the answer
// pipeline it never touches the content store, results come entirely from
// index metadata.
package search

import (
	"context"
	"fmt"

	"github.com/community-brain/braintrust/internal/domain"
)

const (
	DefaultTopK = 5
	MaxTopK     = 20
)

// Service finds threads similar to a free-text query.
type Service struct {
	embed Embedder
	index Searcher
}

// New creates a search service.
func New(embed Embedder, index Searcher) *Service {
	return &Service{embed: embed, index: index}
}

// FindSimilar returns up to topK threads ranked by similarity to the query.
// topK outside [1, MaxTopK] falls back to DefaultTopK.
func (s *Service) FindSimilar(ctx context.Context, query string, topK int) ([]domain.SimilarThread, error) {
	if topK < 1 || topK > MaxTopK {
		topK = DefaultTopK
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Search(ctx, embResult.Embedding, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	threads := make([]domain.SimilarThread, 0, len(results))
	for _, r := range results {
		threads = append(threads, domain.SimilarThread{
			ThreadID:        r.ID,
			Title:           r.Metadata.Title,
			SimilarityScore: r.Score,
			Tags:            r.Metadata.Tags,
			CreatedAt:       r.Metadata.CreatedAt,
		})
	}

	return threads, nil
}

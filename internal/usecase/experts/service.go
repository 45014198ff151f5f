// Package experts recommends community members for a set of tags. The ranking
// itself lives in the community service, this is a validated pass-through.
package experts

import (
	"context"
	"fmt"

	"github.com/community-brain/braintrust/internal/domain"
)

const (
	DefaultLimit = 5
	MaxLimit     = 20
)

// ExpertReader fetches expert rankings from the community service.
type ExpertReader interface {
	GetExpertsByTags(ctx context.Context, tags []string, limit int) ([]domain.Expert, error)
}

// Service recommends experts for a set of topic tags.
type Service struct {
	content ExpertReader
}

// New creates an experts service.
func New(content ExpertReader) *Service {
	return &Service{content: content}
}

// Recommend returns up to limit experts for the given tags. limit outside
// [1, MaxLimit] falls back to DefaultLimit.
func (s *Service) Recommend(ctx context.Context, tags []string, limit int) ([]domain.Expert, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", domain.ErrInvalidRequest)
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	experts, err := s.content.GetExpertsByTags(ctx, tags, limit)
	if err != nil {
		return nil, fmt.Errorf("get experts: %w", err)
	}
	return experts, nil
}

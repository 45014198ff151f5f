// Package summarize builds a transcript from a thread and its replies and
// asks the generator for a structured summary.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
)

// Service summarizes discussion threads.
type Service struct {
	content ContentReader
	gen     Generator
	logger  *zap.Logger
}

// New creates a summarize service.
func New(content ContentReader, gen Generator, logger *zap.Logger) *Service {
	return &Service{content: content, gen: gen, logger: logger}
}

// SummarizeThread summarizes a thread including its replies. A missing thread
// yields domain.ErrThreadNotFound. A failed posts fetch degrades to
// summarizing the opening post alone.
func (s *Service) SummarizeThread(ctx context.Context, threadID string) (domain.ThreadSummary, error) {
	thread, err := s.content.GetThread(ctx, threadID)
	if err != nil {
		return domain.ThreadSummary{}, fmt.Errorf("get thread %s: %w", threadID, err)
	}

	posts, err := s.content.GetThreadPosts(ctx, threadID)
	if err != nil {
		s.logger.Warn("summarizing without replies",
			zap.String("thread_id", threadID),
			zap.Error(err))
		posts = nil
	}

	summary, err := s.gen.Summarize(ctx, BuildTranscript(thread, posts))
	if err != nil {
		return domain.ThreadSummary{}, fmt.Errorf("generate summary: %w", err)
	}
	return summary, nil
}

// BuildTranscript renders a thread and its replies as plain text for the
// generator prompt.
func BuildTranscript(thread domain.Thread, posts []domain.Post) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n\n", thread.Title)
	fmt.Fprintf(&sb, "Original Post: %s\n", thread.Content)

	if len(posts) > 0 {
		sb.WriteString("\nReplies:\n")
		for _, p := range posts {
			fmt.Fprintf(&sb, "- %s: %s\n", p.Author, p.Content)
		}
	}

	return sb.String()
}

package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
)

type mockContent struct {
	thread   domain.Thread
	threadEr error
	posts    []domain.Post
	postsEr  error
}

func (m *mockContent) GetThread(_ context.Context, _ string) (domain.Thread, error) {
	if m.threadEr != nil {
		return domain.Thread{}, m.threadEr
	}
	return m.thread, nil
}

func (m *mockContent) GetThreadPosts(_ context.Context, _ string) ([]domain.Post, error) {
	return m.posts, m.postsEr
}

type mockGenerator struct {
	summary       domain.ThreadSummary
	err           error
	gotTranscript string
}

func (m *mockGenerator) Summarize(_ context.Context, transcript string) (domain.ThreadSummary, error) {
	m.gotTranscript = transcript
	if m.err != nil {
		return domain.ThreadSummary{}, m.err
	}
	return m.summary, nil
}

func TestSummarizeThread_Success(t *testing.T) {
	content := &mockContent{
		thread: domain.Thread{ID: "t-1", Title: "Sharding", Content: "How to shard?"},
		posts: []domain.Post{
			{Author: "alice", Content: "By tenant."},
			{Author: "bob", Content: "By hash."},
		},
	}
	gen := &mockGenerator{summary: domain.ThreadSummary{Summary: "Sharding debate.", KeyPoints: []string{"tenant", "hash"}}}

	result, err := New(content, gen, zap.NewNop()).SummarizeThread(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summary != "Sharding debate." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if !strings.Contains(gen.gotTranscript, "Title: Sharding") {
		t.Errorf("transcript missing title: %q", gen.gotTranscript)
	}
	if !strings.Contains(gen.gotTranscript, "Original Post: How to shard?") {
		t.Errorf("transcript missing original post: %q", gen.gotTranscript)
	}
	if !strings.Contains(gen.gotTranscript, "- alice: By tenant.") {
		t.Errorf("transcript missing reply: %q", gen.gotTranscript)
	}
}

func TestSummarizeThread_NotFound(t *testing.T) {
	content := &mockContent{threadEr: domain.ErrThreadNotFound}
	gen := &mockGenerator{}

	_, err := New(content, gen, zap.NewNop()).SummarizeThread(context.Background(), "missing")
	if !errors.Is(err, domain.ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}
}

func TestSummarizeThread_PostsFetchFailureDegrades(t *testing.T) {
	content := &mockContent{
		thread:  domain.Thread{ID: "t-1", Title: "Solo", Content: "No replies yet."},
		postsEr: errors.New("community down"),
	}
	gen := &mockGenerator{summary: domain.ThreadSummary{Summary: "ok"}}

	_, err := New(content, gen, zap.NewNop()).SummarizeThread(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gen.gotTranscript, "Replies:") {
		t.Errorf("transcript must not include replies section: %q", gen.gotTranscript)
	}
}

func TestBuildTranscript_NoReplies(t *testing.T) {
	got := BuildTranscript(domain.Thread{Title: "T", Content: "C"}, nil)
	want := "Title: T\n\nOriginal Post: C\n"
	if got != want {
		t.Errorf("transcript = %q, expected %q", got, want)
	}
}

func TestSummarizeThread_GeneratorFailure(t *testing.T) {
	content := &mockContent{thread: domain.Thread{ID: "t-1"}}
	gen := &mockGenerator{err: domain.ErrGenerationProviderError}

	_, err := New(content, gen, zap.NewNop()).SummarizeThread(context.Background(), "t-1")
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("expected ErrGenerationProviderError, got %v", err)
	}
}

package experts

import (
	"context"
	"errors"
	"testing"

	"github.com/community-brain/braintrust/internal/domain"
)

type mockExpertReader struct {
	experts  []domain.Expert
	err      error
	gotTags  []string
	gotLimit int
}

func (m *mockExpertReader) GetExpertsByTags(_ context.Context, tags []string, limit int) ([]domain.Expert, error) {
	m.gotTags = tags
	m.gotLimit = limit
	return m.experts, m.err
}

func TestRecommend_Success(t *testing.T) {
	reader := &mockExpertReader{experts: []domain.Expert{
		{UserID: "u-1", Username: "carol", ExpertiseScore: 0.9, RelevantContributions: 12},
	}}

	experts, err := New(reader).Recommend(context.Background(), []string{"go", "redis"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(experts) != 1 || experts[0].Username != "carol" {
		t.Fatalf("unexpected experts: %v", experts)
	}
	if len(reader.gotTags) != 2 || reader.gotLimit != 3 {
		t.Errorf("unexpected passthrough args: tags=%v limit=%d", reader.gotTags, reader.gotLimit)
	}
}

func TestRecommend_NoTags(t *testing.T) {
	_, err := New(&mockExpertReader{}).Recommend(context.Background(), nil, 3)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestRecommend_LimitClamping(t *testing.T) {
	reader := &mockExpertReader{}

	if _, err := New(reader).Recommend(context.Background(), []string{"go"}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.gotLimit != DefaultLimit {
		t.Errorf("limit = %d, expected %d", reader.gotLimit, DefaultLimit)
	}
}

func TestRecommend_ReaderFailure(t *testing.T) {
	reader := &mockExpertReader{err: errors.New("community down")}

	_, err := New(reader).Recommend(context.Background(), []string{"go"}, 3)
	if err == nil {
		t.Fatal("expected error")
	}
}

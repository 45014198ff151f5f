package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
	answeruc "github.com/community-brain/braintrust/internal/usecase/answer"
	expertsuc "github.com/community-brain/braintrust/internal/usecase/experts"
	healthuc "github.com/community-brain/braintrust/internal/usecase/health"
	searchuc "github.com/community-brain/braintrust/internal/usecase/search"
	summarizeuc "github.com/community-brain/braintrust/internal/usecase/summarize"
)

// --- Mocks ---

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

type mockSearcher struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, _ int, _ domain.SearchFilter) ([]domain.SearchResult, error) {
	return m.results, m.err
}

type mockContent struct {
	thread   domain.Thread
	threadEr error
	posts    []domain.Post
	experts  []domain.Expert
}

func (m *mockContent) GetThread(_ context.Context, _ string) (domain.Thread, error) {
	if m.threadEr != nil {
		return domain.Thread{}, m.threadEr
	}
	return m.thread, nil
}

func (m *mockContent) GetThreadPosts(_ context.Context, _ string) ([]domain.Post, error) {
	return m.posts, nil
}

func (m *mockContent) GetExpertsByTags(_ context.Context, _ []string, _ int) ([]domain.Expert, error) {
	return m.experts, nil
}

type mockGenerator struct {
	generation domain.Generation
	summary    domain.ThreadSummary
	err        error
}

func (m *mockGenerator) AnswerQuestion(_ context.Context, _ string, _ []domain.ContextDoc) (domain.Generation, error) {
	if m.err != nil {
		return domain.Generation{}, m.err
	}
	return m.generation, nil
}

func (m *mockGenerator) Summarize(_ context.Context, _ string) (domain.ThreadSummary, error) {
	if m.err != nil {
		return domain.ThreadSummary{}, m.err
	}
	return m.summary, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type serverDeps struct {
	embed   *mockEmbedder
	index   *mockSearcher
	content *mockContent
	gen     *mockGenerator
	pinger  *mockPinger
}

func newTestServer(d serverDeps) *Server {
	if d.embed == nil {
		d.embed = &mockEmbedder{}
	}
	if d.index == nil {
		d.index = &mockSearcher{}
	}
	if d.content == nil {
		d.content = &mockContent{}
	}
	if d.gen == nil {
		d.gen = &mockGenerator{}
	}
	if d.pinger == nil {
		d.pinger = &mockPinger{}
	}

	logger := zap.NewNop()
	return NewServer(
		answeruc.New(d.embed, d.index, d.content, d.gen, logger),
		searchuc.New(d.embed, d.index),
		summarizeuc.New(d.content, d.gen, logger),
		expertsuc.New(d.content),
		healthuc.New(d.pinger, nil, nil),
		logger,
	)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router(nil).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return resp
}

// --- Ask ---

func TestAsk_Success(t *testing.T) {
	s := newTestServer(serverDeps{
		index: &mockSearcher{results: []domain.SearchResult{
			{ID: "t-1", Score: 0.9, Metadata: domain.ThreadMetadata{ThreadID: "t-1", Title: "T"}},
		}},
		content: &mockContent{thread: domain.Thread{ID: "t-1", Title: "T", Content: "body"}},
		gen:     &mockGenerator{generation: domain.Generation{Answer: "Do X."}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/ask", `{"question":"How do I scale Redis?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != "Do X." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Confidence != 0.9 {
		t.Errorf("unexpected confidence: %f", resp.Confidence)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].ThreadID != "t-1" {
		t.Errorf("unexpected sources: %v", resp.Sources)
	}
}

func TestAsk_ZeroResultsIsOK(t *testing.T) {
	s := newTestServer(serverDeps{index: &mockSearcher{results: nil}})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/ask", `{"question":"Anything relevant here?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != answeruc.FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", resp.Answer)
	}
	if resp.Confidence != 0.0 {
		t.Errorf("expected confidence 0.0, got %f", resp.Confidence)
	}
}

func TestAsk_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"question too short", `{"question":"hi"}`},
		{"question too long", `{"question":"` + strings.Repeat("a", 1001) + `"}`},
		{"top_k zero", `{"question":"valid question","top_k":0}`},
		{"top_k too large", `{"question":"valid question","top_k":21}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(serverDeps{})
			rec := doRequest(t, s, http.MethodPost, "/api/assistant/ask", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", rec.Code)
			}
		})
	}
}

// Pipeline failures are the service's problem, not the caller's: every one
// surfaces as a plain 500 internal_error regardless of which stage broke.
func TestAsk_PipelineFailuresAreInternal(t *testing.T) {
	oneResult := []domain.SearchResult{
		{ID: "t-1", Score: 0.9, Metadata: domain.ThreadMetadata{ThreadID: "t-1", Title: "One"}},
	}

	tests := []struct {
		name string
		deps serverDeps
	}{
		{
			name: "embedding provider failure",
			deps: serverDeps{embed: &mockEmbedder{err: domain.ErrEmbeddingProviderError}},
		},
		{
			name: "generation provider failure",
			deps: serverDeps{
				index: &mockSearcher{results: oneResult},
				gen:   &mockGenerator{err: domain.ErrGenerationProviderError},
			},
		},
		{
			name: "index failure",
			deps: serverDeps{index: &mockSearcher{err: domain.ErrIndexUnavailable}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.deps)
			rec := doRequest(t, s, http.MethodPost, "/api/assistant/ask", `{"question":"valid question"}`)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, expected 500", rec.Code)
			}
			resp := decodeError(t, rec)
			if resp.Code != CodeInternalError {
				t.Errorf("error code = %s, expected %s", resp.Code, CodeInternalError)
			}
			if resp.Message != "internal error" {
				t.Errorf("message = %q, failure taxonomy leaked", resp.Message)
			}
		})
	}
}

func TestAsk_InternalErrorHidesDetail(t *testing.T) {
	s := newTestServer(serverDeps{index: &mockSearcher{err: errors.New("secret internal detail")}})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/ask", `{"question":"valid question"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, expected 500", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != CodeInternalError {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
	if strings.Contains(rec.Body.String(), "secret internal detail") {
		t.Error("internal detail leaked into the response")
	}
}

// --- Similar ---

func TestSimilar_Success(t *testing.T) {
	s := newTestServer(serverDeps{
		index: &mockSearcher{results: []domain.SearchResult{
			{ID: "t-7", Score: 0.77, Metadata: domain.ThreadMetadata{ThreadID: "t-7", Title: "Seven"}},
		}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/similar", `{"query":"redis scaling"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Threads []similarThreadDTO `json:"threads"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Threads) != 1 || resp.Threads[0].ThreadID != "t-7" {
		t.Errorf("unexpected threads: %v", resp.Threads)
	}
}

func TestSimilar_QueryTooShort(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/similar", `{"query":"hi"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeValidationFailed {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
}

// --- Summarize ---

func TestSummarize_Success(t *testing.T) {
	consensus := "agreed"
	s := newTestServer(serverDeps{
		content: &mockContent{thread: domain.Thread{ID: "t-1", Title: "T", Content: "C"}},
		gen: &mockGenerator{summary: domain.ThreadSummary{
			Summary:   "Short.",
			KeyPoints: []string{"a"},
			Consensus: &consensus,
		}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/summarize", `{"thread_id":"t-1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Summary != "Short." || resp.Consensus == nil || *resp.Consensus != "agreed" {
		t.Errorf("unexpected summary: %+v", resp)
	}
}

func TestSummarize_MissingThreadID(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/summarize", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
}

func TestSummarize_ThreadNotFound(t *testing.T) {
	s := newTestServer(serverDeps{content: &mockContent{threadEr: domain.ErrThreadNotFound}})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/summarize", `{"thread_id":"missing"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != CodeThreadNotFound {
		t.Errorf("unexpected error code: %s", resp.Code)
	}
}

// --- Experts ---

func TestExperts_Success(t *testing.T) {
	s := newTestServer(serverDeps{
		content: &mockContent{experts: []domain.Expert{
			{UserID: "u-1", Username: "carol", ExpertiseScore: 0.9, RelevantContributions: 5},
		}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/experts", `{"tags":["go"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Experts []expertDTO `json:"experts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Experts) != 1 || resp.Experts[0].Username != "carol" {
		t.Errorf("unexpected experts: %v", resp.Experts)
	}
}

func TestExperts_EmptyTags(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(t, s, http.MethodPost, "/api/assistant/experts", `{"tags":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
}

// --- Health ---

func TestHealth_OK(t *testing.T) {
	s := newTestServer(serverDeps{})

	rec := doRequest(t, s, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
}

func TestHealth_Degraded(t *testing.T) {
	s := newTestServer(serverDeps{pinger: &mockPinger{err: errors.New("down")}})

	rec := doRequest(t, s, http.MethodGet, "/health", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, expected 503", rec.Code)
	}
}

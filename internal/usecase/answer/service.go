// Package answer implements the retrieval-augmented question answering
// pipeline: embed the question, retrieve candidate threads, fetch their
// bodies and generate a grounded answer.
package answer

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
)

const (
	// FallbackAnswer is returned verbatim when retrieval finds nothing.
	FallbackAnswer = "I couldn't find any relevant information in the knowledge base to answer your question."

	DefaultTopK = 5
	MaxTopK     = 20

	// confidenceWindow is how many top scores feed the confidence estimate.
	confidenceWindow = 3
)

// Service answers questions over the indexed thread corpus.
type Service struct {
	embed   Embedder
	index   Searcher
	threads ThreadReader
	gen     Generator
	logger  *zap.Logger
}

// New creates an answer service.
func New(embed Embedder, index Searcher, threads ThreadReader, gen Generator, logger *zap.Logger) *Service {
	return &Service{embed: embed, index: index, threads: threads, gen: gen, logger: logger}
}

// Ask answers a question using retrieved thread content. topK outside [1, MaxTopK]
// falls back to DefaultTopK. Zero retrieval results short-circuit to the
// fallback answer without touching the content store or the generator.
func (s *Service) Ask(ctx context.Context, question string, topK int) (domain.AskResult, error) {
	if topK < 1 || topK > MaxTopK {
		topK = DefaultTopK
	}

	embResult, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domain.AskResult{}, fmt.Errorf("embed question: %w", err)
	}

	results, err := s.index.Search(ctx, embResult.Embedding, topK, nil)
	if err != nil {
		return domain.AskResult{}, fmt.Errorf("search index: %w", err)
	}

	if len(results) == 0 {
		return domain.AskResult{
			Answer:     FallbackAnswer,
			Sources:    []domain.SourceThread{},
			Confidence: 0.0,
		}, nil
	}

	docs := s.fetchContext(ctx, results)

	generation, err := s.gen.AnswerQuestion(ctx, question, docs)
	if err != nil {
		return domain.AskResult{}, fmt.Errorf("generate answer: %w", err)
	}

	return domain.AskResult{
		Answer:     generation.Answer,
		Sources:    buildSources(results),
		Confidence: Confidence(results),
	}, nil
}

// fetchContext loads thread bodies in ranking order. A thread that cannot be
// fetched is skipped, the answer degrades rather than fails.
func (s *Service) fetchContext(ctx context.Context, results []domain.SearchResult) []domain.ContextDoc {
	docs := make([]domain.ContextDoc, 0, len(results))
	for _, r := range results {
		thread, err := s.threads.GetThread(ctx, r.ID)
		if err != nil {
			s.logger.Warn("skipping unfetchable thread",
				zap.String("thread_id", r.ID),
				zap.Error(err))
			continue
		}
		docs = append(docs, domain.ContextDoc{
			ThreadID: thread.ID,
			Title:    thread.Title,
			Content:  thread.Content,
		})
	}
	return docs
}

// buildSources maps retrieval results to answer sources, preserving ranking.
// Excerpts come from index metadata, not from the fetched bodies.
func buildSources(results []domain.SearchResult) []domain.SourceThread {
	sources := make([]domain.SourceThread, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.SourceThread{
			ThreadID:       r.ID,
			Title:          r.Metadata.Title,
			RelevanceScore: r.Score,
			Excerpt:        domain.Excerpt(r.Metadata.Excerpt, domain.ExcerptLength),
		})
	}
	return sources
}

// Confidence is the mean of the top min(3, n) similarity scores rounded to
// two decimals. It measures retrieval quality only and says nothing about
// the generated text.
func Confidence(results []domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0.0
	}

	n := len(results)
	if n > confidenceWindow {
		n = confidenceWindow
	}

	var sum float64
	for _, r := range results[:n] {
		sum += r.Score
	}

	return math.Round(sum/float64(n)*100) / 100
}

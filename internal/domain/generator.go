package domain

import "context"

// ContextDoc is one retrieved passage handed to the generator.
// Content carries the full, untruncated thread body.
type ContextDoc struct {
	ThreadID string
	Title    string
	Content  string
}

// Generation is the generator's answer plus model metadata. The metadata is
// logged but never surfaced in API responses.
type Generation struct {
	Answer      string
	Model       string
	Temperature float32
}

// ThreadSummary is the structured summary of a discussion thread.
// Consensus and OpenQuestions are nil when the generator produced none
// (or when the raw-text fallback was taken).
type ThreadSummary struct {
	Summary       string
	KeyPoints     []string
	Consensus     *string
	OpenQuestions []string
}

// Generator produces natural-language text from retrieved context.
type Generator interface {
	// AnswerQuestion answers the question grounded in the given docs.
	AnswerQuestion(ctx context.Context, question string, docs []ContextDoc) (Generation, error)
	// Summarize condenses a full thread transcript into a structured summary.
	// When the model output is not valid structured data the implementation
	// falls back to placing the raw text in Summary with empty key points.
	Summarize(ctx context.Context, transcript string) (ThreadSummary, error)
}

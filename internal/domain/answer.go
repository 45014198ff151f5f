package domain

// SourceThread is one ranked source cited in an answer. Title and excerpt
// come from index metadata captured at indexing time, not from a fresh fetch.
type SourceThread struct {
	ThreadID       string
	Title          string
	RelevanceScore float64
	Excerpt        string
}

// AskResult is the outcome of the retrieval-augmented answer pipeline.
// Confidence is a retrieval-quality measure in [0,1], independent of the
// generated text.
type AskResult struct {
	Answer     string
	Sources    []SourceThread
	Confidence float64
}

// SimilarThread is one ranked hit of the similar-threads pipeline.
type SimilarThread struct {
	ThreadID        string
	Title           string
	SimilarityScore float64
	Tags            []string
	CreatedAt       string
}

package braintrust

type askRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k,omitempty"`
}

type similarRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

type summarizeRequest struct {
	ThreadID string `json:"thread_id"`
}

type expertsRequest struct {
	Tags []string `json:"tags"`
	TopK *int     `json:"top_k,omitempty"`
}

// SourceThread is a thread cited as supporting evidence for an answer.
type SourceThread struct {
	ThreadID       string  `json:"thread_id"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
	Excerpt        string  `json:"excerpt"`
}

// AskResult is the answer pipeline output.
type AskResult struct {
	Answer     string         `json:"answer"`
	Sources    []SourceThread `json:"sources"`
	Confidence float64        `json:"confidence"`
}

// SimilarThread is a thread ranked by similarity to a query.
type SimilarThread struct {
	ThreadID        string   `json:"thread_id"`
	Title           string   `json:"title"`
	SimilarityScore float64  `json:"similarity_score"`
	Tags            []string `json:"tags,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// ThreadSummary is the structured summary of a thread discussion.
type ThreadSummary struct {
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	Consensus     *string  `json:"consensus"`
	OpenQuestions []string `json:"open_questions"`
}

// Expert is a community member recommended for a set of tags.
type Expert struct {
	UserID                string  `json:"user_id"`
	Username              string  `json:"username"`
	ExpertiseScore        float64 `json:"expertise_score"`
	RelevantContributions int     `json:"relevant_contributions"`
}

// HealthStatus is the service health report. Status is "ok" when every
// check passes and "degraded" otherwise.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// OK reports whether the service is fully healthy.
func (h HealthStatus) OK() bool {
	return h.Status == "ok"
}

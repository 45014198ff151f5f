package domain

import "context"

// Thread is a discussion thread as returned by the community service,
// the system of record for all thread and post text.
type Thread struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
}

// Post is a single reply within a thread.
type Post struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Author   string `json:"author"`
	Content  string `json:"content"`
}

// Expert is a community member recommendation, reshaped from the
// community service's experts endpoint.
type Expert struct {
	UserID                string  `json:"user_id"`
	Username              string  `json:"username"`
	ExpertiseScore        float64 `json:"expertise_score"`
	RelevantContributions int     `json:"relevant_contributions"`
}

// ContentStore fetches thread content from the community service.
type ContentStore interface {
	// GetThread returns a thread by id. Missing threads yield ErrThreadNotFound.
	GetThread(ctx context.Context, id string) (Thread, error)
	// GetThreadPosts returns all replies in a thread.
	GetThreadPosts(ctx context.Context, id string) ([]Post, error)
	// GetExpertsByTags returns up to limit experts for the given tags.
	GetExpertsByTags(ctx context.Context, tags []string, limit int) ([]Expert, error)
	// Close releases connection resources.
	Close()
}

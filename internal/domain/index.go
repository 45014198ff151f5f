package domain

import "context"

// ThreadMetadata is the denormalized thread snapshot stored next to each
// vector. The search path reads it as a cache and never re-validates it
// against the community service.
type ThreadMetadata struct {
	ThreadID  string
	Title     string
	Excerpt   string
	Tags      []string
	CreatedAt string
}

// IndexedDocument is the {id, vector, metadata} triple persisted in the
// vector index. ID equals the source thread id, so re-indexing the same
// thread is an idempotent replace.
type IndexedDocument struct {
	ID       string
	Vector   []float32
	Metadata ThreadMetadata
}

// SearchResult is one ranked hit from the vector index.
type SearchResult struct {
	ID       string
	Score    float64
	Metadata ThreadMetadata
}

// SearchFilter restricts a KNN search to documents whose tag fields match.
// A nil or empty filter matches everything.
type SearchFilter map[string]string

// VectorIndex is the ANN storage contract.
type VectorIndex interface {
	// Initialize creates the backing collection if absent. Idempotent.
	Initialize(ctx context.Context) error
	// Upsert inserts or replaces the document keyed by its ID.
	Upsert(ctx context.Context, doc IndexedDocument) error
	// Search returns up to topK results ranked descending by similarity.
	Search(ctx context.Context, vector []float32, topK int, filter SearchFilter) ([]SearchResult, error)
	// Delete removes the document with the given ID. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error
}

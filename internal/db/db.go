// Package db defines the storage contracts for the vector index backend.
package db

import (
	"context"
	"time"
)

// Store is the database facade. Consumers depend on the narrow
// sub-interfaces below rather than the full facade.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides KNN search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery describes a vector similarity search.
type KNNQuery struct {
	IndexName string
	Vector    []float32
	K         int
	// TagFilters restricts results to documents whose TAG fields match.
	TagFilters   map[string]string
	ReturnFields []string
}

// SearchEntry is one raw hit: the document key, its similarity score, and
// the returned hash fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the raw outcome of an FT.SEARCH call.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Index field types.
type IndexFieldType string

const (
	IndexFieldTag     IndexFieldType = "tag"
	IndexFieldText    IndexFieldType = "text"
	IndexFieldNumeric IndexFieldType = "numeric"
	IndexFieldVector  IndexFieldType = "vector"
)

// Vector index algorithms.
type VectorAlgo string

const (
	VectorFlat VectorAlgo = "FLAT"
	VectorHNSW VectorAlgo = "HNSW"
)

// Vector distance metrics.
type VectorDistance string

const (
	DistanceCosine VectorDistance = "COSINE"
	DistanceL2     VectorDistance = "L2"
	DistanceIP     VectorDistance = "IP"
)

// IndexField describes one schema field of an FT index.
type IndexField struct {
	Name              string
	Type              IndexFieldType
	TagSeparator      string
	VectorAlgo        VectorAlgo
	VectorDistance    VectorDistance
	VectorDim         int
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over hash keys with given prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Package index implements domain.VectorIndex on a RediSearch-capable store.
package index

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/community-brain/braintrust/internal/db"
	dbredis "github.com/community-brain/braintrust/internal/db/redis"
	"github.com/community-brain/braintrust/internal/domain"
)

const (
	// KeyPrefix namespaces all thread document keys.
	KeyPrefix = "braintrust:thread:"
	// IndexName is the FT index over thread documents.
	IndexName = "braintrust:threads:idx"

	tagSeparator = ","
)

// store is the consumer interface for index operations.
type store interface {
	db.HashStore
	db.IndexManager
	db.Searcher
}

// Config holds index tuning parameters.
type Config struct {
	VectorDim       int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo stores thread vectors and metadata as Redis hashes behind an
// HNSW-indexed FT index.
type Repo struct {
	store store
	cfg   Config
}

// Compile-time check: Repo implements domain.VectorIndex.
var _ domain.VectorIndex = (*Repo)(nil)

// New creates a vector index repository.
func New(s store, cfg Config) *Repo {
	if cfg.VectorDim <= 0 {
		cfg.VectorDim = 1536
	}
	return &Repo{store: s, cfg: cfg}
}

// Initialize creates the FT index if it does not exist yet. Running it
// against an already-initialized store is a no-op, so startup is idempotent.
func (r *Repo) Initialize(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{KeyPrefix},
		Fields: []db.IndexField{
			{Name: "title", Type: db.IndexFieldText},
			{Name: "tags", Type: db.IndexFieldTag, TagSeparator: tagSeparator},
			{Name: "created_at", Type: db.IndexFieldTag},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDistance:    db.DistanceCosine,
				VectorDim:         r.cfg.VectorDim,
				VectorM:           r.cfg.HNSWM,
				VectorEFConstruct: r.cfg.HNSWEFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", domainErr(err))
	}
	return nil
}

// Upsert writes the document hash under its thread-id key. HSET replaces
// field values in place, so re-indexing the same thread never duplicates it.
func (r *Repo) Upsert(ctx context.Context, doc domain.IndexedDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if len(doc.Vector) == 0 {
		return fmt.Errorf("document vector is required")
	}

	fields := map[string]string{
		"thread_id":  doc.ID,
		"title":      doc.Metadata.Title,
		"excerpt":    doc.Metadata.Excerpt,
		"tags":       strings.Join(doc.Metadata.Tags, tagSeparator),
		"created_at": doc.Metadata.CreatedAt,
		"vector":     dbredis.VectorToBytes(doc.Vector),
	}

	if err := r.store.HSet(ctx, KeyPrefix+doc.ID, fields); err != nil {
		return fmt.Errorf("upsert %s: %w", doc.ID, domainErr(err))
	}
	return nil
}

// Search runs a KNN query and maps hits to ranked domain results.
func (r *Repo) Search(
	ctx context.Context, vector []float32, topK int, filter domain.SearchFilter,
) ([]domain.SearchResult, error) {
	q := &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       vector,
		K:            topK,
		TagFilters:   filter,
		ReturnFields: []string{"thread_id", "title", "excerpt", "tags", "created_at", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", domainErr(err))
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, domain.SearchResult{
			ID:       strings.TrimPrefix(entry.Key, KeyPrefix),
			Score:    entry.Score,
			Metadata: metadataFromFields(entry.Fields),
		})
	}
	return results, nil
}

// Delete removes the document key. Deleting an absent key is a no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, KeyPrefix+id); err != nil {
		return fmt.Errorf("delete %s: %w", id, domainErr(err))
	}
	return nil
}

func metadataFromFields(fields map[string]string) domain.ThreadMetadata {
	md := domain.ThreadMetadata{
		ThreadID:  fields["thread_id"],
		Title:     fields["title"],
		Excerpt:   fields["excerpt"],
		CreatedAt: fields["created_at"],
	}
	if raw := fields["tags"]; raw != "" {
		md.Tags = strings.Split(raw, tagSeparator)
	}
	return md
}

// domainErr maps backend transport failures onto the domain sentinel so
// callers can classify them without importing db.
func domainErr(err error) error {
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return err
}

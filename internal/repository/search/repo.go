package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/vecdash/internal/db"
	"github.com/kailas-cloud/vecdash/internal/domain/search/hit"
)

const (
	// DefaultIDField references the joined document in the investor collection.
	DefaultIDField = "original_document_id"
	// DefaultNameField is the display key hits are grouped by.
	DefaultNameField = "company_name"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	VectorSearch(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error)
	VectorIndexExists(ctx context.Context, collection, name string) (bool, error)
	CreateVectorIndex(ctx context.Context, def *db.VectorIndexDefinition) error
}

// Config describes where the embeddings live and how they are indexed.
type Config struct {
	Collection string
	IndexName  string
	Path       string
	Dimensions int
	Similarity string
	IDField    string
	NameField  string
}

// Repo implements usecase/search.SearchRepository.
type Repo struct {
	store store
	cfg   Config
}

// New creates a search repository.
func New(s store, cfg Config) *Repo {
	if cfg.IDField == "" {
		cfg.IDField = DefaultIDField
	}
	if cfg.NameField == "" {
		cfg.NameField = DefaultNameField
	}
	return &Repo{store: s, cfg: cfg}
}

// SearchVector runs an ANN query and returns hits in index order.
// Entries without a document id cannot be joined and are skipped.
func (r *Repo) SearchVector(
	ctx context.Context, vector []float32, numCandidates, limit int,
) ([]hit.Hit, error) {
	q := &db.VectorQuery{
		Collection:    r.cfg.Collection,
		IndexName:     r.cfg.IndexName,
		Path:          r.cfg.Path,
		Vector:        vector,
		NumCandidates: numCandidates,
		Limit:         limit,
		ReturnFields:  []string{r.cfg.IDField, r.cfg.NameField},
	}

	sr, err := r.store.VectorSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", r.cfg.IndexName, err)
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[r.cfg.IDField]
		if id == "" {
			continue
		}
		hits = append(hits, hit.New(id, e.Fields[r.cfg.NameField], e.Score))
	}
	return hits, nil
}

// EnsureIndex creates the vector search index when it does not exist yet.
// Reports whether an index was created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.VectorIndexExists(ctx, r.cfg.Collection, r.cfg.IndexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	if exists {
		return false, nil
	}

	def := &db.VectorIndexDefinition{
		Collection: r.cfg.Collection,
		Name:       r.cfg.IndexName,
		Path:       r.cfg.Path,
		Dimensions: r.cfg.Dimensions,
		Similarity: r.cfg.Similarity,
	}
	if err := r.store.CreateVectorIndex(ctx, def); err != nil {
		return false, fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return true, nil
}

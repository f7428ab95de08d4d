package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/vecdash/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	vectorSearchFn func(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error)
	existsFn       func(ctx context.Context, collection, name string) (bool, error)
	created        []*db.VectorIndexDefinition
	createErr      error
}

func (m *mockStore) VectorSearch(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
	if m.vectorSearchFn != nil {
		return m.vectorSearchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) VectorIndexExists(ctx context.Context, collection, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, collection, name)
	}
	return false, nil
}

func (m *mockStore) CreateVectorIndex(_ context.Context, def *db.VectorIndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, def)
	return nil
}

func testConfig() Config {
	return Config{
		Collection: "company_embeddings",
		IndexName:  "company-description",
		Path:       "companyDescription_embedding",
		Dimensions: 768,
		Similarity: db.SimilarityCosine,
	}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testConfig()), ms
}

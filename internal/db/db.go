package db

import (
	"context"
	"time"
)

// DocumentStore is the document database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type DocumentStore interface {
	Pinger
	VectorSearcher
	DocumentFinder
	IndexManager
	Close(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// CacheStore is the key-value facade backing the embedding cache.
type CacheStore interface {
	Pinger
	KVStore
	Close()
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// VectorSearcher runs approximate nearest-neighbor queries against a search index.
type VectorSearcher interface {
	VectorSearch(ctx context.Context, q *VectorQuery) (*SearchResult, error)
}

// DocumentFinder loads documents by primary key in a single round trip.
// out must be a pointer to a slice, as accepted by the driver's cursor decoding.
type DocumentFinder interface {
	FindByIDs(ctx context.Context, collection string, ids []string, out any) error
}

// IndexManager provides vector search index lifecycle operations.
type IndexManager interface {
	VectorIndexExists(ctx context.Context, collection, name string) (bool, error)
	CreateVectorIndex(ctx context.Context, def *VectorIndexDefinition) error
}

package search

import (
	"context"

	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/domain/investor"
	"github.com/kailas-cloud/vecdash/internal/domain/search/hit"
)

// SearchRepository runs vector queries against the embeddings collection.
type SearchRepository interface {
	SearchVector(ctx context.Context, vector []float32, numCandidates, limit int) ([]hit.Hit, error)
}

// InvestorRepository loads the records hits are joined with.
type InvestorRepository interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]investor.Record, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

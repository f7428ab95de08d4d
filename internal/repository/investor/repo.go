package investor

import (
	"context"
	"fmt"

	dominv "github.com/kailas-cloud/vecdash/internal/domain/investor"
)

// finder is the consumer interface for investor lookups (ISP).
type finder interface {
	FindByIDs(ctx context.Context, collection string, ids []string, out any) error
}

// Repo implements usecase/search.InvestorRepository.
type Repo struct {
	store      finder
	collection string
}

// New creates an investor repository over the given collection.
func New(s finder, collection string) *Repo {
	return &Repo{store: s, collection: collection}
}

// FindByIDs loads the records referenced by ids in one round trip, keyed by id.
// Duplicate and empty ids are collapsed; ids with no stored record are simply absent.
func (r *Repo) FindByIDs(ctx context.Context, ids []string) (map[string]dominv.Record, error) {
	unique := dedupe(ids)
	records := make(map[string]dominv.Record, len(unique))
	if len(unique) == 0 {
		return records, nil
	}

	var docs []investorDTO
	if err := r.store.FindByIDs(ctx, r.collection, unique, &docs); err != nil {
		return nil, fmt.Errorf("find investors: %w", err)
	}

	for i := range docs {
		rec := docs[i].toDomain()
		records[rec.ID()] = rec
	}
	return records, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding token usage for one dashboard request.
// The handler installs it before calling the search service and reads it back
// to report tokens in the response.
type EmbeddingUsage struct {
	TotalTokens int

	// Cached is true when the query vector came from the embedding cache.
	Cached bool
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil when none is installed.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Record stores the usage of one embedding call. Safe on a nil receiver.
func (u *EmbeddingUsage) Record(res EmbeddingResult) {
	if u == nil {
		return
	}
	u.TotalTokens += res.TotalTokens
	u.Cached = res.Cached
}

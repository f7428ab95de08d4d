// Package metrics holds the Prometheus collectors of vecdash.
//
// HTTP collectors register themselves on import. Embedding and search
// collectors are registered by Register, called once from the composition
// root (and from tests that assert on them).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vecdash"

var registerOnce sync.Once

// Register registers the embedding and search collectors with the default registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			SearchRequestsTotal,
			SearchStageDuration,
			SearchHits,
		)
	})
}

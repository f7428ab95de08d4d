// Package ollama embeds queries with a locally served model (nomic-embed-text by default)
// through an Ollama server.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/metrics"
)

const providerName = "ollama"

// Config holds the Ollama connection settings.
type Config struct {
	ServerURL  string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// Embedder implements domain.Embedder on top of langchaingo's Ollama client.
type Embedder struct {
	llm        *ollama.LLM
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder builds the client once; the model itself is loaded lazily by the server
// on first use and kept warm afterwards.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		llm:        llm,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		logger:     logger,
	}, nil
}

// Embed implements domain.Embedder. Ollama reports no token usage, so the result
// carries zero counts.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vectors, err := e.llm.CreateEmbedding(ctx, []string{text})
	duration := time.Since(start)

	if err != nil {
		e.fail("api_error")
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		e.fail("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	vec := vectors[0]
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.fail("dimension_mismatch")
		return domain.EmbeddingResult{}, fmt.Errorf("embedding has %d dimensions, index expects %d: %w",
			len(vec), e.dimensions, domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck embeds a single word; a cold server loads the model here.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.llm.CreateEmbedding(ctx, []string{"ping"}); err != nil {
		return fmt.Errorf("ollama health check: %w", err)
	}
	return nil
}

func (e *Embedder) fail(errorType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, errorType).Inc()
}

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecdash/internal/config"
	"github.com/kailas-cloud/vecdash/internal/db"
	dbMongo "github.com/kailas-cloud/vecdash/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/vecdash/internal/db/redis"
	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/vecdash/internal/logger"
	"github.com/kailas-cloud/vecdash/internal/metrics"
	"github.com/kailas-cloud/vecdash/internal/repository/embcache"
	investorrepo "github.com/kailas-cloud/vecdash/internal/repository/investor"
	searchrepo "github.com/kailas-cloud/vecdash/internal/repository/search"
	ollamaEmb "github.com/kailas-cloud/vecdash/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/vecdash/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/vecdash/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/vecdash/internal/usecase/health"
	searchuc "github.com/kailas-cloud/vecdash/internal/usecase/search"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *dbMongo.Store
	cache      *dbRedis.Store
	searchRepo *searchrepo.Repo
	embedder   domain.Embedder
	searchSvc  *searchuc.Service
	healthSvc  *healthuc.Service
}

// newApp loads config for env and connects to the document store and, when
// enabled, the embedding cache.
func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	a.store, err = dbMongo.NewStore(ctx, dbMongo.Config{
		URI:      cfg.Database.URI,
		Database: cfg.Database.Name,
		AppName:  "vecdash",
	})
	if err != nil {
		return nil, fmt.Errorf("create document store: %w", err)
	}

	if err := a.store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("document store not ready: %w", err)
	}
	logger.Info("Connected to document store", zap.String("database", cfg.Database.Name))

	a.searchRepo = searchrepo.New(a.store, searchrepo.Config{
		Collection: cfg.Database.EmbeddingsCollection,
		IndexName:  cfg.Database.VectorIndex.Name,
		Path:       cfg.Database.VectorIndex.Path,
		Dimensions: cfg.Database.VectorIndex.Dimensions,
		Similarity: cfg.Database.VectorIndex.Similarity,
	})
	investorRepo := investorrepo.New(a.store, cfg.Database.InvestorsCollection)

	var cache db.CacheStore
	if cfg.Cache.Enabled {
		a.cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		cache = a.cache
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Register metrics explicitly (no init())
	metrics.Register()

	// The model client is built once and reused by every request.
	a.embedder, err = buildEmbedder(&cfg, cache, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	a.searchSvc = searchuc.New(a.searchRepo, investorRepo, a.embedder, logger)

	// Pass nil interface (not typed nil pointer) when the cache is disabled.
	var cachePinger healthuc.Pinger
	if cache != nil {
		cachePinger = cache
	}
	a.healthSvc = healthuc.New(a.store, cachePinger, newEmbeddingHealthChecker(a.embedder))

	return a, nil
}

// limits returns the configured request bounds.
func (a *app) limits() request.Limits {
	return request.Limits{
		MaxQueryLength: a.cfg.Search.MaxQueryLength,
		NumCandidates:  a.cfg.Search.NumCandidates,
		Limit:          a.cfg.Search.Limit,
	}
}

// Close releases the store connections and flushes the logger.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.store != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.store.Close(closeCtx); err != nil {
			a.logger.Warn("Failed to close document store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(cfg *config.Config, cache db.CacheStore, logger *zap.Logger) (domain.Embedder, error) {
	provCfg, ok := cfg.SelectedProvider()
	if !ok {
		return nil, fmt.Errorf("embedding provider %q not configured", cfg.Embedding.Provider)
	}
	provName := cfg.Embedding.Provider

	// Base provider (with transport metrics built-in)
	var base domain.Embedder
	switch provCfg.Type {
	case config.ProviderTypeOllama:
		emb, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			ServerURL:  provCfg.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder: %w", err)
		}
		base = emb
	case config.ProviderTypeOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:         provCfg.APIKey,
			BaseURL:        provCfg.BaseURL,
			Model:          cfg.Embedding.Model,
			Dimensions:     cfg.Embedding.Dimensions,
			SendDimensions: cfg.Embedding.SendDimensions,
			Provider:       provName,
			Logger:         logger,
		})
	default:
		return nil, fmt.Errorf("unknown provider type %q", provCfg.Type)
	}

	// Cached
	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (request-scoped logging)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provName, cfg.Embedding.Model, logger)

	// Instruction prefix is outermost so the cache key includes it
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction), nil
	}

	return embedder, nil
}

package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/domain/report"
	"github.com/kailas-cloud/vecdash/internal/domain/search/hit"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	"github.com/kailas-cloud/vecdash/internal/logger"
	"github.com/kailas-cloud/vecdash/internal/metrics"
)

// Service answers dashboard queries: embed, vector search, join, aggregate.
type Service struct {
	hits      SearchRepository
	investors InvestorRepository
	embed     Embedder
	logger    *zap.Logger
}

// New creates a search service.
func New(hits SearchRepository, investors InvestorRepository, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{hits: hits, investors: investors, embed: embed, logger: logger}
}

// Search runs one query end to end and returns both dashboard tables.
// An empty hit list yields an empty report without error.
func (s *Service) Search(ctx context.Context, req request.Request) (report.Report, error) {
	rep, err := s.search(ctx, req)
	switch {
	case err != nil:
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
	case rep.IsEmpty():
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	}
	return rep, err
}

func (s *Service) search(ctx context.Context, req request.Request) (report.Report, error) {
	log := logger.FromContext(ctx, s.logger)

	start := time.Now()
	emb, err := s.embed.Embed(ctx, req.Query())
	observeStage("embed", start)
	if err != nil {
		return report.Report{}, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).Record(emb)

	start = time.Now()
	hits, err := s.hits.SearchVector(ctx, emb.Embedding, req.NumCandidates(), req.Limit())
	observeStage("vector_search", start)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}
	metrics.SearchHits.Observe(float64(len(hits)))

	if len(hits) == 0 {
		log.Debug("Vector search returned no hits", zap.Int("query_length", len(req.Query())))
		return report.Empty(), nil
	}

	start = time.Now()
	records, err := s.investors.FindByIDs(ctx, documentIDs(hits))
	observeStage("lookup", start)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: lookup investors: %w", domain.ErrSearchFailed, err)
	}

	rep, err := report.Build(hits, records)
	if err != nil {
		return report.Report{}, fmt.Errorf("build report: %w", err)
	}
	if len(rep.MissingDescriptions) > 0 {
		log.Warn("Joined records lack company descriptions",
			zap.Strings("companies", rep.MissingDescriptions),
		)
	}

	log.Debug("Search completed",
		zap.Int("hits", len(hits)),
		zap.Int("companies", len(rep.Companies)),
		zap.Int("investors", len(rep.Investors)),
	)
	return rep, nil
}

func documentIDs(hits []hit.Hit) []string {
	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].DocumentID()
	}
	return ids
}

func observeStage(stage string, start time.Time) {
	metrics.SearchStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

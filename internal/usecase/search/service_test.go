package search

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/domain/investor"
	"github.com/kailas-cloud/vecdash/internal/domain/search/hit"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	"github.com/kailas-cloud/vecdash/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockHits struct {
	hits          []hit.Hit
	err           error
	called        bool
	numCandidates int
	limit         int
	vector        []float32
}

func (m *mockHits) SearchVector(
	_ context.Context, vector []float32, numCandidates, limit int,
) ([]hit.Hit, error) {
	m.called = true
	m.vector = vector
	m.numCandidates = numCandidates
	m.limit = limit
	return m.hits, m.err
}

type mockInvestors struct {
	records map[string]investor.Record
	err     error
	calls   int
	ids     []string
}

func (m *mockInvestors) FindByIDs(_ context.Context, ids []string) (map[string]investor.Record, error) {
	m.calls++
	m.ids = ids
	return m.records, m.err
}

type mockEmbedder struct {
	vec    []float32
	tokens int
	cached bool
	err    error
	text   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.text = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{
		Embedding:    m.vec,
		PromptTokens: m.tokens,
		TotalTokens:  m.tokens,
		Cached:       m.cached,
	}, nil
}

func mustRequest(t *testing.T, query string) request.Request {
	t.Helper()
	req, err := request.New(query, 0, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func fixtures() ([]hit.Hit, map[string]investor.Record) {
	hits := []hit.Hit{
		hit.New("a", "Acme", 0.93),
		hit.New("b", "Acme", 0.91),
		hit.New("b", "Beta", 0.88),
	}
	records := map[string]investor.Record{
		"a": investor.New("a", "Sequoia", map[string]string{"Acme": "Rockets"}),
		"b": investor.New("b", "Accel", map[string]string{"Acme": "Rocket parts", "Beta": "Payments"}),
	}
	return hits, records
}

// --- Tests ---

func TestSearch_EndToEnd(t *testing.T) {
	hits, records := fixtures()
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}, tokens: 7}
	hr := &mockHits{hits: hits}
	ir := &mockInvestors{records: records}
	svc := New(hr, ir, emb, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	rep, err := svc.Search(ctx, mustRequest(t, "space startups"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if emb.text != "space startups" {
		t.Errorf("query must be embedded verbatim, got %q", emb.text)
	}
	if hr.numCandidates != request.DefaultNumCandidates || hr.limit != request.DefaultLimit {
		t.Errorf("unexpected search sizes: %d/%d", hr.numCandidates, hr.limit)
	}
	if len(hr.vector) != 2 {
		t.Errorf("embedding not passed to search: %v", hr.vector)
	}
	if ir.calls != 1 || len(ir.ids) != 3 {
		t.Errorf("expected one batched lookup with every hit id, got calls=%d ids=%v", ir.calls, ir.ids)
	}

	if rep.Hits != 3 || len(rep.Companies) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	acme := rep.Companies[0]
	if acme.Index != 1 || acme.Name != "Acme" || acme.Score != 0.93 || acme.Description != "Rockets" {
		t.Errorf("unexpected first row: %+v", acme)
	}
	if acme.InvestorNames() != "Sequoia, Accel" {
		t.Errorf("unexpected investor names: %q", acme.InvestorNames())
	}
	if len(rep.Investors) != 2 || rep.Investors[1].Name != "Accel" || rep.Investors[1].Count != 2 {
		t.Errorf("unexpected investor counts: %+v", rep.Investors)
	}

	if usage.TotalTokens != 7 || usage.Cached {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

func TestSearch_NoHits(t *testing.T) {
	ir := &mockInvestors{}
	svc := New(&mockHits{}, ir, &mockEmbedder{vec: []float32{1}}, nil)

	before := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("empty"))
	rep, err := svc.Search(context.Background(), mustRequest(t, "nothing matches"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.IsEmpty() || rep.Companies == nil {
		t.Fatalf("expected empty non-nil report, got %+v", rep)
	}
	if ir.calls != 0 {
		t.Error("lookup must be skipped without hits")
	}
	if got := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("empty")); got != before+1 {
		t.Errorf("expected empty counter to grow by 1, got %v -> %v", before, got)
	}
}

func TestSearch_EmbedError(t *testing.T) {
	hr := &mockHits{}
	svc := New(hr, &mockInvestors{}, &mockEmbedder{err: domain.ErrEmbeddingProviderError}, nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if hr.called {
		t.Error("search must not run when embedding fails")
	}
}

func TestSearch_VectorSearchError(t *testing.T) {
	backendErr := errors.New("index not ready")
	svc := New(&mockHits{err: backendErr}, &mockInvestors{}, &mockEmbedder{vec: []float32{1}}, nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if !errors.Is(err, domain.ErrSearchFailed) || !errors.Is(err, backendErr) {
		t.Fatalf("expected ErrSearchFailed wrapping backend error, got %v", err)
	}
}

func TestSearch_LookupError(t *testing.T) {
	hits, _ := fixtures()
	svc := New(&mockHits{hits: hits}, &mockInvestors{err: errors.New("timeout")}, &mockEmbedder{vec: []float32{1}}, nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if !errors.Is(err, domain.ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
}

func TestSearch_MissingRecord(t *testing.T) {
	hits, records := fixtures()
	delete(records, "b")
	svc := New(&mockHits{hits: hits}, &mockInvestors{records: records}, &mockEmbedder{vec: []float32{1}}, nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSearch_CachedEmbeddingUsage(t *testing.T) {
	svc := New(&mockHits{}, &mockInvestors{}, &mockEmbedder{vec: []float32{1}, cached: true}, nil)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := svc.Search(ctx, mustRequest(t, "q")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !usage.Cached || usage.TotalTokens != 0 {
		t.Errorf("expected cached usage, got %+v", usage)
	}
}

func TestSearch_WarnsOnMissingDescription(t *testing.T) {
	hits := []hit.Hit{hit.New("a", "Ghost", 0.8)}
	records := map[string]investor.Record{
		"a": investor.New("a", "Sequoia", map[string]string{"Acme": "Rockets"}),
	}
	core, logs := observer.New(zapcore.WarnLevel)
	svc := New(&mockHits{hits: hits}, &mockInvestors{records: records}, &mockEmbedder{vec: []float32{1}}, zap.New(core))

	rep, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Companies[0].Description != "" {
		t.Errorf("expected blank description, got %q", rep.Companies[0].Description)
	}

	entries := logs.FilterMessage("Joined records lack company descriptions").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	companies, ok := entries[0].ContextMap()["companies"].([]interface{})
	if !ok || len(companies) != 1 || companies[0] != "Ghost" {
		t.Errorf("unexpected companies field: %#v", entries[0].ContextMap()["companies"])
	}
}

package investor

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/vecdash/internal/db"
)

// mockFinder implements the consumer interface for tests.
type mockFinder struct {
	docs       []investorDTO
	err        error
	calls      int
	gotIDs     []string
	collection string
}

func (m *mockFinder) FindByIDs(_ context.Context, collection string, ids []string, out any) error {
	m.calls++
	m.collection = collection
	m.gotIDs = ids
	if m.err != nil {
		return m.err
	}
	*(out.(*[]investorDTO)) = m.docs
	return nil
}

func TestFindByIDs_SingleBatchedLookup(t *testing.T) {
	oid := primitive.NewObjectID()
	mf := &mockFinder{docs: []investorDTO{
		{
			ID:       oid,
			Investor: "Sequoia",
			InvestmentDetails: map[string]investmentDTO{
				"Acme": {CompanyDescription: "Rockets"},
			},
		},
		{ID: "plain-id", Investor: "Accel"},
	}}
	repo := New(mf, "data_source_1")

	records, err := repo.FindByIDs(context.Background(), []string{oid.Hex(), "plain-id", oid.Hex(), ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mf.calls != 1 {
		t.Errorf("expected one lookup, got %d", mf.calls)
	}
	if mf.collection != "data_source_1" {
		t.Errorf("unexpected collection: %s", mf.collection)
	}
	if len(mf.gotIDs) != 2 {
		t.Errorf("expected deduped ids, got %v", mf.gotIDs)
	}

	rec, ok := records[oid.Hex()]
	if !ok {
		t.Fatalf("record for ObjectID not keyed by hex: %v", records)
	}
	if rec.Name() != "Sequoia" {
		t.Errorf("unexpected investor: %s", rec.Name())
	}
	if d, ok := rec.Description("Acme"); !ok || d != "Rockets" {
		t.Errorf("unexpected description: %q %v", d, ok)
	}

	plain := records["plain-id"]
	if plain.Name() != "Accel" {
		t.Errorf("unexpected plain record: %s", plain.Name())
	}
	if _, ok := plain.Description("Acme"); ok {
		t.Error("plain record has no portfolio details")
	}
}

func TestFindByIDs_NumericIDsKeyedAsHitsReferenceThem(t *testing.T) {
	mf := &mockFinder{docs: []investorDTO{
		{ID: int32(42), Investor: "Index"},
		{ID: float64(7), Investor: "Balderton"},
	}}
	repo := New(mf, "data_source_1")

	records, err := repo.FindByIDs(context.Background(), []string{"42", "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec, ok := records["42"]; !ok || rec.Name() != "Index" {
		t.Errorf("int32 _id not keyed as \"42\": %v", records)
	}
	if rec, ok := records["7"]; !ok || rec.Name() != "Balderton" {
		t.Errorf("double _id not keyed as \"7\": %v", records)
	}
}

func TestFindByIDs_EmptySkipsStore(t *testing.T) {
	mf := &mockFinder{}
	repo := New(mf, "data_source_1")

	records, err := repo.FindByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 || mf.calls != 0 {
		t.Fatalf("expected no lookup, got calls=%d records=%d", mf.calls, len(records))
	}
}

func TestFindByIDs_StoreError(t *testing.T) {
	mf := &mockFinder{err: &db.Error{Op: db.OpFind, Err: errors.New("timeout")}}
	repo := New(mf, "data_source_1")

	_, err := repo.FindByIDs(context.Background(), []string{"x"})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpFind {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	cases := []struct {
		in   any
		want string
	}{
		{oid, oid.Hex()},
		{"abc", "abc"},
		{nil, ""},
		{int32(42), "42"},
	}
	for _, tc := range cases {
		if got := idString(tc.in); got != tc.want {
			t.Errorf("idString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

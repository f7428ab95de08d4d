package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/kailas-cloud/vecdash/internal/db"
)

const testDB = "proprietary-database-investor"

func testQuery() *db.VectorQuery {
	return &db.VectorQuery{
		Collection:    "company_embeddings",
		IndexName:     "company-description",
		Path:          "companyDescription_embedding",
		Vector:        []float32{0.1, 0.2, 0.3},
		NumCandidates: 100,
		Limit:         10,
		ReturnFields:  []string{"original_document_id", "company_name"},
	}
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(context.Background(), Config{Database: "x"}); err == nil {
		t.Error("expected error for empty uri")
	}
	if _, err := NewStore(context.Background(), Config{URI: "mongodb://localhost"}); err == nil {
		t.Error("expected error for empty database")
	}
}

func TestPing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := NewStoreFromClient(mt.Client, testDB)
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		s := NewStoreFromClient(mt.Client, testDB)
		err := s.Ping(context.Background())

		var dbErr *db.Error
		if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
			t.Fatalf("expected db.Error with op ping, got %v", err)
		}
	})
}

func TestVectorSearch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("parses entries", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := testDB + ".company_embeddings"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "original_document_id", Value: oid},
				{Key: "company_name", Value: "Foo"},
				{Key: "score", Value: 0.93},
			},
			bson.D{
				{Key: "original_document_id", Value: "plain-id"},
				{Key: "company_name", Value: "Bar"},
				{Key: "score", Value: 0.81},
			},
		))

		s := NewStoreFromClient(mt.Client, testDB)
		res, err := s.VectorSearch(context.Background(), testQuery())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Total != 2 || len(res.Entries) != 2 {
			t.Fatalf("expected 2 entries, got total=%d len=%d", res.Total, len(res.Entries))
		}

		first := res.Entries[0]
		if first.Fields["original_document_id"] != oid.Hex() {
			t.Errorf("id = %q, want %q", first.Fields["original_document_id"], oid.Hex())
		}
		if first.Fields["company_name"] != "Foo" {
			t.Errorf("company_name = %q", first.Fields["company_name"])
		}
		if first.Score != 0.93 {
			t.Errorf("score = %f, want 0.93", first.Score)
		}
		if _, ok := first.Fields["score"]; ok {
			t.Error("score must not be duplicated into fields")
		}
		if res.Entries[1].Fields["original_document_id"] != "plain-id" {
			t.Errorf("unexpected second id %q", res.Entries[1].Fields["original_document_id"])
		}
	})

	mt.Run("empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+".company_embeddings", mtest.FirstBatch))

		s := NewStoreFromClient(mt.Client, testDB)
		res, err := s.VectorSearch(context.Background(), testQuery())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Total != 0 || len(res.Entries) != 0 {
			t.Errorf("expected no entries, got %+v", res)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    40324,
			Name:    "Location40324",
			Message: "Unrecognized pipeline stage name: '$vectorSearch'",
		}))

		s := NewStoreFromClient(mt.Client, testDB)
		_, err := s.VectorSearch(context.Background(), testQuery())

		var dbErr *db.Error
		if !errors.As(err, &dbErr) || dbErr.Op != db.OpAggregate {
			t.Fatalf("expected db.Error with op aggregate, got %v", err)
		}
	})
}

func TestVectorSearch_InvalidQuery(t *testing.T) {
	s := &Store{}

	tests := []struct {
		name   string
		mutate func(q *db.VectorQuery)
	}{
		{"no collection", func(q *db.VectorQuery) { q.Collection = "" }},
		{"no index", func(q *db.VectorQuery) { q.IndexName = "" }},
		{"no path", func(q *db.VectorQuery) { q.Path = "" }},
		{"empty vector", func(q *db.VectorQuery) { q.Vector = nil }},
		{"zero limit", func(q *db.VectorQuery) { q.Limit = 0 }},
		{"limit above candidates", func(q *db.VectorQuery) { q.Limit = 500 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := testQuery()
			tc.mutate(q)
			_, err := s.VectorSearch(context.Background(), q)
			if !errors.Is(err, db.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestBuildVectorSearchPipeline(t *testing.T) {
	q := testQuery()
	q.ReturnFields = append(q.ReturnFields, "score", "_id")

	pipeline := buildVectorSearchPipeline(q)
	if len(pipeline) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(pipeline))
	}

	search := pipeline[0].(bson.D)[0]
	if search.Key != "$vectorSearch" {
		t.Fatalf("first stage = %q", search.Key)
	}
	params := search.Value.(bson.D).Map()
	if params["index"] != "company-description" {
		t.Errorf("index = %v", params["index"])
	}
	if params["path"] != "companyDescription_embedding" {
		t.Errorf("path = %v", params["path"])
	}
	if params["numCandidates"] != 100 || params["limit"] != 10 {
		t.Errorf("numCandidates/limit = %v/%v", params["numCandidates"], params["limit"])
	}

	project := pipeline[1].(bson.D)[0]
	if project.Key != "$project" {
		t.Fatalf("second stage = %q", project.Key)
	}
	fields := project.Value.(bson.D)
	wantKeys := []string{"_id", "original_document_id", "company_name", "score"}
	if len(fields) != len(wantKeys) {
		t.Fatalf("projection = %v", fields)
	}
	for i, k := range wantKeys {
		if fields[i].Key != k {
			t.Errorf("projection[%d] = %q, want %q", i, fields[i].Key, k)
		}
	}
	if fields[0].Value != 0 {
		t.Errorf("_id must be excluded, got %v", fields[0].Value)
	}
}

func TestFindByIDs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes documents", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+".data_source_1", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: oid},
				{Key: "investor", Value: "Alpha Capital"},
			},
		))

		type doc struct {
			ID       primitive.ObjectID `bson:"_id"`
			Investor string             `bson:"investor"`
		}
		var out []doc

		s := NewStoreFromClient(mt.Client, testDB)
		if err := s.FindByIDs(context.Background(), "data_source_1", []string{oid.Hex()}, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 1 || out[0].Investor != "Alpha Capital" || out[0].ID != oid {
			t.Errorf("unexpected decode: %+v", out)
		}
	})

	mt.Run("empty ids skip the round trip", func(mt *mtest.T) {
		var out []bson.M
		s := NewStoreFromClient(mt.Client, testDB)
		if err := s.FindByIDs(context.Background(), "data_source_1", nil, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != nil {
			t.Errorf("expected untouched output, got %v", out)
		}
	})
}

func TestIDCandidates(t *testing.T) {
	oid := primitive.NewObjectID()
	in := idCandidates([]string{oid.Hex(), "slug-id"})

	if len(in) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %v", len(in), in)
	}
	if in[0] != oid {
		t.Errorf("candidate[0] = %v, want ObjectID", in[0])
	}
	if in[1] != oid.Hex() {
		t.Errorf("candidate[1] = %v, want hex string", in[1])
	}
	if in[2] != "slug-id" {
		t.Errorf("candidate[2] = %v", in[2])
	}
}

func TestIDCandidates_NumericIDs(t *testing.T) {
	in := idCandidates([]string{"42", "-7", "4.5"})

	want := bson.A{int64(42), "42", int64(-7), "-7", "4.5"}
	if len(in) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %v", len(want), len(in), in)
	}
	for i := range want {
		if in[i] != want[i] {
			t.Errorf("candidate[%d] = %#v, want %#v", i, in[i], want[i])
		}
	}
}

func TestStringify(t *testing.T) {
	oid := primitive.NewObjectID()
	tests := []struct {
		in     any
		want   string
		wantOK bool
	}{
		{"x", "x", true},
		{oid, oid.Hex(), true},
		{int32(7), "7", true},
		{nil, "", false},
		{bson.M{"a": 1}, "", false},
		{bson.A{1, 2}, "", false},
	}
	for _, tc := range tests {
		got, ok := stringify(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("stringify(%v) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestVectorIndexDefinition(t *testing.T) {
	def := vectorIndexDefinition(&db.VectorIndexDefinition{
		Name:       "company-description",
		Path:       "companyDescription_embedding",
		Dimensions: 768,
		Similarity: db.SimilarityCosine,
	})

	fields := def.Map()["fields"].(bson.A)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	f := fields[0].(bson.D).Map()
	if f["type"] != "vector" || f["path"] != "companyDescription_embedding" {
		t.Errorf("unexpected field: %v", f)
	}
	if f["numDimensions"] != 768 || f["similarity"] != "cosine" {
		t.Errorf("unexpected field: %v", f)
	}
}

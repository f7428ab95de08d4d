package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/vecdash/internal/db"
)

// scoreField is the projected name of the $meta vectorSearchScore.
const scoreField = "score"

// VectorSearch runs a $vectorSearch aggregation followed by a projection of
// the requested return fields and the similarity score.
func (s *Store) VectorSearch(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
	if err := validateVectorQuery(q); err != nil {
		return nil, err
	}

	cursor, err := s.collection(q.Collection).Aggregate(ctx, buildVectorSearchPipeline(q))
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpDecode, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, parseEntry(doc))
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func validateVectorQuery(q *db.VectorQuery) error {
	switch {
	case q.Collection == "":
		return fmt.Errorf("%w: collection is required", db.ErrInvalidQuery)
	case q.IndexName == "":
		return fmt.Errorf("%w: index name is required", db.ErrInvalidQuery)
	case q.Path == "":
		return fmt.Errorf("%w: vector path is required", db.ErrInvalidQuery)
	case len(q.Vector) == 0:
		return fmt.Errorf("%w: query vector is empty", db.ErrInvalidQuery)
	case q.Limit <= 0 || q.NumCandidates < q.Limit:
		return fmt.Errorf("%w: need 0 < limit <= numCandidates, got limit=%d numCandidates=%d",
			db.ErrInvalidQuery, q.Limit, q.NumCandidates)
	}
	return nil
}

// buildVectorSearchPipeline builds:
//
//	[{$vectorSearch: {index, path, queryVector, numCandidates, limit}},
//	 {$project: {_id: 0, <fields>: 1, score: {$meta: "vectorSearchScore"}}}]
func buildVectorSearchPipeline(q *db.VectorQuery) bson.A {
	project := bson.D{{Key: "_id", Value: 0}}
	for _, f := range q.ReturnFields {
		if f == "_id" || f == scoreField {
			continue
		}
		project = append(project, bson.E{Key: f, Value: 1})
	}
	project = append(project, bson.E{Key: scoreField, Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}})

	return bson.A{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: q.IndexName},
			{Key: "path", Value: q.Path},
			{Key: "queryVector", Value: q.Vector},
			{Key: "numCandidates", Value: q.NumCandidates},
			{Key: "limit", Value: q.Limit},
		}}},
		bson.D{{Key: "$project", Value: project}},
	}
}

func parseEntry(doc bson.M) db.SearchEntry {
	entry := db.SearchEntry{Fields: make(map[string]string, len(doc))}
	for k, v := range doc {
		if k == scoreField {
			entry.Score = toFloat(v)
			continue
		}
		if s, ok := stringify(v); ok {
			entry.Fields[k] = s
		}
	}
	return entry
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// stringify renders scalar BSON values; nested documents are skipped.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case primitive.ObjectID:
		return t.Hex(), true
	case bson.M, bson.D, bson.A:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

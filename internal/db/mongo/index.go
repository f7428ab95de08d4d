package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/vecdash/internal/db"
)

// VectorIndexExists reports whether a search index with the given name exists.
func (s *Store) VectorIndexExists(ctx context.Context, collection, name string) (bool, error) {
	cursor, err := s.collection(collection).SearchIndexes().List(ctx, options.SearchIndexes().SetName(name))
	if err != nil {
		return false, &db.Error{Op: db.OpListSearchIndexes, Err: err}
	}

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return false, &db.Error{Op: db.OpDecode, Err: err}
	}
	return len(indexes) > 0, nil
}

// CreateVectorIndex creates an Atlas vectorSearch index. The build is
// asynchronous on the server side; queries return nothing until it is ready.
func (s *Store) CreateVectorIndex(ctx context.Context, def *db.VectorIndexDefinition) error {
	model := mongo.SearchIndexModel{
		Definition: vectorIndexDefinition(def),
		Options:    options.SearchIndexes().SetName(def.Name).SetType("vectorSearch"),
	}

	if _, err := s.collection(def.Collection).SearchIndexes().CreateOne(ctx, model); err != nil {
		return &db.Error{Op: db.OpCreateSearchIndex, Err: err}
	}
	return nil
}

func vectorIndexDefinition(def *db.VectorIndexDefinition) bson.D {
	return bson.D{{Key: "fields", Value: bson.A{
		bson.D{
			{Key: "type", Value: "vector"},
			{Key: "path", Value: def.Path},
			{Key: "numDimensions", Value: def.Dimensions},
			{Key: "similarity", Value: def.Similarity},
		},
	}}}
}

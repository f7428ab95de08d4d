package mongo

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/vecdash/internal/db"
)

// FindByIDs loads every document whose _id is in ids with a single find.
// Ids arrive stringified (see stringify), so each is matched in every form
// it may have been stored as: ObjectID hex also as ObjectID, decimal
// integers also as a number, and always as the string itself.
func (s *Store) FindByIDs(ctx context.Context, collection string, ids []string, out any) error {
	if len(ids) == 0 {
		return nil
	}

	cursor, err := s.collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": idCandidates(ids)}})
	if err != nil {
		return &db.Error{Op: db.OpFind, Err: err}
	}
	if err := cursor.All(ctx, out); err != nil {
		return &db.Error{Op: db.OpDecode, Err: err}
	}
	return nil
}

// idCandidates expands ids into their possible stored forms. A numeric
// candidate matches int32, int64 and whole double _ids alike, since $in
// compares numbers by value.
func idCandidates(ids []string) bson.A {
	in := make(bson.A, 0, len(ids)*2)
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			in = append(in, oid)
		} else if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			in = append(in, n)
		}
		in = append(in, id)
	}
	return in
}

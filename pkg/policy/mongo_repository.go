package policy

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoCollection is the subset of *mongo.Collection the repository uses.
type mongoCollection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

// MongoRepository stores documents as {_id: userID, preferences: {...}, updated_at}.
// The preferences sub-document mirrors the JSON schema field for field.
type MongoRepository struct {
	coll mongoCollection
	now  func() time.Time
}

// NewMongoRepository creates a repository over a collection.
func NewMongoRepository(coll mongoCollection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

type mongoPreferences struct {
	Preferences bson.Raw `bson:"preferences"`
}

func (r *MongoRepository) Load(ctx context.Context, userID string) ([]byte, error) {
	var doc mongoPreferences
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bson.MarshalExtJSON(doc.Preferences, false, false)
}

func (r *MongoRepository) Save(ctx context.Context, userID string, data []byte) error {
	var prefs bson.D
	if err := bson.UnmarshalExtJSON(data, false, &prefs); err != nil {
		return err
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "preferences", Value: prefs},
		{Key: "updated_at", Value: r.now().UTC()},
	}}}
	_, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update, options.UpdateOne().SetUpsert(true))
	return err
}

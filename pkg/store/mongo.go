package store

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// MongoStore keeps one document per board key.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Default MongoDB locations for board documents.
const (
	DefaultMongoDatabase   = "pegboard"
	DefaultMongoCollection = "boards"
)

type mongoDoc struct {
	Key      string         `bson:"_id"`
	Snapshot board.Snapshot `bson:"snapshot"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
// Empty database or collection names fall back to the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, key string, snap board.Snapshot) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoDoc{Key: key, Snapshot: snap},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %q", key)
	}
	return nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, key string) (board.Snapshot, bool, error) {
	if err := errors.ValidateStoreKey(key); err != nil {
		return board.Snapshot{}, false, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, errors.Wrap(errors.ErrCodeStore, err, "load %q", key)
	}
	if err := doc.Snapshot.Validate(); err != nil {
		return board.Snapshot{}, false, err
	}
	return doc.Snapshot, true, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete %q", key)
	}
	return nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list store")
	}
	keys := make([]string, 0, len(values))
	for _, v := range values {
		if key, ok := v.(string); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)

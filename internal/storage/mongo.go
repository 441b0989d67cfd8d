package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoEntry is the document shape for one key. The key is the _id, so
// the primary index doubles as the prefix index.
type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Mongo implements KV over a single MongoDB collection.
type Mongo struct {
	col *mongo.Collection
}

func NewMongo(col *mongo.Collection) *Mongo {
	return &Mongo{col: col}
}

// List uses an anchored regex on _id, which MongoDB serves from the _id index.
func (m *Mongo) List(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list %q: %w", prefix, err)
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var e struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e.Key)
	}
	return out, cur.Err()
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	var e mongoEntry
	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo get %q: %w", key, err)
	}
	return e.Value, nil
}

func (m *Mongo) Put(ctx context.Context, key string, value []byte) error {
	e := mongoEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": key}, e, opts); err != nil {
		return fmt.Errorf("mongo put %q: %w", key, err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	if _, err := m.col.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %q: %w", key, err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

package snapshot

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "strata"
	DefaultMongoCollection = "snapshots"
)

// MongoStore keeps snapshots in a MongoDB collection, one document per
// name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the snapshots collection of
// database. An empty database selects [DefaultMongoDatabase].
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(DefaultMongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save upserts s by name. A replaced document keeps its original ID since
// MongoDB forbids changing _id.
func (ms *MongoStore) Save(ctx context.Context, s *Snapshot) error {
	doc := *s
	var existing struct {
		ID string `bson:"_id"`
	}
	err := ms.coll.FindOne(ctx, bson.M{"name": s.Name},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&existing)
	switch {
	case err == nil:
		doc.ID = existing.ID
	case !stderrors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("save snapshot %q: %w", s.Name, err)
	}

	_, err = ms.coll.ReplaceOne(ctx, bson.M{"name": s.Name}, &doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", s.Name, err)
	}
	return nil
}

// Load fetches the snapshot called name.
func (ms *MongoStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	var s Snapshot
	err := ms.coll.FindOne(ctx, bson.M{"name": name}).Decode(&s)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return &s, nil
}

// List returns every snapshot ordered by name.
func (ms *MongoStore) List(ctx context.Context) ([]*Snapshot, error) {
	cur, err := ms.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var out []*Snapshot
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot called name.
func (ms *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := ms.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (ms *MongoStore) Close() error {
	return ms.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)

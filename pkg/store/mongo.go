package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aerogramlab/aerogram/pkg/errors"
)

// MongoStore archives entries in a MongoDB collection. Entries are
// keyed by their document ID (_id), so Put is an upsert.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig carries connection settings for [NewMongoStore].
type MongoConfig struct {
	URI        string `json:"uri" toml:"uri"`
	Database   string `json:"database" toml:"database"`
	Collection string `json:"collection" toml:"collection"`
}

// NewMongoStore connects, pings, and ensures the indexes List relies
// on (station plus observation time, and CAPE).
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "aerogram"
	}
	if cfg.Collection == "" {
		cfg.Collection = "diagrams"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "station", Value: 1}, {Key: "observed_at", Value: -1}}},
		{Keys: bson.D{{Key: "cape", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Put(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "entry has no ID")
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, opts)
	return err
}

func (s *MongoStore) Get(ctx context.Context, id string) (Entry, error) {
	var e Entry
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return Entry{}, errors.New(errors.ErrCodeNotFound, "no entry with ID %q", id)
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *MongoStore) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	filter := bson.M{}
	if f.Station != "" {
		filter["station"] = f.Station
	}
	if f.MinCAPE > 0 {
		filter["cape"] = bson.M{"$gte": f.MinCAPE}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "observed_at", Value: -1}}).
		SetProjection(bson.M{"document": 0})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "no entry with ID %q", id)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

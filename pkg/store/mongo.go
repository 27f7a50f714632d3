package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per layout, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoLayout struct {
	Name      string    `bson:"_id"`
	Document  []byte    `bson:"document"`
	Size      int       `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storageErr(err, "ping mongo")
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errs.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	var doc mongoLayout
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "find layout %q", name)
	}
	return doc.Document, nil
}

func (s *MongoStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	doc := mongoLayout{Name: name, Document: data, Size: len(data), UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr(err, "upsert layout %q", name)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return storageErr(err, "delete layout %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"document": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr(err, "list layouts")
	}
	var docs []mongoLayout
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "list layouts")
	}
	out := make([]Entry, len(docs))
	for i, d := range docs {
		out[i] = Entry{Name: d.Name, Size: d.Size, UpdatedAt: d.UpdatedAt}
	}
	return out, nil
}

func (s *MongoStore) Backend() string { return "mongo" }

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

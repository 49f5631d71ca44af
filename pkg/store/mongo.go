package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "reflow"
	DefaultMongoCollection = "layouts"
)

// MongoStore keeps documents in a MongoDB collection keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the created_at index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "ping mongo")
	}

	s := NewMongoStoreFromClient(client, opts.Database, opts.Collection)
	s.owned = true
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. The client is not
// disconnected by Close.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*document.Document, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	var d document.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find layout %s: %w", id, err)
	}
	return &d, nil
}

func (s *MongoStore) Put(ctx context.Context, d *document.Document) error {
	if err := prepare(d); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert layout %s: %w", d.ID, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// mongoSummary is the projection List reads.
type mongoSummary struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Boxes     int       `bson:"box_count"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "box_count", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$boxes", bson.A{}}},
			}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer cur.Close(ctx)

	var rows []mongoSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode layouts: %w", err)
	}
	out := make([]Summary, len(rows))
	for i, r := range rows {
		out[i] = Summary{ID: r.ID, Name: r.Name, Boxes: r.Boxes, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

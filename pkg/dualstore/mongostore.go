package dualstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/db"
)

const (
	COLLECTION_NAME_DOCUMENTS = "documents"
)

type storedDocument struct {
	Path      string    `bson:"path"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore is the remote durable DocumentStore.
type MongoStore struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewMongoStore(configs db.DBConfig) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	store := &MongoStore{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}
	return store, nil
}

func (s *MongoStore) getDBName() string {
	return s.DBNamePrefix + "dailydish"
}

func (s *MongoStore) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(s.timeout)*time.Second)
}

func (s *MongoStore) collectionDocuments() *mongo.Collection {
	return s.DBClient.Database(s.getDBName()).Collection(COLLECTION_NAME_DOCUMENTS)
}

func (s *MongoStore) CreateDefaultIndexes() error {
	ctx, cancel := s.getContext()
	defer cancel()

	_, err := s.collectionDocuments().Indexes().CreateOne(
		ctx, mongo.IndexModel{
			Keys: bson.D{
				{Key: "path", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	)
	return err
}

func (s *MongoStore) Read(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	var doc storedDocument
	err := s.collectionDocuments().FindOne(ctx, bson.M{"path": path}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.Data, nil
}

func (s *MongoStore) Write(ctx context.Context, path string, mutate MutatorFn) error {
	cur, err := s.Read(ctx, path)
	found := true
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		found = false
	}

	next, err := mutate(cur, found)
	if err != nil {
		return &MutateError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	doc := storedDocument{
		Path:      path,
		Data:      next,
		UpdatedAt: time.Now(),
	}
	_, err = s.collectionDocuments().ReplaceOne(
		ctx,
		bson.M{"path": path},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	_, err := s.collectionDocuments().DeleteOne(ctx, bson.M{"path": path})
	return err
}

func (s *MongoStore) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	filter := bson.M{"path": bson.M{"$regex": "^" + prefix}}
	opts := options.Find().SetProjection(bson.M{"path": 1})
	cursor, err := s.collectionDocuments().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	paths := []string{}
	for cursor.Next(ctx) {
		var doc storedDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		paths = append(paths, doc.Path)
	}
	return paths, cursor.Err()
}

// Package mongodb implements both ledger contracts on top of MongoDB. Every
// mutation is a single-document operation with a guard filter, so the server
// serializes it and concurrent writers cannot break the non-negativity
// invariants.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	articlesCollection = "articles"
	reordersCollection = "reorders"
	countersCollection = "counters"
)

// Store owns the MongoDB connection and hands out the ledger implementations.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB, verifies the connection and ensures the
// indexes both ledgers rely on.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := &Store{client: client, db: client.Database(dbName)}
	if err := store.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	return store, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := s.db.Collection(articlesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "branchId", Value: 1}, {Key: "articleId", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(reordersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "branchId", Value: 1}, {Key: "reorderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

// Catalog returns the MongoDB-backed inventory ledger.
func (s *Store) Catalog() *Catalog {
	return &Catalog{coll: s.db.Collection(articlesCollection)}
}

// Reorders returns the MongoDB-backed reorder ledger.
func (s *Store) Reorders() *Reorders {
	return &Reorders{
		coll:     s.db.Collection(reordersCollection),
		counters: s.db.Collection(countersCollection),
	}
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

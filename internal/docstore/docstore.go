// Package docstore computes publication aggregates from the MongoDB
// publication collection.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"fieldexplorer/internal/storage"
)

const storeName = "mongodb"

// MongoDB error codes that mean the client cannot use the server at all.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// Collection is the subset of *mongo.Collection the aggregator uses.
type Collection interface {
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)
}

// Store reads publication documents.
type Store struct {
	client       *mongo.Client
	publications Collection
	guard        *storage.Guard
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", classify("connect", err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", storage.Unavailable(storeName, "ping", err))
	}

	s := New(client.Database(database).Collection(collection))
	s.client = client
	return s, nil
}

// New creates a store over an existing publication collection.
func New(publications Collection) *Store {
	return &Store{publications: publications}
}

// UseGuard routes every query through g.
func (s *Store) UseGuard(g *storage.Guard) {
	s.guard = g
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	_, err := run(ctx, s, "ping", func(ctx context.Context) (struct{}, error) {
		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			return struct{}{}, storage.Unavailable(storeName, "ping", err)
		}
		return struct{}{}, nil
	})
	return err
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func run[T any](ctx context.Context, s *Store, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return storage.Run(ctx, s.guard, op, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		return v, classify(op, err)
	})
}

// classify maps a driver error onto the storage error classes.
func classify(op string, err error) error {
	if err == nil || storage.IsClassified(err) {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return storage.Unavailable(storeName, op, err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == codeUnauthorized || cmdErr.Code == codeAuthenticationFailed) {
		return storage.Unavailable(storeName, op, err)
	}

	return storage.QueryFailed(storeName, op, err)
}

// Package driver is the boundary between the mapping layer and a document
// store. The model package only ever talks to these interfaces; mongodriver
// implements them over the official MongoDB client and memdriver in memory.
package driver

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Flattener is anything that can hand the store a plain nested map.
type Flattener interface {
	Flatten() map[string]any
}

// OrderedFlattener is a Flattener that also knows its field order.
type OrderedFlattener interface {
	Flattener
	Document() bson.D
}

// SaveOptions control a single write.
type SaveOptions struct {
	// Safe requests an acknowledged write. Unacknowledged writes report
	// success even when the store drops them, e.g. on a duplicate key.
	Safe bool
}

// IndexInfo describes one index of a collection.
type IndexInfo struct {
	Name   string
	Key    bson.D
	Unique bool
}

type Database interface {
	Name() string
	Collection(name string) Collection
	// Sibling returns another database reachable over the same connection.
	Sibling(name string) Database
}

type Collection interface {
	Name() string
	Database() Database

	Find(ctx context.Context, filter any, opts *options.FindOptions) (Cursor, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, filter any) (bson.D, error)
	Count(ctx context.Context, filter any, opts *options.CountOptions) (int64, error)

	// Save inserts doc, or replaces the stored document with the same _id.
	// It returns the identity the document was stored under.
	Save(ctx context.Context, doc Flattener, opts SaveOptions) (any, error)
	Remove(ctx context.Context, id any, opts SaveOptions) error

	EnsureIndex(ctx context.Context, index mongo.IndexModel) (string, error)
	IndexInformation(ctx context.Context) (map[string]IndexInfo, error)
	Drop(ctx context.Context) error
}

type Cursor interface {
	Next(ctx context.Context) bool
	// Document is the document the last successful Next moved to.
	Document() bson.D
	Err() error
	Close(ctx context.Context) error
}

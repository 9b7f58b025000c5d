package model

import (
	"context"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minimongo/src/driver"
)

// Index is an index declaration, handed to the store as is.
type Index struct {
	Keys    bson.D
	Options *options.IndexOptions
}

// NewIndex declares an ascending index on a single field.
//
//	model.NewIndex("x", options.Index().SetUnique(true))
func NewIndex(field string, opts *options.IndexOptions) Index {
	return Index{Keys: bson.D{{Key: field, Value: 1}}, Options: opts}
}

// CompoundIndex declares an index over several keys, in order.
func CompoundIndex(keys bson.D, opts *options.IndexOptions) Index {
	return Index{Keys: keys, Options: opts}
}

// Equal reports whether both declarations carry the same keys and options.
func (ix Index) Equal(other Index) bool {
	return reflect.DeepEqual(ix.Keys, other.Keys) && reflect.DeepEqual(ix.Options, other.Options)
}

func (ix Index) Model() mongo.IndexModel {
	return mongo.IndexModel{Keys: ix.Keys, Options: ix.Options}
}

// Ensure creates the index on c unless it already exists and returns its
// name.
func (ix Index) Ensure(ctx context.Context, c driver.Collection) (string, error) {
	return c.EnsureIndex(ctx, ix.Model())
}

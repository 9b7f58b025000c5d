package model

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotConnected is returned when a model's collection is needed before
// the registry holds a database handle.
var ErrNotConnected = errors.New("not connected")

// ErrNilDatabase is returned by Connect when handed no database.
var ErrNilDatabase = errors.New("connect: nil database")

// ErrUnbound is returned when an abstract model is asked for its collection.
var ErrUnbound = errors.New("model is not bound to a collection")

// ErrCrossCollection is returned when a reference names another collection
// or database than the one resolving it.
var ErrCrossCollection = errors.New("reference points to another collection")
var ErrOutOfRange = errors.New("index out of range")
var ErrCollectionClass = errors.New("unexpected collection class")

// IsDuplicateKey reports whether err is a store-side unique index violation.
// Such errors are never translated, this only inspects them.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

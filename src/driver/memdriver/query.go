package memdriver

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"minimongo/src/helpers"
)

// ErrUnsupportedOperator is returned for filters using query operators.
var ErrUnsupportedOperator = errors.New("memdriver: query operators are not supported")

func validateFilter(filter bson.D) error {
	for _, cond := range filter {
		if strings.HasPrefix(cond.Key, "$") {
			return fmt.Errorf("%w: %s", ErrUnsupportedOperator, cond.Key)
		}
		if op, ok := operatorIn(cond.Value); ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
		}
	}
	return nil
}

// matches checks every filter field for equality against doc.
func matches(doc bson.D, filter bson.D) bool {
	for _, cond := range filter {
		value, _ := helpers.LookupPath(doc, cond.Key)
		if !fieldMatches(value, cond.Value) {
			return false
		}
	}
	return true
}

func operatorIn(v any) (string, bool) {
	var keys []string
	switch d := v.(type) {
	case bson.D:
		for _, e := range d {
			keys = append(keys, e.Key)
		}
	case bson.M:
		keys = helpers.SortedKeys(d)
	case map[string]any:
		keys = helpers.SortedKeys(d)
	}
	for _, k := range keys {
		if strings.HasPrefix(k, "$") {
			return k, true
		}
	}
	return "", false
}

// fieldMatches treats an array field as matching when any element matches,
// like MongoDB equality does.
func fieldMatches(value, want any) bool {
	if valuesEqual(value, want) {
		return true
	}
	if arr, ok := asArray(value); ok {
		if _, wantArr := asArray(want); !wantArr {
			for _, e := range arr {
				if valuesEqual(e, want) {
					return true
				}
			}
		}
	}
	return false
}

func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []any:
		return a, true
	}
	return nil, false
}

// valuesEqual compares decoded values: numbers by value, documents
// field by field, anything else deeply.
func valuesEqual(a, b any) bool {
	if eq, ok := helpers.NumericEqual(a, b); ok {
		return eq
	}

	if da, ok := asDocument(a); ok {
		db, ok := asDocument(b)
		if !ok || len(da) != len(db) {
			return false
		}
		for i := range da {
			if da[i].Key != db[i].Key || !valuesEqual(da[i].Value, db[i].Value) {
				return false
			}
		}
		return true
	}

	if aa, ok := asArray(a); ok {
		ab, ok := asArray(b)
		if !ok || len(aa) != len(ab) {
			return false
		}
		for i := range aa {
			if !valuesEqual(aa[i], ab[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func asDocument(v any) (bson.D, bool) {
	switch d := v.(type) {
	case bson.D:
		return d, true
	case bson.M:
		return helpers.MapToDocument(d), true
	case map[string]any:
		return helpers.MapToDocument(d), true
	}
	return nil, false
}

type cursor struct {
	docs    []bson.D
	pos     int
	current bson.D
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if c.pos >= len(c.docs) {
		c.current = nil
		return false
	}
	c.current = c.docs[c.pos]
	c.pos++
	return true
}

func (c *cursor) Document() bson.D { return c.current }

func (c *cursor) Err() error { return c.err }

func (c *cursor) Close(context.Context) error {
	c.docs = nil
	return nil
}

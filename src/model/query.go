package model

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minimongo/src/driver"
)

// ToEnd is the open upper bound of Query.Slice.
const ToEnd int64 = -1

// Query is a lazy find: Sort, Skip, Limit and Slice return refined copies
// and nothing is read until Iter, All, At or Count.
type Query struct {
	coll   *Collection
	filter any
	sort   bson.D
	skip   int64
	limit  int64
	// empty is set by slices that select nothing.
	empty bool
}

func (q *Query) clone() *Query {
	out := *q
	out.sort = slices.Clone(q.sort)
	return &out
}

// Sort adds a sort key; dir is 1 for ascending and -1 for descending.
func (q *Query) Sort(field string, dir int) *Query {
	out := q.clone()
	out.sort = append(out.sort, bson.E{Key: field, Value: dir})
	return out
}

func (q *Query) Skip(n int64) *Query {
	out := q.clone()
	out.skip = n
	return out
}

// Limit caps the number of results; 0 means no limit.
func (q *Query) Limit(n int64) *Query {
	out := q.clone()
	out.limit = n
	return out
}

// Slice narrows the query to results [lo, hi) of the current window; hi may
// be ToEnd. Bounds count from the start only: a negative lo is taken as 0
// and any other negative hi selects nothing. The result is still a query,
// not an instance.
func (q *Query) Slice(lo, hi int64) *Query {
	if lo < 0 {
		lo = 0
	}
	out := q.clone()
	out.skip = q.skip + lo

	switch {
	case hi == ToEnd:
		if q.limit > 0 {
			out.limit = max(q.limit-lo, 0)
			out.empty = out.limit == 0
		}
	case hi <= lo:
		out.empty = true
	default:
		n := hi - lo
		if q.limit > 0 {
			n = min(n, max(q.limit-lo, 0))
		}
		out.limit = n
		out.empty = n == 0
	}
	out.empty = out.empty || q.empty
	return out
}

// At returns the i-th result of the query as an instance.
func (q *Query) At(ctx context.Context, i int64) (*Model, error) {
	if i < 0 || q.empty || (q.limit > 0 && i >= q.limit) {
		return nil, fmt.Errorf("result %d: %w", i, ErrOutOfRange)
	}

	one := q.clone()
	one.skip = q.skip + i
	one.limit = 1

	cur, err := one.Iter(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("result %d: %w", i, ErrOutOfRange)
	}
	return cur.Model(), nil
}

// Count counts the matches of the query filter. With withLimitAndSkip the
// window set by Skip, Limit and Slice applies too.
func (q *Query) Count(ctx context.Context, withLimitAndSkip bool) (int64, error) {
	if !withLimitAndSkip {
		return q.coll.coll.Count(ctx, q.filter, nil)
	}
	if q.empty {
		return 0, nil
	}
	opts := options.Count()
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}
	return q.coll.coll.Count(ctx, q.filter, opts)
}

// Iter runs the query.
func (q *Query) Iter(ctx context.Context) (*Cursor, error) {
	if q.empty {
		return &Cursor{descriptor: q.coll.descriptor}, nil
	}

	opts := options.Find()
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	if q.skip > 0 {
		opts.SetSkip(q.skip)
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}

	cur, err := q.coll.coll.Find(ctx, q.filter, opts)
	if err != nil {
		return nil, err
	}
	return &Cursor{descriptor: q.coll.descriptor, cur: cur}, nil
}

// All runs the query and materializes every result.
func (q *Query) All(ctx context.Context) ([]*Model, error) {
	cur, err := q.Iter(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*Model
	for cur.Next(ctx) {
		out = append(out, cur.Model())
	}
	return out, cur.Err()
}

// Cursor walks the results of a query as instances.
type Cursor struct {
	descriptor *Descriptor
	// cur is nil for queries that select nothing.
	cur     driver.Cursor
	current *Model
}

func (c *Cursor) Next(ctx context.Context) bool {
	c.current = nil
	if c.cur == nil || !c.cur.Next(ctx) {
		return false
	}
	c.current = c.descriptor.FromDocument(c.cur.Document())
	return true
}

// Model returns the instance the last successful Next moved to.
func (c *Cursor) Model() *Model { return c.current }

func (c *Cursor) Err() error {
	if c.cur == nil {
		return nil
	}
	return c.cur.Err()
}

func (c *Cursor) Close(ctx context.Context) error {
	if c.cur == nil {
		return nil
	}
	return c.cur.Close(ctx)
}

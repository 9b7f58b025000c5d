package memdriver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"minimongo/src/driver"
	"minimongo/src/helpers"
)

const (
	duplicateKeyCode = 11000
	idIndexName      = "_id_"
)

type index struct {
	name   string
	keys   bson.D
	unique bool
}

type Collection struct {
	db     *Database
	name   string
	mu     sync.RWMutex
	docs   []bson.Raw
	ids    []any
	idx    []index
	logger *zap.SugaredLogger
}

func newCollection(db *Database, name string) *Collection {
	return &Collection{
		db:     db,
		name:   name,
		idx:    []index{idIndex()},
		logger: db.logger.With("collection", name),
	}
}

func idIndex() index {
	return index{name: idIndexName, keys: bson.D{{Key: driver.IDField, Value: int32(1)}}}
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Database() driver.Database { return c.db }

func (c *Collection) Find(ctx context.Context, filter any, opts *options.FindOptions) (driver.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = options.Find()
	}

	docs, err := c.match(driver.FilterDocument(filter))
	if err != nil {
		return nil, err
	}

	if opts.Sort != nil {
		keys, ok := opts.Sort.(bson.D)
		if !ok {
			return nil, fmt.Errorf("memdriver: sort must be a bson.D, got %T", opts.Sort)
		}
		if err := sortDocuments(docs, keys); err != nil {
			return nil, err
		}
	}

	docs = window(docs, opts.Skip, opts.Limit)
	return &cursor{docs: docs}, nil
}

func (c *Collection) FindOne(ctx context.Context, filter any) (bson.D, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := c.match(driver.FilterDocument(filter))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (c *Collection) Count(ctx context.Context, filter any, opts *options.CountOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	docs, err := c.match(driver.FilterDocument(filter))
	if err != nil {
		return 0, err
	}
	if opts != nil {
		docs = window(docs, opts.Skip, opts.Limit)
	}
	return int64(len(docs)), nil
}

func (c *Collection) Save(ctx context.Context, doc driver.Flattener, opts driver.SaveOptions) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, id, _ := driver.EnsureID(driver.ToDocument(doc))
	raw, err := helpers.EncodeBSON(stored)
	if err != nil {
		return nil, err
	}
	// Decode once so index keys are compared on stored types.
	decoded, err := helpers.DecodeBSON(raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.position(id)
	for _, ix := range c.idx {
		if !ix.unique || ix.name == idIndexName {
			continue
		}
		if other, dup := c.conflict(ix, decoded, pos); dup {
			if !opts.Safe {
				c.logger.Debugw("unacknowledged write dropped", "index", ix.name, "conflicts_with", other)
				return id, nil
			}
			return nil, duplicateKeyError(c, ix, decoded)
		}
	}

	if pos >= 0 {
		c.docs[pos] = raw
	} else {
		c.docs = append(c.docs, raw)
		c.ids = append(c.ids, id)
	}
	return id, nil
}

func (c *Collection) Remove(ctx context.Context, id any, _ driver.SaveOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.position(id)
	if pos < 0 {
		return nil
	}
	c.docs = append(c.docs[:pos], c.docs[pos+1:]...)
	c.ids = append(c.ids[:pos], c.ids[pos+1:]...)
	return nil
}

func (c *Collection) EnsureIndex(ctx context.Context, model mongo.IndexModel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	keys, ok := model.Keys.(bson.D)
	if !ok || len(keys) == 0 {
		return "", fmt.Errorf("memdriver: index keys must be a non-empty bson.D, got %T", model.Keys)
	}

	ix := index{name: indexName(keys), keys: keys}
	if model.Options != nil {
		if model.Options.Name != nil {
			ix.name = *model.Options.Name
		}
		if model.Options.Unique != nil {
			ix.unique = *model.Options.Unique
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.idx {
		if existing.name == ix.name {
			return ix.name, nil
		}
	}

	if ix.unique {
		for i := range c.docs {
			doc, err := helpers.DecodeBSON(c.docs[i])
			if err != nil {
				return "", err
			}
			if _, dup := c.conflict(ix, doc, i); dup {
				return "", mongo.CommandError{
					Code:    duplicateKeyCode,
					Name:    "DuplicateKey",
					Message: fmt.Sprintf("E11000 duplicate key error building index %s on %s.%s", ix.name, c.db.name, c.name),
				}
			}
		}
	}

	c.idx = append(c.idx, ix)
	c.logger.Debugw("index created", "index", ix.name, "unique", ix.unique)
	return ix.name, nil
}

func (c *Collection) IndexInformation(ctx context.Context) (map[string]driver.IndexInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	info := make(map[string]driver.IndexInfo, len(c.idx))
	for _, ix := range c.idx {
		info[ix.name] = driver.IndexInfo{Name: ix.name, Key: ix.keys, Unique: ix.unique}
	}
	return info, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = nil
	c.ids = nil
	c.idx = []index{idIndex()}
	return nil
}

func (c *Collection) match(filter bson.D) ([]bson.D, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []bson.D
	for _, raw := range c.docs {
		doc, err := helpers.DecodeBSON(raw)
		if err != nil {
			return nil, err
		}
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// position returns the slot of the document stored under id, or -1.
func (c *Collection) position(id any) int {
	for i, stored := range c.ids {
		if valuesEqual(stored, id) {
			return i
		}
	}
	return -1
}

// conflict reports whether doc's key for ix is already taken by a document
// other than the one at skip.
func (c *Collection) conflict(ix index, doc bson.D, skip int) (any, bool) {
	key := indexKey(ix, doc)
	for i, raw := range c.docs {
		if i == skip {
			continue
		}
		other, err := helpers.DecodeBSON(raw)
		if err != nil {
			continue
		}
		if keysEqual(key, indexKey(ix, other)) {
			return c.ids[i], true
		}
	}
	return nil, false
}

func indexKey(ix index, doc bson.D) []any {
	key := make([]any, len(ix.keys))
	for i, e := range ix.keys {
		// A missing field indexes as null.
		key[i], _ = helpers.LookupPath(doc, e.Key)
	}
	return key
}

func keysEqual(a, b []any) bool {
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func indexName(keys bson.D) string {
	parts := make([]string, 0, len(keys)*2)
	for _, e := range keys {
		parts = append(parts, e.Key, fmt.Sprint(e.Value))
	}
	return strings.Join(parts, "_")
}

func duplicateKeyError(c *Collection, ix index, doc bson.D) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Index: 0,
			Code:  duplicateKeyCode,
			Message: fmt.Sprintf("E11000 duplicate key error collection: %s.%s index: %s dup key: %v",
				c.db.name, c.name, ix.name, indexKey(ix, doc)),
		}},
	}
}

func window(docs []bson.D, skip, limit *int64) []bson.D {
	if skip != nil && *skip > 0 {
		if *skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[*skip:]
	}
	if limit != nil && *limit != 0 {
		n := *limit
		if n < 0 {
			n = -n
		}
		if n < int64(len(docs)) {
			docs = docs[:n]
		}
	}
	return docs
}

func sortDocuments(docs []bson.D, keys bson.D) error {
	dirs := make([]int, len(keys))
	for i, e := range keys {
		dir, err := cast.ToIntE(e.Value)
		if err != nil || (dir != 1 && dir != -1) {
			return fmt.Errorf("memdriver: unsupported sort direction %v for %q", e.Value, e.Key)
		}
		dirs[i] = dir
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for k, e := range keys {
			a, _ := helpers.LookupPath(docs[i], e.Key)
			b, _ := helpers.LookupPath(docs[j], e.Key)
			if cmp := helpers.CompareValues(a, b) * dirs[k]; cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return nil
}

package mongodriver

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"minimongo/src/driver"
)

type Collection struct {
	db     *Database
	coll   *mongo.Collection
	logger *zap.SugaredLogger
}

func (c *Collection) Name() string { return c.coll.Name() }

func (c *Collection) Database() driver.Database { return c.db }

func (c *Collection) Find(ctx context.Context, filter any, opts *options.FindOptions) (driver.Cursor, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := c.coll.Find(ctx, driver.FilterDocument(filter), findOpts...)
	if err != nil {
		return nil, err
	}
	return &cursor{cur: cur}, nil
}

func (c *Collection) FindOne(ctx context.Context, filter any) (bson.D, error) {
	var doc bson.D
	err := c.coll.FindOne(ctx, driver.FilterDocument(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Collection) Count(ctx context.Context, filter any, opts *options.CountOptions) (int64, error) {
	var countOpts []*options.CountOptions
	if opts != nil {
		countOpts = append(countOpts, opts)
	}
	return c.coll.CountDocuments(ctx, driver.FilterDocument(filter), countOpts...)
}

func (c *Collection) Save(ctx context.Context, doc driver.Flattener, opts driver.SaveOptions) (any, error) {
	stored, id, existed := driver.EnsureID(driver.ToDocument(doc))

	coll, err := c.withWriteConcern(opts)
	if err != nil {
		return nil, err
	}

	if existed {
		_, err = coll.ReplaceOne(ctx, bson.D{{Key: driver.IDField, Value: id}}, stored, options.Replace().SetUpsert(true))
	} else {
		_, err = coll.InsertOne(ctx, stored)
	}
	if err = acknowledged(err); err != nil {
		return nil, err
	}

	c.logger.Debugw("saved", "id", id, "safe", opts.Safe, "replace", existed)
	return id, nil
}

func (c *Collection) Remove(ctx context.Context, id any, opts driver.SaveOptions) error {
	coll, err := c.withWriteConcern(opts)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.D{{Key: driver.IDField, Value: id}})
	return acknowledged(err)
}

func (c *Collection) EnsureIndex(ctx context.Context, index mongo.IndexModel) (string, error) {
	name, err := c.coll.Indexes().CreateOne(ctx, index)
	if err != nil {
		return "", err
	}
	c.logger.Debugw("index ensured", "index", name)
	return name, nil
}

func (c *Collection) IndexInformation(ctx context.Context) (map[string]driver.IndexInfo, error) {
	specs, err := c.coll.Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, err
	}

	info := make(map[string]driver.IndexInfo, len(specs))
	for _, spec := range specs {
		ix, err := indexInfo(spec)
		if err != nil {
			return nil, err
		}
		info[ix.Name] = ix
	}
	return info, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}

func (c *Collection) withWriteConcern(opts driver.SaveOptions) (*mongo.Collection, error) {
	wc := writeconcern.Unacknowledged()
	if opts.Safe {
		wc = writeconcern.W1()
	}
	return c.coll.Clone(options.Collection().SetWriteConcern(wc))
}

// acknowledged treats the driver's "no acknowledgement" result as success.
func acknowledged(err error) error {
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return nil
	}
	return err
}

func indexInfo(spec *mongo.IndexSpecification) (driver.IndexInfo, error) {
	ix := driver.IndexInfo{Name: spec.Name}
	if len(spec.KeysDocument) > 0 {
		if err := bson.Unmarshal(spec.KeysDocument, &ix.Key); err != nil {
			return driver.IndexInfo{}, fmt.Errorf("invalid keys for index %s: %w", spec.Name, err)
		}
	}
	if spec.Unique != nil {
		ix.Unique = *spec.Unique
	}
	return ix, nil
}

type cursor struct {
	cur     *mongo.Cursor
	current bson.D
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	c.current = nil
	if c.err != nil || !c.cur.Next(ctx) {
		return false
	}
	var doc bson.D
	if err := c.cur.Decode(&doc); err != nil {
		c.err = err
		return false
	}
	c.current = doc
	return true
}

func (c *cursor) Document() bson.D { return c.current }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.cur.Err()
}

func (c *cursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }

package model

import (
	"context"
	"fmt"

	"minimongo/src/attrdict"
	"minimongo/src/driver"
)

// Collection is a model's view of its store collection: reads come back as
// instances of the model.
type Collection struct {
	descriptor *Descriptor
	coll       driver.Collection
}

func (c *Collection) Name() string { return c.coll.Name() }

func (c *Collection) DatabaseName() string { return c.coll.Database().Name() }

func (c *Collection) Descriptor() *Descriptor { return c.descriptor }

// Driver returns the underlying store collection.
func (c *Collection) Driver() driver.Collection { return c.coll }

// Find starts a query. Nothing is read until the query is iterated,
// counted or indexed. filter is a document (bson.D, bson.M, map or a
// Record), nil for everything, or an identity.
func (c *Collection) Find(filter any) *Query {
	return &Query{coll: c, filter: filter}
}

// FindOne returns the first match, or nil when there is none.
func (c *Collection) FindOne(ctx context.Context, filter any) (*Model, error) {
	doc, err := c.coll.FindOne(ctx, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	return c.descriptor.FromDocument(doc), nil
}

// FromReference resolves ref, which must name this collection and, if it
// names one, this database.
func (c *Collection) FromReference(ctx context.Context, ref attrdict.Reference) (*Model, error) {
	if ref.Collection != c.Name() {
		return nil, fmt.Errorf("reference to %q from %q: %w", ref.Collection, c.Name(), ErrCrossCollection)
	}
	if ref.Database != "" && ref.Database != c.DatabaseName() {
		return nil, fmt.Errorf("reference to database %q from %q: %w", ref.Database, c.DatabaseName(), ErrCrossCollection)
	}
	return c.FindOne(ctx, ref.ID)
}

// Save writes m, see Model.Save.
func (c *Collection) Save(ctx context.Context, m *Model, opts ...SaveOption) error {
	sc := saveOptions(opts)
	id, err := c.coll.Save(ctx, m, driver.SaveOptions{Safe: sc.safe})
	if err != nil {
		return err
	}
	if sc.assignID && !m.Has(driver.IDField) {
		m.Record.Set(driver.IDField, id)
	}
	return nil
}

// Remove deletes the document stored under id.
func (c *Collection) Remove(ctx context.Context, id any, opts ...SaveOption) error {
	sc := saveOptions(opts)
	return c.coll.Remove(ctx, id, driver.SaveOptions{Safe: sc.safe})
}

func (c *Collection) Count(ctx context.Context, filter any) (int64, error) {
	return c.coll.Count(ctx, filter, nil)
}

func (c *Collection) IndexInformation(ctx context.Context) (map[string]driver.IndexInfo, error) {
	return c.coll.IndexInformation(ctx)
}

// EnsureIndexes creates every index declared for the model.
func (c *Collection) EnsureIndexes(ctx context.Context) error {
	for _, ix := range c.descriptor.config.Indices {
		if _, err := ix.Ensure(ctx, c.coll); err != nil {
			return fmt.Errorf("ensure index %v on %s: %w", ix.Keys, c.Name(), err)
		}
	}
	return nil
}

func (c *Collection) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}

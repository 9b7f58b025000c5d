package model

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"minimongo/src/attrdict"
)

// Descriptor is a declared model type. Concrete descriptors carry a Config;
// abstract ones do not and can never reach a collection.
type Descriptor struct {
	name     string
	registry *Registry
	parent   *Descriptor
	config   *Config
}

func (d *Descriptor) Name() string { return d.name }

func (d *Descriptor) Abstract() bool { return d.config == nil }

// Parent returns the descriptor passed to Extends, if any.
func (d *Descriptor) Parent() *Descriptor { return d.parent }

func (d *Descriptor) Registry() *Registry { return d.registry }

// Config returns a copy of the model's configuration; ok is false for
// abstract models.
func (d *Descriptor) Config() (cfg Config, ok bool) {
	if d.config == nil {
		return Config{}, false
	}
	return d.config.clone(), true
}

// New creates an unsaved instance. Initial fields go through the model's
// field map, in lexical key order.
func (d *Descriptor) New(fields map[string]any) *Model {
	m := &Model{Record: attrdict.New(nil), descriptor: d}
	m.Update(fields)
	return m
}

// FromDocument materializes a stored document as an instance.
func (d *Descriptor) FromDocument(doc bson.D) *Model {
	m := &Model{Record: attrdict.New(nil), descriptor: d}
	m.UpdateDocument(doc)
	return m
}

// Collection returns the model's collection. It fails with ErrNotConnected
// while the registry has no handle and auto-connect cannot provide one (a
// failed dial wraps both ErrNotConnected and the dial error), and with
// ErrUnbound for abstract models.
func (d *Descriptor) Collection(ctx context.Context) (*Collection, error) {
	db := d.registry.db
	if db == nil {
		if d.config == nil || !d.config.AutoConnect || d.registry.dialer == nil {
			return nil, fmt.Errorf("collection of %s: %w", d.name, ErrNotConnected)
		}
		var err error
		if db, err = d.registry.autoConnect(ctx); err != nil {
			return nil, fmt.Errorf("collection of %s: %w", d.name, err)
		}
	}

	if d.config == nil {
		return nil, fmt.Errorf("collection of abstract model %s: %w", d.name, ErrUnbound)
	}

	if d.config.Database != "" && d.config.Database != db.Name() {
		db = db.Sibling(d.config.Database)
	}
	return &Collection{
		descriptor: d,
		coll:       db.Collection(d.config.Collection),
	}, nil
}

// EnsureIndexes creates every declared index of the model. Auto-index
// models get this on declaration or connect; others call it themselves.
func (d *Descriptor) EnsureIndexes(ctx context.Context) error {
	c, err := d.Collection(ctx)
	if err != nil {
		return err
	}
	return c.EnsureIndexes(ctx)
}

func (d *Descriptor) pipeline() Pipeline {
	if d.config == nil {
		return nil
	}
	return d.config.FieldMap
}

// CollectionAs returns the collection of d built by its CollectionClass.
// Without a CollectionClass the plain *Collection is used, so T may be
// *Collection itself.
func CollectionAs[T any](ctx context.Context, d *Descriptor) (T, error) {
	var zero T

	c, err := d.Collection(ctx)
	if err != nil {
		return zero, err
	}

	var v any = c
	if d.config.CollectionClass != nil {
		v = d.config.CollectionClass(c)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("collection class of %s is %T, not %T: %w", d.name, v, zero, ErrCollectionClass)
	}
	return t, nil
}

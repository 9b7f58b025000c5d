package model

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minimongo/src/attrdict"
	"minimongo/src/driver"
	"minimongo/src/helpers"
)

// Model is an instance of a declared model type: a Record whose top-level
// writes go through the model's field map.
type Model struct {
	*attrdict.Record
	descriptor *Descriptor
}

func (m *Model) Descriptor() *Descriptor { return m.descriptor }

// Set stores value under name after running it through the field map.
// Writes into nested records are not mapped.
func (m *Model) Set(name string, value any) {
	m.Record.Set(name, m.descriptor.pipeline().Apply(name, value))
}

// Update sets every entry of fields, in lexical key order.
func (m *Model) Update(fields map[string]any) {
	for _, k := range helpers.SortedKeys(fields) {
		m.Set(k, fields[k])
	}
}

// UpdateDocument sets every entry of doc, in document order.
func (m *Model) UpdateDocument(doc bson.D) {
	for _, e := range doc {
		m.Set(e.Key, e.Value)
	}
}

// ID returns the identity of a saved (or referenced) instance.
func (m *Model) ID() (any, bool) {
	v := m.Get(driver.IDField)
	if v.IsMissing() {
		return nil, false
	}
	return v.Interface(), true
}

type saveConfig struct {
	safe     bool
	assignID bool
}

type SaveOption func(*saveConfig)

// Safe makes the write acknowledged, so store errors such as duplicate keys
// are reported. Writes are unacknowledged by default.
func Safe() SaveOption {
	return func(c *saveConfig) { c.safe = true }
}

// WithoutIDAssignment saves without writing the generated identity back to
// the instance.
func WithoutIDAssignment() SaveOption {
	return func(c *saveConfig) { c.assignID = false }
}

func saveOptions(opts []SaveOption) saveConfig {
	c := saveConfig{assignID: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Save writes the instance to its model's collection and returns it. The
// identity is set on the instance only once the write succeeded.
func (m *Model) Save(ctx context.Context, opts ...SaveOption) (*Model, error) {
	c, err := m.descriptor.Collection(ctx)
	if err != nil {
		return m, err
	}
	return m, c.Save(ctx, m, opts...)
}

// Remove deletes the stored document with the instance's identity.
func (m *Model) Remove(ctx context.Context, opts ...SaveOption) (*Model, error) {
	id, ok := m.ID()
	if !ok {
		return m, fmt.Errorf("remove %s: %w", m.descriptor.name, attrdict.ErrMissingField)
	}
	c, err := m.descriptor.Collection(ctx)
	if err != nil {
		return m, err
	}
	return m, c.Remove(ctx, id, opts...)
}

type referenceConfig struct {
	withDatabase bool
	extra        bson.D
}

type ReferenceOption func(*referenceConfig)

// WithoutDatabase leaves the database out of the reference.
func WithoutDatabase() ReferenceOption {
	return func(c *referenceConfig) { c.withDatabase = false }
}

// WithExtra adds a field to the reference document.
func WithExtra(key string, value any) ReferenceOption {
	return func(c *referenceConfig) { c.extra = append(c.extra, bson.E{Key: key, Value: value}) }
}

// Reference returns a reference to the instance, naming its database unless
// WithoutDatabase is given. An instance without identity gets a new
// ObjectID first.
func (m *Model) Reference(ctx context.Context, opts ...ReferenceOption) (attrdict.Reference, error) {
	rc := referenceConfig{withDatabase: true}
	for _, opt := range opts {
		opt(&rc)
	}

	if m.descriptor.config == nil {
		return attrdict.Reference{}, fmt.Errorf("reference to abstract model %s: %w", m.descriptor.name, ErrUnbound)
	}

	ref := attrdict.Reference{
		Collection: m.descriptor.config.Collection,
		Extra:      rc.extra,
	}
	if rc.withDatabase {
		c, err := m.descriptor.Collection(ctx)
		if err != nil {
			return attrdict.Reference{}, err
		}
		ref.Database = c.DatabaseName()
	}

	id, ok := m.ID()
	if !ok {
		id = primitive.NewObjectID()
		m.Record.Set(driver.IDField, id)
	}
	ref.ID = id
	return ref, nil
}

// Equal compares the content of two instances, ignoring their model.
func (m *Model) Equal(other *Model) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Record.Equal(other.Record)
}

func (m *Model) String() string {
	return m.descriptor.name + "(" + m.Record.String() + ")"
}

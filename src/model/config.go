package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cast"
)

// CollectionFactory builds the value CollectionAs returns for a model,
// usually a custom type embedding *Collection.
type CollectionFactory func(c *Collection) any

// Meta is the configuration block of a single declaration. Zero fields
// (and nil flags) are not declared and keep the default.
type Meta struct {
	Collection      string
	Database        string
	Indices         []Index
	FieldMap        Pipeline
	Abstract        *bool
	AutoIndex       *bool
	AutoConnect     *bool
	CollectionClass CollectionFactory
}

// Bool is a helper for Meta flags.
func Bool(b bool) *bool { return &b }

// Config is the resolved configuration of a model type.
type Config struct {
	// Collection defaults to the model name in snake case.
	Collection string
	// Database, when set, binds the model to a sibling of the connected
	// database.
	Database string

	Indices  []Index
	FieldMap Pipeline

	Abstract    bool
	AutoIndex   bool
	AutoConnect bool

	CollectionClass CollectionFactory

	// Extra keeps configure() keys that are not known attributes.
	Extra map[string]any
}

func DefaultConfig() Config {
	return Config{
		AutoIndex:   true,
		AutoConnect: true,
	}
}

// Merge returns a copy of c with every attribute declared by meta copied
// over it.
func (c Config) Merge(meta *Meta) Config {
	out := c.clone()
	if meta == nil {
		return out
	}

	if meta.Collection != "" {
		out.Collection = meta.Collection
	}
	if meta.Database != "" {
		out.Database = meta.Database
	}
	if meta.Indices != nil {
		out.Indices = slices.Clone(meta.Indices)
	}
	if meta.FieldMap != nil {
		out.FieldMap = slices.Clone(meta.FieldMap)
	}
	if meta.Abstract != nil {
		out.Abstract = *meta.Abstract
	}
	if meta.AutoIndex != nil {
		out.AutoIndex = *meta.AutoIndex
	}
	if meta.AutoConnect != nil {
		out.AutoConnect = *meta.AutoConnect
	}
	if meta.CollectionClass != nil {
		out.CollectionClass = meta.CollectionClass
	}
	return out
}

// Configure returns a copy of c with overrides applied by attribute name
// (collection, database, indices, field_map, abstract, auto_index,
// auto_connect, collection_class). Scalars are converted, so "false" works
// for a flag. Unknown names land in Extra.
func (c Config) Configure(overrides map[string]any) (Config, error) {
	out := c.clone()
	for key, value := range overrides {
		var err error
		switch key {
		case "collection":
			out.Collection, err = cast.ToStringE(value)
		case "database":
			out.Database, err = cast.ToStringE(value)
		case "indices":
			out.Indices, err = toIndices(value)
		case "field_map":
			out.FieldMap, err = toPipeline(value)
		case "abstract":
			out.Abstract, err = cast.ToBoolE(value)
		case "auto_index":
			out.AutoIndex, err = cast.ToBoolE(value)
		case "auto_connect":
			out.AutoConnect, err = cast.ToBoolE(value)
		case "collection_class":
			out.CollectionClass, err = toFactory(value)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[key] = value
		}
		if err != nil {
			return c, fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return out, nil
}

func (c Config) clone() Config {
	out := c
	out.Indices = slices.Clone(c.Indices)
	out.FieldMap = slices.Clone(c.FieldMap)
	out.Extra = maps.Clone(c.Extra)
	return out
}

func toIndices(value any) ([]Index, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []Index:
		return slices.Clone(v), nil
	case Index:
		return []Index{v}, nil
	}
	return nil, fmt.Errorf("expected []Index, got %T", value)
}

func toPipeline(value any) (Pipeline, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Pipeline:
		return slices.Clone(v), nil
	case []Rule:
		return slices.Clone(Pipeline(v)), nil
	}
	return nil, fmt.Errorf("expected Pipeline, got %T", value)
}

func toFactory(value any) (CollectionFactory, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case CollectionFactory:
		return v, nil
	case func(*Collection) any:
		return v, nil
	}
	return nil, fmt.Errorf("expected CollectionFactory, got %T", value)
}

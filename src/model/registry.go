// Package model maps declared model types onto MongoDB collections.
//
// A model type is declared once, usually at start-up, and yields a
// Descriptor:
//
//	var Users = model.MustDeclare("User", &model.Meta{
//		Indices: []model.Index{model.NewIndex("email", options.Index().SetUnique(true))},
//	})
//
// Instances are Records whose field writes run through the model's field
// map. Indexes of models declared before the first Connect are created by
// Connect itself.
package model

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"minimongo/src/driver"
	"minimongo/src/driver/mongodriver"
	"minimongo/src/helpers"
	"minimongo/src/settings"
)

// Dialer opens a database handle for auto-connect.
type Dialer func(ctx context.Context) (driver.Database, error)

// Registry owns the model declarations of an application, their default
// configuration and the database handle they are bound to.
//
// A Registry is not safe for concurrent use: declare models, configure and
// connect from one goroutine (typically at start-up) before sharing it.
type Registry struct {
	defaults Config
	models   []*Descriptor
	db       driver.Database
	dialer   Dialer
	logger   *zap.SugaredLogger
}

func NewRegistry(defaults Config, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults returns a copy of the configuration new declarations start from.
func (r *Registry) Defaults() Config { return r.defaults.clone() }

// SetDefaults replaces the default configuration. Models declared earlier
// keep theirs.
func (r *Registry) SetDefaults(c Config) { r.defaults = c.clone() }

// Configure overrides default attributes by name, see Config.Configure.
func (r *Registry) Configure(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	c, err := r.defaults.Configure(overrides)
	if err != nil {
		return err
	}
	r.defaults = c
	r.logger.Debugw("defaults configured", "keys", helpers.SortedKeys(overrides))
	return nil
}

// ConfigureFrom overrides defaults from a key/value source such as
// settings.Environ() or settings.LoadFile. Only keys carrying prefix are
// used, with the prefix stripped and the rest lower-cased, so
// MONGODB_AUTO_INDEX sets auto_index. An empty prefix means
// settings.DefaultPrefix. An empty source does nothing.
func (r *Registry) ConfigureFrom(source map[string]any, prefix string) error {
	if len(source) == 0 {
		return nil
	}
	if prefix == "" {
		prefix = settings.DefaultPrefix
	}
	return r.Configure(settings.Scan(source, prefix))
}

// SetDialer installs the function auto-connect uses when a model's
// collection is needed before Connect.
func (r *Registry) SetDialer(dialer Dialer) { r.dialer = dialer }

type declareOptions struct {
	defaults *Config
	parent   *Descriptor
}

type DeclareOption func(*declareOptions)

// Extends records parent as the model this one derives from. The parent's
// configuration is not inherited.
func Extends(parent *Descriptor) DeclareOption {
	return func(o *declareOptions) { o.parent = parent }
}

// WithDefaults declares against defaults instead of the registry's.
func WithDefaults(defaults Config) DeclareOption {
	return func(o *declareOptions) { o.defaults = &defaults }
}

// Declare registers a model type. Its configuration is the defaults merged
// with meta. Abstract models get a descriptor without configuration and are
// never bound to a collection. Concrete models get a collection named after
// the model in snake case unless meta names one, and, when auto-index is on
// and the registry is already connected, their indexes are ensured right
// away.
//
// The descriptor is registered even when indexing fails; the returned error
// is only ever the store's.
func (r *Registry) Declare(ctx context.Context, name string, meta *Meta, opts ...DeclareOption) (*Descriptor, error) {
	o := declareOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	defaults := r.defaults
	if o.defaults != nil {
		defaults = *o.defaults
	}
	cfg := defaults.Merge(meta)

	d := &Descriptor{
		name:     name,
		registry: r,
		parent:   o.parent,
	}
	if cfg.Abstract {
		r.logger.Debugw("abstract model declared", "model", name)
		return d, nil
	}

	if cfg.Collection == "" {
		cfg.Collection = helpers.ToUnderscore(name)
	}
	d.config = &cfg
	r.models = append(r.models, d)
	r.logger.Debugw("model declared", "model", name, "collection", cfg.Collection)

	if cfg.AutoIndex && r.db != nil {
		if err := d.EnsureIndexes(ctx); err != nil {
			return d, err
		}
	}
	return d, nil
}

// MustDeclare is Declare for package-level variables: it panics when the
// immediate indexing fails.
func (r *Registry) MustDeclare(name string, meta *Meta, opts ...DeclareOption) *Descriptor {
	d, err := r.Declare(context.Background(), name, meta, opts...)
	if err != nil {
		panic(fmt.Sprintf("declare %s: %v", name, err))
	}
	return d
}

// Connect binds the registry to db, replacing any earlier handle, then
// ensures the indexes of every concrete auto-index model declared so far,
// in declaration order. A failing model does not stop the sweep; all
// failures are returned together. A nil db is rejected with ErrNilDatabase
// and leaves the registry as it was.
func (r *Registry) Connect(ctx context.Context, db driver.Database) error {
	if db == nil {
		return ErrNilDatabase
	}
	r.db = db
	r.logger.Infow("connected", "database", db.Name(), "models", len(r.models))

	var errs error
	for _, d := range r.models {
		if !d.config.AutoIndex {
			continue
		}
		if err := d.EnsureIndexes(ctx); err != nil {
			r.logger.Warnw("index sweep failed", "model", d.name, "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Dial connects to MongoDB with s and binds the registry to the result.
func (r *Registry) Dial(ctx context.Context, s *settings.Settings) (driver.Database, error) {
	db, err := mongodriver.Dial(ctx, s, r.logger)
	if err != nil {
		return nil, err
	}
	return db, r.Connect(ctx, db)
}

// Database returns the current handle, or nil before Connect.
func (r *Registry) Database() driver.Database { return r.db }

func (r *Registry) Connected() bool { return r.db != nil }

// Models returns the concrete models in declaration order.
func (r *Registry) Models() []*Descriptor {
	out := make([]*Descriptor, len(r.models))
	copy(out, r.models)
	return out
}

// autoConnect dials and connects for a model whose collection is needed
// before Connect. A failed dial leaves the registry unconnected.
func (r *Registry) autoConnect(ctx context.Context) (driver.Database, error) {
	db, err := r.dialer(ctx)
	if err == nil && db == nil {
		err = ErrNilDatabase
	}
	if err != nil {
		return nil, fmt.Errorf("%w: auto-connect: %w", ErrNotConnected, err)
	}
	if err := r.Connect(ctx, db); err != nil {
		r.logger.Warnw("auto-connect index sweep failed", "error", err)
	}
	return db, nil
}

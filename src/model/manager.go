package model

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"minimongo/src/driver"
	"minimongo/src/driver/mongodriver"
	"minimongo/src/settings"
)

// Private instance and mutex for the default registry
var (
	instance *Registry
	once     sync.Once
	mu       sync.RWMutex
)

// Default returns the process-wide registry the package-level functions
// use. It starts from DefaultConfig and has no dialer, so models fail with
// ErrNotConnected until Connect or Dial; SetDialer(SettingsDialer(logger))
// opts into auto-connect.
func Default() *Registry {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()

		instance = NewRegistry(DefaultConfig(), nil)
	})

	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// ResetDefault is useful for testing - it drops the default registry
func ResetDefault() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// SettingsDialer dials MongoDB with the process settings, overridden by
// MONGODB_* variables of the environment.
func SettingsDialer(logger *zap.SugaredLogger) Dialer {
	return func(ctx context.Context) (driver.Database, error) {
		s := *settings.GetSettings()
		if err := s.Apply(settings.Environ()); err != nil {
			return nil, err
		}
		db, err := mongodriver.Dial(ctx, &s, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}

func Declare(ctx context.Context, name string, meta *Meta, opts ...DeclareOption) (*Descriptor, error) {
	return Default().Declare(ctx, name, meta, opts...)
}

func MustDeclare(name string, meta *Meta, opts ...DeclareOption) *Descriptor {
	return Default().MustDeclare(name, meta, opts...)
}

// Connect binds the default registry to db, see Registry.Connect.
func Connect(ctx context.Context, db driver.Database) error {
	return Default().Connect(ctx, db)
}

// Dial connects the default registry to MongoDB, see Registry.Dial.
func Dial(ctx context.Context, s *settings.Settings) (driver.Database, error) {
	return Default().Dial(ctx, s)
}

func Configure(overrides map[string]any) error {
	return Default().Configure(overrides)
}

func ConfigureFrom(source map[string]any, prefix string) error {
	return Default().ConfigureFrom(source, prefix)
}

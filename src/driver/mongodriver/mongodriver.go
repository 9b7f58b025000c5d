// Package mongodriver implements driver.Database over the official MongoDB
// Go client.
package mongodriver

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"minimongo/src/driver"
	"minimongo/src/settings"
)

type Database struct {
	client *mongo.Client
	db     *mongo.Database
	root   *zap.SugaredLogger
	logger *zap.SugaredLogger
}

// Dial connects to the server described by s and returns the handle of
// s.Database. The server is only contacted up front when s.Lazy is false;
// otherwise the first operation opens the connection.
func Dial(ctx context.Context, s *settings.Settings, logger *zap.SugaredLogger) (*Database, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection settings: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.ConnectionURI()))
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", s.ConnectionURI(), err)
	}

	if !s.Lazy {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to reach %s: %w", s.ConnectionURI(), err)
		}
	}

	logger.Infow("connected", "uri", s.ConnectionURI(), "database", s.Database, "lazy", s.Lazy)
	return Wrap(client.Database(s.Database), logger), nil
}

// Wrap adapts an existing database handle.
func Wrap(db *mongo.Database, logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Database{
		client: db.Client(),
		db:     db,
		root:   logger,
		logger: logger.With("database", db.Name()),
	}
}

func (d *Database) Name() string { return d.db.Name() }

func (d *Database) Client() *mongo.Client { return d.client }

func (d *Database) Collection(name string) driver.Collection {
	return &Collection{
		db:     d,
		coll:   d.db.Collection(name),
		logger: d.logger.With("collection", name),
	}
}

func (d *Database) Sibling(name string) driver.Database {
	return Wrap(d.client.Database(name), d.root)
}

// Disconnect closes the underlying client, and with it every sibling.
func (d *Database) Disconnect(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

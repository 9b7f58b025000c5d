// Package memdriver is an in-memory driver.Database. Documents are kept BSON
// encoded, so values come back with the same types a MongoDB round trip
// gives (int becomes int32, nested documents become bson.D). Filters support
// field equality only, including dotted paths and array membership.
package memdriver

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"minimongo/src/driver"
)

// Server holds every database of one in-memory deployment.
type Server struct {
	mu        sync.Mutex
	databases map[string]*Database
	logger    *zap.SugaredLogger
}

func NewServer(logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{
		databases: make(map[string]*Database),
		logger:    logger,
	}
}

// Database returns the named database, creating it on first use.
func (s *Server) Database(name string) *Database {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.databases[name]
	if !ok {
		db = &Database{
			name:        name,
			server:      s,
			collections: make(map[string]*Collection),
			logger:      s.logger.With("database", name),
		}
		s.databases[name] = db
	}
	return db
}

// Connect returns the named database. An in-memory server has no host, so
// only the name matters.
func (s *Server) Connect(_ context.Context, database string) (driver.Database, error) {
	return s.Database(database), nil
}

type Database struct {
	name        string
	server      *Server
	mu          sync.Mutex
	collections map[string]*Collection
	logger      *zap.SugaredLogger
}

func (d *Database) Name() string { return d.name }

func (d *Database) Collection(name string) driver.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.collections[name]
	if !ok {
		c = newCollection(d, name)
		d.collections[name] = c
	}
	return c
}

func (d *Database) Sibling(name string) driver.Database {
	return d.server.Database(name)
}

// CollectionNames lists the collections created so far.
func (d *Database) CollectionNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.collections))
	for name := range d.collections {
		names = append(names, name)
	}
	return names
}

package settings

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/spf13/cast"
)

// DefaultPrefix marks the keys of a key/value source that are meant for
// this library, e.g. MONGODB_HOST or MONGODB_AUTO_INDEX.
const DefaultPrefix = "MONGODB_"

type Settings struct {
	// Connection target. URI, when set, wins over Host and Port.
	Host     string
	Port     int
	Database string
	URI      string

	// Don't contact the server until it's needed
	Lazy bool

	// Prefix used when scanning key/value sources
	Prefix string

	// Development logger instead of the production one
	Debug bool

	// Strongly verbose logging
	Verbose bool
}

var (
	instance *Settings
	once     sync.Once
	mu       sync.RWMutex
)

// Defaults returns the settings connect() assumes when nothing is given.
func Defaults() *Settings {
	return &Settings{
		Host:   "localhost",
		Port:   27017,
		Lazy:   true,
		Prefix: DefaultPrefix,
	}
}

// GetSettings returns the process-wide settings, creating them from
// Defaults on first use.
func GetSettings() *Settings {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		instance = Defaults()
	})

	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// ResetSettings is useful for testing - it drops the singleton
func ResetSettings() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// ConnectionURI returns URI, or builds one from Host and Port.
func (s *Settings) ConnectionURI() string {
	if s.URI != "" {
		return s.URI
	}
	return "mongodb://" + net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Apply copies connection settings from a key/value source. Only keys
// carrying s.Prefix are considered, see Scan.
func (s *Settings) Apply(source map[string]any) error {
	for key, value := range Scan(source, s.Prefix) {
		var err error
		switch key {
		case "host":
			s.Host, err = cast.ToStringE(value)
		case "port":
			s.Port, err = cast.ToIntE(value)
		case "database":
			s.Database, err = cast.ToStringE(value)
		case "uri":
			s.URI, err = cast.ToStringE(value)
		case "lazy":
			s.Lazy, err = cast.ToBoolE(value)
		case "debug":
			s.Debug, err = cast.ToBoolE(value)
		case "verbose":
			s.Verbose, err = cast.ToBoolE(value)
		}
		if err != nil {
			return fmt.Errorf("invalid setting %s: %w", key, err)
		}
	}
	return nil
}

// Validate validates the settings and returns an error if invalid
func (s *Settings) Validate() error {
	if s.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if s.URI == "" {
		if s.Host == "" {
			return fmt.Errorf("host is required when no URI is given")
		}
		// Validate port range
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", s.Port)
		}
	}

	return nil
}

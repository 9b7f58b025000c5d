package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"minimongo/src/helpers"
)

// ErrUnsupportedFormat is returned by LoadFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported settings file format")

// Scan picks the keys of source that start with prefix, strips the prefix
// and lower-cases the rest: MONGODB_AUTO_INDEX becomes auto_index. Keys
// without the prefix are ignored. An empty prefix keeps every key.
func Scan(source map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range source {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		if name == "" {
			continue
		}
		out[name] = value
	}
	return out
}

// Environ returns the process environment as a key/value source.
func Environ() map[string]any {
	env := os.Environ()
	out := make(map[string]any, len(env))
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[key] = helpers.StripQuotes(value)
	}
	return out
}

// LoadFile reads a flat key/value source from a YAML (.yaml, .yml) or
// JSON-with-comments (.json, .jsonc) file.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading settings file %s: %w", path, err)
	}

	out := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case ".json", ".jsonc":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONC in %s: %w", path, err)
		}
		if err := json.Unmarshal(standardized, &out); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return out, nil
}

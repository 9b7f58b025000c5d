package helpers

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// EncodeBSON encodes an ordered document into BSON bytes
func EncodeBSON(doc bson.D) (bson.Raw, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}
	return data, nil
}

// DecodeBSON decodes BSON bytes back into an ordered document
func DecodeBSON(data []byte) (bson.D, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding BSON: %w", err)
	}
	return doc, nil
}

// MapToDocument converts an unordered map into a bson.D. Keys are sorted so
// the result is deterministic; nested maps are left as they are.
func MapToDocument(m map[string]any) bson.D {
	keys := SortedKeys(m)
	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: m[k]})
	}
	return doc
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DocumentValue looks up key in a document-shaped value (bson.D, bson.M or
// map[string]any).
func DocumentValue(doc any, key string) (any, bool) {
	switch d := doc.(type) {
	case bson.D:
		for _, e := range d {
			if e.Key == key {
				return e.Value, true
			}
		}
	case bson.M:
		v, ok := d[key]
		return v, ok
	case map[string]any:
		v, ok := d[key]
		return v, ok
	}
	return nil, false
}

// LookupPath resolves a dotted path ("a.b.c") inside a document.
func LookupPath(doc any, path string) (any, bool) {
	current := doc
	for _, part := range strings.Split(path, ".") {
		v, ok := DocumentValue(current, part)
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

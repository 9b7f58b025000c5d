// Package attrdict implements Record, the ordered, recursively promoted
// key/value container behind every document and sub-document.
//
// Any document-shaped value written into a Record (a map with string keys,
// bson.D or anything with a Document method) is promoted to a nested *Record,
// and any slice other than a byte string to []any, so every level supports
// the same Get/Set/Delete API:
//
//	r := attrdict.New(map[string]any{"a": 1, "b": map[string]any{"c": 2}})
//	r.Get("b").Record().Get("c") // KindScalar 2
//	r.Lookup("b.c")              // same value
//
// Records are not safe for concurrent use.
package attrdict

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"minimongo/src/helpers"
)

type Record struct {
	keys   []string
	fields map[string]any
}

// New builds a Record from a plain map. Go maps carry no order, so the
// initial fields are inserted in lexical key order.
func New(initial map[string]any) *Record {
	r := &Record{fields: make(map[string]any, len(initial))}
	r.Update(initial)
	return r
}

// FromDocument builds a Record from an ordered document, keeping its order.
func FromDocument(doc bson.D) *Record {
	r := &Record{fields: make(map[string]any, len(doc))}
	r.UpdateDocument(doc)
	return r
}

// Get returns the value stored under name, or a KindMissing Value.
func (r *Record) Get(name string) Value {
	v, ok := r.fields[name]
	if !ok {
		return Value{}
	}
	return valueOf(v)
}

// Has reports whether name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Set stores value under name, promoting document-shaped values to nested
// Records. New names are appended to the field order; existing names keep
// their position.
func (r *Record) Set(name string, value any) {
	if r.fields == nil {
		r.fields = make(map[string]any)
	}
	if _, ok := r.fields[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = promote(value)
}

// Delete removes name. Deleting a field that is not present returns an
// error wrapping ErrMissingField.
func (r *Record) Delete(name string) error {
	if _, ok := r.fields[name]; !ok {
		return fmt.Errorf("delete %q: %w", name, ErrMissingField)
	}
	delete(r.fields, name)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == name })
	return nil
}

// Update sets every entry of fields, in lexical key order.
func (r *Record) Update(fields map[string]any) {
	for _, k := range helpers.SortedKeys(fields) {
		r.Set(k, fields[k])
	}
}

// UpdateDocument sets every entry of doc, in document order.
func (r *Record) UpdateDocument(doc bson.D) {
	for _, e := range doc {
		r.Set(e.Key, e.Value)
	}
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	return slices.Clone(r.keys)
}

func (r *Record) Len() int { return len(r.keys) }

// All iterates fields in insertion order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range r.keys {
			if !yield(k, valueOf(r.fields[k])) {
				return
			}
		}
	}
}

// Lookup follows a dotted path through nested Records.
func (r *Record) Lookup(path string) Value {
	current := r
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v := current.Get(part)
		if i == len(parts)-1 {
			return v
		}
		current = v.Record()
		if current == nil {
			return Value{}
		}
	}
	return Value{}
}

// Equal compares two Records by content. Field order is ignored and numbers
// compare by value, so int(1) equals the int32(1) a round trip through BSON
// produces.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Len() != other.Len() {
		return false
	}
	for k, v := range r.fields {
		ov, ok := other.fields[k]
		if !ok || !equalValue(v, ov) {
			return false
		}
	}
	return true
}

// Flatten returns a plain nested map snapshot, with nested Records turned
// back into maps and references into their DBRef form.
func (r *Record) Flatten() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = flattenMapValue(r.fields[k])
	}
	return m
}

// Document is Flatten keeping field order, the shape handed to the store.
func (r *Record) Document() bson.D {
	doc := make(bson.D, 0, len(r.keys))
	for _, k := range r.keys {
		doc = append(doc, bson.E{Key: k, Value: flattenValue(r.fields[k])})
	}
	return doc
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(formatValue(r.fields[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func promote(value any) any {
	switch v := value.(type) {
	case *Record, Reference:
		return v
	case *Reference:
		if v == nil {
			return nil
		}
		return *v
	case bson.D:
		if ref, ok := ReferenceFrom(v); ok {
			return ref
		}
		return FromDocument(v)
	case bson.M:
		if ref, ok := ReferenceFrom(v); ok {
			return ref
		}
		return New(v)
	case map[string]any:
		if ref, ok := ReferenceFrom(v); ok {
			return ref
		}
		return New(v)
	case bson.A:
		return []any(v)
	case []any:
		return v
	case []byte:
		return v
	case documenter:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return FromDocument(v.Document())
	}
	return promoteReflect(value)
}

// documenter is anything that renders itself as an ordered document, such
// as a model instance.
type documenter interface {
	Document() bson.D
}

// promoteReflect handles typed maps and slices: maps with string keys
// become Records, slices and arrays other than byte strings become []any.
func promoteReflect(value any) any {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		m := make(map[string]any, rv.Len())
		entries := rv.MapRange()
		for entries.Next() {
			m[entries.Key().String()] = entries.Value().Interface()
		}
		return promote(m)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any(nil)
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return value
}

func flattenValue(value any) any {
	switch v := value.(type) {
	case *Record:
		return v.Document()
	case Reference:
		return v.Document()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flattenValue(e)
		}
		return out
	}
	return value
}

func flattenMapValue(value any) any {
	switch v := value.(type) {
	case *Record:
		return v.Flatten()
	case Reference:
		return v.Flatten()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flattenMapValue(e)
		}
		return out
	}
	return value
}

func equalValue(a, b any) bool {
	a, b = promote(a), promote(b)

	if eq, ok := helpers.NumericEqual(a, b); ok {
		return eq
	}

	switch av := a.(type) {
	case *Record:
		bv, ok := b.(*Record)
		return ok && av.Equal(bv)
	case Reference:
		bv, ok := b.(Reference)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case *Record:
		return v.String()
	case Reference:
		return fmt.Sprintf("Reference(%q, %v, %q)", v.Collection, v.ID, v.Database)
	case string:
		return strconv.Quote(v)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatValue(promote(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(value)
}

package attrdict

import (
	"go.mongodb.org/mongo-driver/bson"

	"minimongo/src/helpers"
)

// Reference points at a document in another (or the same) collection. Its
// stored form is the MongoDB DBRef convention:
//
//	{"$ref": <collection>, "$id": <id>, "$db": <database>, ...extra}
type Reference struct {
	Collection string
	ID         any
	// Database is optional; an empty string means "the resolver's database".
	Database string
	// Extra holds any additional fields, in order.
	Extra bson.D
}

// Get returns an extra field carried by the reference.
func (r Reference) Get(name string) (any, bool) {
	return helpers.DocumentValue(r.Extra, name)
}

// Document renders the reference in DBRef form.
func (r Reference) Document() bson.D {
	doc := bson.D{
		{Key: "$ref", Value: r.Collection},
		{Key: "$id", Value: flattenValue(r.ID)},
	}
	if r.Database != "" {
		doc = append(doc, bson.E{Key: "$db", Value: r.Database})
	}
	for _, e := range r.Extra {
		doc = append(doc, bson.E{Key: e.Key, Value: flattenValue(e.Value)})
	}
	return doc
}

// Flatten renders the reference as a plain map in DBRef form.
func (r Reference) Flatten() map[string]any {
	m := make(map[string]any, len(r.Extra)+3)
	for _, e := range r.Document() {
		m[e.Key] = e.Value
	}
	return m
}

// Equal reports whether both references name the same target and carry the
// same extra fields.
func (r Reference) Equal(other Reference) bool {
	if r.Collection != other.Collection || r.Database != other.Database {
		return false
	}
	if !equalValue(r.ID, other.ID) {
		return false
	}
	return equalValue(r.Extra, other.Extra)
}

// ReferenceFrom recognises a DBRef-shaped document. Both "$ref" and "$id"
// must be present and "$ref" must be a string.
func ReferenceFrom(doc any) (Reference, bool) {
	var d bson.D
	switch t := doc.(type) {
	case bson.D:
		d = t
	case bson.M:
		d = helpers.MapToDocument(t)
	case map[string]any:
		d = helpers.MapToDocument(t)
	default:
		return Reference{}, false
	}

	var ref Reference
	var hasRef, hasID bool
	for _, e := range d {
		switch e.Key {
		case "$ref":
			name, ok := e.Value.(string)
			if !ok {
				return Reference{}, false
			}
			ref.Collection = name
			hasRef = true
		case "$id":
			ref.ID = e.Value
			hasID = true
		case "$db":
			name, ok := e.Value.(string)
			if !ok {
				return Reference{}, false
			}
			ref.Database = name
		default:
			ref.Extra = append(ref.Extra, e)
		}
	}
	if !hasRef || !hasID {
		return Reference{}, false
	}
	return ref, true
}

package driver

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minimongo/src/helpers"
)

// IDField is the identity field of every stored document.
const IDField = "_id"

// ToDocument renders doc in the ordered form the store encodes.
func ToDocument(doc Flattener) bson.D {
	if ordered, ok := doc.(OrderedFlattener); ok {
		return ordered.Document()
	}
	return helpers.MapToDocument(doc.Flatten())
}

// EnsureID returns doc with an _id, generating an ObjectID when it has none.
// The identity is generated client side so unacknowledged writes still know
// what they stored. existed reports whether doc already carried one.
func EnsureID(doc bson.D) (out bson.D, id any, existed bool) {
	if v, ok := helpers.DocumentValue(doc, IDField); ok {
		return doc, v, true
	}
	id = primitive.NewObjectID()
	out = make(bson.D, 0, len(doc)+1)
	out = append(out, bson.E{Key: IDField, Value: id})
	out = append(out, doc...)
	return out, id, false
}

// FilterDocument normalises the filter argument of Find/FindOne/Count. nil
// matches everything, documents pass through in ordered form and any other
// value is taken to be an _id.
func FilterDocument(filter any) bson.D {
	switch f := filter.(type) {
	case nil:
		return bson.D{}
	case bson.D:
		return f
	case bson.M:
		return helpers.MapToDocument(f)
	case map[string]any:
		return helpers.MapToDocument(f)
	case OrderedFlattener:
		return f.Document()
	case Flattener:
		return helpers.MapToDocument(f.Flatten())
	}
	return bson.D{{Key: IDField, Value: filter}}
}

package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minimongo/src/attrdict"
	"minimongo/src/driver"
)

type plainDoc map[string]any

func (p plainDoc) Flatten() map[string]any { return p }

func Test_FilterDocument_Normalises_Filters(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()

	testCases := []struct {
		name   string
		filter any
		want   bson.D
	}{
		{name: "Nil", filter: nil, want: bson.D{}},
		{name: "Ordered", filter: bson.D{{Key: "y", Value: 1}, {Key: "x", Value: 2}}, want: bson.D{{Key: "y", Value: 1}, {Key: "x", Value: 2}}},
		{name: "Map", filter: map[string]any{"y": 1, "x": 2}, want: bson.D{{Key: "x", Value: 2}, {Key: "y", Value: 1}}},
		{name: "BsonM", filter: bson.M{"x": 1}, want: bson.D{{Key: "x", Value: 1}}},
		{name: "Identity", filter: id, want: bson.D{{Key: "_id", Value: id}}},
		{name: "Flattener", filter: plainDoc{"x": 1}, want: bson.D{{Key: "x", Value: 1}}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, driver.FilterDocument(testCase.filter))
		})
	}
}

func Test_EnsureID_Generates_Identity_Only_When_Missing(t *testing.T) {
	t.Parallel()

	doc, id, existed := driver.EnsureID(bson.D{{Key: "x", Value: 1}})
	require.False(t, existed)
	require.IsType(t, primitive.ObjectID{}, id)
	assert.Equal(t, "_id", doc[0].Key)
	assert.Equal(t, "x", doc[1].Key)

	same, again, existed := driver.EnsureID(doc)
	require.True(t, existed)
	assert.Equal(t, id, again)
	assert.Equal(t, doc, same)
}

func Test_ToDocument_Prefers_Ordered_Form(t *testing.T) {
	t.Parallel()

	r := attrdict.FromDocument(bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 2}})
	assert.Equal(t, bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 2}}, driver.ToDocument(r))
	assert.Equal(t, bson.D{{Key: "a", Value: 1}}, driver.ToDocument(plainDoc{"a": 1}))
}

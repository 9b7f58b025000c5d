package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minimongo/src/helpers"
)

func Test_ToUnderscore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "Foobar", want: "foobar"},
		{in: "fooBar", want: "foo_bar"},
		{in: "FooBar", want: "foo_bar"},
		{in: "FooBar42", want: "foo_bar42"},
		{in: "Foo42Bar", want: "foo42_bar"},
		{in: "FOOBar", want: "foo_bar"},
		{in: "fooBAR", want: "foo_bar"},
		{in: "SomeModel", want: "some_model"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, helpers.ToUnderscore(testCase.in))
		})
	}
}

func Test_StripQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", helpers.StripQuotes(`"abc"`))
	assert.Equal(t, "abc", helpers.StripQuotes(` 'abc' `))
	assert.Equal(t, `"abc`, helpers.StripQuotes(`"abc`))
}

func Test_NumericEqual_Ignores_Width(t *testing.T) {
	t.Parallel()

	eq, ok := helpers.NumericEqual(1, int32(1))
	require.True(t, ok)
	assert.True(t, eq)

	eq, ok = helpers.NumericEqual(int64(8), 8.0)
	require.True(t, ok)
	assert.True(t, eq)

	eq, ok = helpers.NumericEqual(7, 7.5)
	require.True(t, ok)
	assert.False(t, eq)

	_, ok = helpers.NumericEqual("1", 1)
	assert.False(t, ok)
}

func Test_CompareValues_Orders_By_Type_Then_Value(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, helpers.CompareValues(nil, 1))
	assert.Equal(t, -1, helpers.CompareValues(1, "a"))
	assert.Equal(t, 0, helpers.CompareValues(int32(2), 2.0))
	assert.Equal(t, 1, helpers.CompareValues(int64(3), int32(2)))
	assert.Equal(t, -1, helpers.CompareValues("a", "b"))
	assert.Equal(t, -1, helpers.CompareValues(false, true))

	first := primitive.NewObjectID()
	assert.Equal(t, 0, helpers.CompareValues(first, first))
}

func Test_LookupPath_Walks_Nested_Documents(t *testing.T) {
	t.Parallel()

	doc := bson.D{
		{Key: "a", Value: bson.D{{Key: "b", Value: bson.M{"c": 3}}}},
	}

	v, ok := helpers.LookupPath(doc, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = helpers.LookupPath(doc, "a.x")
	assert.False(t, ok)
}

func Test_EncodeDecodeBSON_Keeps_Field_Order(t *testing.T) {
	t.Parallel()

	raw, err := helpers.EncodeBSON(bson.D{{Key: "z", Value: "last"}, {Key: "a", Value: "first"}})
	require.NoError(t, err)

	doc, err := helpers.DecodeBSON(raw)
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.Equal(t, "z", doc[0].Key)
	assert.Equal(t, "a", doc[1].Key)
}

func Test_MapToDocument_Sorts_Keys(t *testing.T) {
	t.Parallel()

	doc := helpers.MapToDocument(map[string]any{"b": 2, "a": 1})
	assert.Equal(t, bson.D{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, doc)
}

package attrdict_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minimongo/src/attrdict"
)

func Test_Record_Get_And_Set_Behave_Like_A_Map(t *testing.T) {
	t.Parallel()

	r := attrdict.New(map[string]any{"x": 642})
	x, err := r.Get("x").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(642), x)

	r.Set("y", 426)
	assert.Equal(t, []string{"x", "y"}, r.Keys())
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Delete("x"))
	assert.True(t, r.Equal(attrdict.New(map[string]any{"y": 426})))

	r.Set("z", 3)
	require.NoError(t, r.Delete("y"))
	assert.True(t, r.Equal(attrdict.New(map[string]any{"z": 3})))
}

func Test_Record_Delete_Returns_ErrMissingField_When_Field_Absent(t *testing.T) {
	t.Parallel()

	r := attrdict.New(map[string]any{"a": 1, "b": map[string]any{"c": 2}})
	require.NoError(t, r.Delete("a"))

	want := map[string]any{"b": map[string]any{"c": 2}}
	assert.Empty(t, cmp.Diff(want, r.Flatten()))

	err := r.Delete("a")
	require.ErrorIs(t, err, attrdict.ErrMissingField)
	assert.True(t, r.Get("a").IsMissing())
}

func Test_Record_Promotes_Nested_Maps_Recursively(t *testing.T) {
	t.Parallel()

	source := map[string]any{
		"a": 1,
		"b": map[string]any{
			"c": 2,
			"d": map[string]any{"e": 3, "f": 4},
			"g": 5,
		},
		"h": bson.M{"i": 7},
		"j": bson.D{{Key: "k", Value: 8}},
	}
	r := attrdict.New(source)

	b := r.Get("b")
	require.Equal(t, attrdict.KindRecord, b.Kind())
	assert.Equal(t, attrdict.KindRecord, b.Record().Get("d").Kind())
	assert.Equal(t, attrdict.KindRecord, r.Get("h").Kind())
	assert.Equal(t, attrdict.KindRecord, r.Get("j").Kind())

	e, err := r.Lookup("b.d.e").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), e)

	flat := r.Flatten()
	assert.Empty(t, cmp.Diff(map[string]any{
		"a": 1,
		"b": map[string]any{
			"c": 2,
			"d": map[string]any{"e": 3, "f": 4},
			"g": 5,
		},
		"h": map[string]any{"i": 7},
		"j": map[string]any{"k": 8},
	}, flat))
}

func Test_Record_Set_Nested_Record_Through_Value(t *testing.T) {
	t.Parallel()

	d := attrdict.New(nil)
	d.Set("x", 1)
	d.Set("y", map[string]any{})
	d.Get("y").Record().Set("z", 2)
	d.Set("q", attrdict.New(nil))
	d.Get("q").Record().Set("r", 3)

	z, err := d.Lookup("y.z").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), z)
	assert.Equal(t, attrdict.KindRecord, d.Get("q").Kind())

	e := attrdict.FromDocument(d.Document())
	assert.True(t, e.Equal(d))
}

func Test_Record_Does_Not_Promote_Maps_Inside_Sequences(t *testing.T) {
	t.Parallel()

	r := attrdict.New(map[string]any{"l": []any{"a", map[string]any{"b": 1}}})

	l := r.Get("l")
	require.Equal(t, attrdict.KindSequence, l.Kind())
	_, isMap := l.Sequence()[1].(map[string]any)
	assert.True(t, isMap)

	r.Set("m", bson.A{1, 2})
	assert.Equal(t, attrdict.KindSequence, r.Get("m").Kind())
}

func Test_Record_Promotes_Typed_Maps_And_Slices(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	r := attrdict.New(map[string]any{
		"tags": []string{"a", "b"},
		"sub":  map[string]string{"k": "v"},
		"grid": [2]int{1, 2},
		"raw":  []byte("xy"),
		"id":   id,
	})

	assert.Equal(t, attrdict.KindSequence, r.Get("tags").Kind())
	assert.Equal(t, []any{"a", "b"}, r.Get("tags").Sequence())
	assert.Equal(t, attrdict.KindSequence, r.Get("grid").Kind())
	assert.Equal(t, []any{1, 2}, r.Get("grid").Sequence())

	require.Equal(t, attrdict.KindRecord, r.Get("sub").Kind())
	assert.Equal(t, "v", r.Lookup("sub.k").Interface())

	assert.Equal(t, attrdict.KindScalar, r.Get("raw").Kind())
	assert.Equal(t, []byte("xy"), r.Get("raw").Interface())
	assert.Equal(t, id, r.Get("id").Interface())

	// The shapes a BSON round trip produces compare equal to the originals.
	decoded := attrdict.FromDocument(bson.D{
		{Key: "tags", Value: bson.A{"a", "b"}},
		{Key: "sub", Value: bson.D{{Key: "k", Value: "v"}}},
		{Key: "grid", Value: bson.A{int32(1), int32(2)}},
		{Key: "raw", Value: []byte("xy")},
		{Key: "id", Value: id},
	})
	assert.True(t, r.Equal(decoded))
}

func Test_Record_Copies_Documenters(t *testing.T) {
	t.Parallel()

	child := attrdict.New(map[string]any{"a": 1})
	parent := attrdict.New(nil)
	parent.Set("child", documentOnly{inner: child})

	require.Equal(t, attrdict.KindRecord, parent.Get("child").Kind())
	assert.True(t, parent.Get("child").Record().Equal(child))

	// The stored copy is detached from its source.
	child.Set("b", 2)
	assert.False(t, parent.Get("child").Record().Has("b"))

	var missing *documentPtr
	parent.Set("nothing", missing)
	assert.Nil(t, parent.Get("nothing").Interface())
}

type documentOnly struct{ inner *attrdict.Record }

func (d documentOnly) Document() bson.D { return d.inner.Document() }

type documentPtr struct{ inner *attrdict.Record }

func (d *documentPtr) Document() bson.D { return d.inner.Document() }

func Test_Record_Equal_Ignores_Order_And_Numeric_Width(t *testing.T) {
	t.Parallel()

	a := attrdict.FromDocument(bson.D{{Key: "x", Value: 1}, {Key: "y", Value: 8.0}})
	b := attrdict.FromDocument(bson.D{{Key: "y", Value: int64(8)}, {Key: "x", Value: int32(1)}})
	assert.True(t, a.Equal(b))

	b.Set("z", "extra")
	assert.False(t, a.Equal(b))
}

func Test_Record_Document_Keeps_Insertion_Order(t *testing.T) {
	t.Parallel()

	r := attrdict.New(nil)
	r.Set("z", 1)
	r.Set("a", map[string]any{"b": 2})
	r.Set("z", 3)

	doc := r.Document()
	require.Len(t, doc, 2)
	assert.Equal(t, "z", doc[0].Key)
	assert.Equal(t, 3, doc[0].Value)
	assert.Equal(t, bson.D{{Key: "b", Value: 2}}, doc[1].Value)
}

func Test_Record_All_Iterates_In_Order(t *testing.T) {
	t.Parallel()

	r := attrdict.FromDocument(bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 2}})

	var names []string
	for name, v := range r.All() {
		names = append(names, name)
		assert.Equal(t, attrdict.KindScalar, v.Kind())
	}
	assert.Equal(t, []string{"b", "a"}, names)
}

func Test_Record_Promotes_DBRef_Documents_To_References(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	r := attrdict.New(map[string]any{
		"owner": bson.D{
			{Key: "$ref", Value: "users"},
			{Key: "$id", Value: id},
			{Key: "$db", Value: "app"},
			{Key: "name", Value: "foo"},
		},
	})

	v := r.Get("owner")
	require.Equal(t, attrdict.KindReference, v.Kind())
	ref, ok := v.Reference()
	require.True(t, ok)
	assert.Equal(t, "users", ref.Collection)
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, "app", ref.Database)
	name, ok := ref.Get("name")
	require.True(t, ok)
	assert.Equal(t, "foo", name)

	flat := r.Flatten()["owner"].(map[string]any)
	assert.Equal(t, "users", flat["$ref"])
	assert.Equal(t, id, flat["$id"])

	assert.True(t, r.Equal(attrdict.FromDocument(r.Document())))
}

func Test_Value_Accessors_Reject_Wrong_Kind(t *testing.T) {
	t.Parallel()

	r := attrdict.New(map[string]any{"n": "12", "sub": map[string]any{}})

	n, err := r.Get("n").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = r.Get("sub").Int64()
	require.ErrorIs(t, err, attrdict.ErrWrongKind)

	_, err = r.Get("nope").Str()
	require.ErrorIs(t, err, attrdict.ErrWrongKind)
	assert.Nil(t, r.Get("nope").Record())
}

func Test_Kind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "KindRecord", attrdict.KindRecord.String())
	assert.Equal(t, "KindMissing", attrdict.Value{}.Kind().String())
	assert.Equal(t, "Kind(9)", attrdict.Kind(9).String())
}

func Test_Record_String(t *testing.T) {
	t.Parallel()

	r := attrdict.FromDocument(bson.D{{Key: "foo", Value: "bar"}, {Key: "n", Value: 1}})
	assert.Equal(t, `{"foo": "bar", "n": 1}`, r.String())
	assert.Equal(t, "{}", attrdict.New(nil).String())
}

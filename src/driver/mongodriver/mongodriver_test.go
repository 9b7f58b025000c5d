package mongodriver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"minimongo/src/settings"
)

func Test_Dial_Lazy_Does_Not_Contact_Server(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := settings.Defaults()
	s.Host = "127.0.0.1"
	s.Port = 1
	s.Database = "minimongo_test"

	db, err := Dial(ctx, s, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Disconnect(ctx) })

	assert.Equal(t, "minimongo_test", db.Name())
	assert.Equal(t, "things", db.Collection("things").Name())
	assert.Equal(t, "minimongo_test", db.Collection("things").Database().Name())
	assert.Equal(t, "other", db.Sibling("other").Name())
	assert.Same(t, db.Client(), db.Sibling("other").(*Database).Client())
}

func Test_Dial_Rejects_Invalid_Settings(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), settings.Defaults(), nil)
	require.Error(t, err)
}

func Test_IndexInfo_Decodes_Keys(t *testing.T) {
	t.Parallel()

	keys, err := bson.Marshal(bson.D{{Key: "x", Value: int32(1)}, {Key: "y", Value: int32(-1)}})
	require.NoError(t, err)
	unique := true

	ix, err := indexInfo(&mongo.IndexSpecification{Name: "x_1_y_-1", KeysDocument: keys, Unique: &unique})
	require.NoError(t, err)

	assert.Equal(t, "x_1_y_-1", ix.Name)
	assert.True(t, ix.Unique)
	assert.Equal(t, bson.D{{Key: "x", Value: int32(1)}, {Key: "y", Value: int32(-1)}}, ix.Key)
}

func Test_Acknowledged_Swallows_Unacknowledged_Result(t *testing.T) {
	t.Parallel()

	require.NoError(t, acknowledged(mongo.ErrUnacknowledgedWrite))
	require.NoError(t, acknowledged(nil))
	require.ErrorIs(t, acknowledged(mongo.ErrNoDocuments), mongo.ErrNoDocuments)
}

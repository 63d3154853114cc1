package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/satchel-db/satchel/driver"
	"github.com/satchel-db/satchel/oid"
)

func TestToSortSpec(t *testing.T) {
	spec := toSortSpec([]driver.SortOption{
		{Field: "age", Direction: -1},
		{Field: "name", Direction: 1},
		{Field: "city", Direction: 0},
	})

	require.Equal(t, bson.D{
		{Key: "age", Value: -1},
		{Key: "name", Value: 1},
		{Key: "city", Value: 1},
	}, spec)
}

func TestToDocumentConvertsBsonShapes(t *testing.T) {
	id := oid.New()
	now := time.Now().Truncate(time.Millisecond).UTC()

	doc := toDocument(bson.M{
		"_id":   id,
		"name":  "ada",
		"age":   int32(36),
		"tags":  bson.A{"x", int32(1)},
		"meta":  bson.M{"owner": "ada"},
		"pairs": bson.D{{Key: "k", Value: "v"}},
		"at":    primitive.NewDateTimeFromTime(now),
	})

	require.Equal(t, id, doc.ID())
	require.Equal(t, "ada", doc.Get("name"))
	require.Equal(t, int64(36), doc.Get("age"))
	require.Equal(t, []interface{}{"x", int64(1)}, doc.Get("tags"))
	require.Equal(t, "ada", doc.Get("meta.owner"))
	require.Equal(t, "v", doc.Get("pairs.k"))

	at, ok := doc.Get("at").(time.Time)
	require.True(t, ok)
	require.True(t, at.Equal(now))
}

func TestDatabaseName(t *testing.T) {
	require.Equal(t, "app", databaseName("mongodb://localhost:27017/app"))
	require.Equal(t, defaultDatabase, databaseName("mongodb://localhost:27017"))
	require.Equal(t, defaultDatabase, databaseName("mongodb://localhost:27017/"))
}

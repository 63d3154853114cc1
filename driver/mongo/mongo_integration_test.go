//go:build mongodb

// Integration tests against a live server, run with
//
//	go test -tags mongodb ./driver/mongo -mongo-uri mongodb://localhost:27017/satchel_test
package mongo

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/driver"
	"github.com/satchel-db/satchel/oid"
)

var mongoURI = flag.String("mongo-uri", "mongodb://localhost:27017/satchel_test", "connection uri of the test server")

func runMongoTest(t *testing.T, test func(t *testing.T, c driver.Client)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	drv := &Driver{}
	c, err := drv.Open(ctx, driver.Config{URI: *mongoURI})
	require.NoError(t, err)
	require.NoError(t, c.Ping(ctx))
	defer c.Close(context.Background())

	test(t, c)
}

func TestInsertFindRemoveAgainstServer(t *testing.T) {
	runMongoTest(t, func(t *testing.T, c driver.Client) {
		ctx := context.Background()
		coll := c.Collection("roundtrip")

		doc := document.New()
		doc.Set("name", "a")

		id, err := coll.InsertOne(ctx, doc)
		require.NoError(t, err)
		require.NotEqual(t, oid.Nil, id)

		docs, err := coll.Find(map[string]interface{}{"_id": id}).All(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, "a", docs[0].Get("name"))
		require.Equal(t, id, docs[0].ID())

		n, err := coll.Remove(ctx, map[string]interface{}{"_id": id}, true)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		docs, err = coll.Find(map[string]interface{}{"_id": id}).All(ctx)
		require.NoError(t, err)
		require.Empty(t, docs)
	})
}

func TestUpdateAgainstServer(t *testing.T) {
	runMongoTest(t, func(t *testing.T, c driver.Client) {
		ctx := context.Background()
		coll := c.Collection("updates")

		doc := document.New()
		doc.Set("name", "a")
		doc.Set("tags", []string{"x", "y", "x"})

		id, err := coll.InsertOne(ctx, doc)
		require.NoError(t, err)

		_, err = coll.Update(ctx, map[string]interface{}{"_id": id}, map[string]interface{}{
			"$set":  map[string]interface{}{"name": "b"},
			"$pull": map[string]interface{}{"tags": "x"},
		}, false)
		require.NoError(t, err)

		docs, err := coll.Find(map[string]interface{}{"_id": id}).All(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, "b", docs[0].Get("name"))
		require.Equal(t, []interface{}{"y"}, docs[0].Get("tags"))

		_, err = coll.Remove(ctx, map[string]interface{}{"_id": id}, true)
		require.NoError(t, err)
	})
}

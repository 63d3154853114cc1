// Package mongo adapts the official MongoDB driver to the satchel
// driver contract. It registers the schemes "mongodb" and "mongodb+srv".
//
// The database name is taken from the path component of the connection
// URI, falling back to "satchel".
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodb "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/driver"
	"github.com/satchel-db/satchel/oid"
)

const defaultDatabase = "satchel"

func init() {
	drv := &Driver{}
	driver.Register("mongodb", drv)
	driver.Register("mongodb+srv", drv)
}

type Driver struct{}

func (d *Driver) Open(ctx context.Context, cfg driver.Config) (driver.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.User != "" {
		opts = opts.SetAuth(options.Credential{
			Username: cfg.User,
			Password: cfg.Password,
		})
	}

	cli, err := mongodb.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &client{
		cli: cli,
		db:  cli.Database(databaseName(cfg.URI)),
	}, nil
}

func databaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return defaultDatabase
	}
	return name
}

type client struct {
	cli *mongodb.Client
	db  *mongodb.Database
}

func (c *client) Collection(name string) driver.Collection {
	return &collection{coll: c.db.Collection(name)}
}

func (c *client) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx, readpref.Primary())
}

func (c *client) Close(ctx context.Context) error {
	return c.cli.Disconnect(ctx)
}

type collection struct {
	coll *mongodb.Collection
}

func (c *collection) Find(filter map[string]interface{}) driver.Cursor {
	return &cursor{coll: c.coll, filter: filter, limit: -1}
}

func (c *collection) InsertOne(ctx context.Context, doc *document.Document) (oid.ID, error) {
	res, err := c.coll.InsertOne(ctx, bson.M(doc.ToMap()))
	if err != nil {
		return oid.Nil, err
	}

	// The driver reports the inserted id as an opaque value; only an
	// ObjectID-shaped result can be handed back to the facade.
	id, ok := res.InsertedID.(oid.ID)
	if !ok {
		return oid.Nil, fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (c *collection) Update(ctx context.Context, filter, update map[string]interface{}, multi bool) (int64, error) {
	var (
		res *mongodb.UpdateResult
		err error
	)
	if !isOperatorUpdate(update) {
		// A plain field map is a replacement, which the server only
		// applies to a single document.
		if multi {
			return 0, fmt.Errorf("mongo: replacement update cannot target multiple documents")
		}
		res, err = c.coll.ReplaceOne(ctx, bson.M(filter), bson.M(update))
		if err != nil {
			return 0, err
		}
		return res.ModifiedCount, nil
	}
	if multi {
		res, err = c.coll.UpdateMany(ctx, bson.M(filter), bson.M(update))
	} else {
		res, err = c.coll.UpdateOne(ctx, bson.M(filter), bson.M(update))
	}
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func isOperatorUpdate(update map[string]interface{}) bool {
	for k := range update {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func (c *collection) Remove(ctx context.Context, filter map[string]interface{}, justOne bool) (int64, error) {
	var (
		res *mongodb.DeleteResult
		err error
	)
	if justOne {
		res, err = c.coll.DeleteOne(ctx, bson.M(filter))
	} else {
		res, err = c.coll.DeleteMany(ctx, bson.M(filter))
	}
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type cursor struct {
	coll   *mongodb.Collection
	filter map[string]interface{}
	limit  int64
	skip   int64
	sort   []driver.SortOption
}

func (cur *cursor) copy() *cursor {
	c2 := *cur
	return &c2
}

func (cur *cursor) Limit(n int64) driver.Cursor {
	c2 := cur.copy()
	c2.limit = n
	return c2
}

func (cur *cursor) Skip(n int64) driver.Cursor {
	c2 := cur.copy()
	c2.skip = n
	return c2
}

func (cur *cursor) Sort(opts ...driver.SortOption) driver.Cursor {
	c2 := cur.copy()
	c2.sort = opts
	return c2
}

func (cur *cursor) All(ctx context.Context) ([]*document.Document, error) {
	fo := options.Find()
	if cur.limit >= 0 {
		fo.SetLimit(cur.limit)
	}
	if cur.skip > 0 {
		fo.SetSkip(cur.skip)
	}
	if len(cur.sort) > 0 {
		fo.SetSort(toSortSpec(cur.sort))
	}

	filter := cur.filter
	if filter == nil {
		filter = map[string]interface{}{}
	}
	mcur, err := cur.coll.Find(ctx, bson.M(filter), fo)
	if err != nil {
		return nil, err
	}
	defer mcur.Close(ctx)

	docs := make([]*document.Document, 0)
	for mcur.Next(ctx) {
		var raw bson.M
		if err := mcur.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(raw))
	}
	return docs, mcur.Err()
}

// Package embedded implements the driver contract on top of a local
// key-value store, with no external server. It registers the schemes
// "mem" (in-memory badger), "badger" and "bbolt".
package embedded

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/google/orderedcode"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/driver"
	"github.com/satchel-db/satchel/internal"
	"github.com/satchel-db/satchel/kv"
	badgerkv "github.com/satchel-db/satchel/kv/badger"
	boltkv "github.com/satchel-db/satchel/kv/bbolt"
	"github.com/satchel-db/satchel/oid"
)

func init() {
	drv := &Driver{}
	driver.Register("mem", drv)
	driver.Register("badger", drv)
	driver.Register("bbolt", drv)
}

// ErrDuplicateID is returned when inserting a document whose identifier
// is already present in the collection.
var ErrDuplicateID = errors.New("embedded: duplicate document id")

type Driver struct{}

func (d *Driver) Open(ctx context.Context, cfg driver.Config) (driver.Client, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("embedded: invalid uri %q: %w", cfg.URI, err)
	}

	if u.Scheme == "mem" {
		store, err := badgerkv.OpenInMemory()
		if err != nil {
			return nil, err
		}
		return &client{kv: store}, nil
	}

	dir := u.Path
	if dir == "" {
		dir = u.Opaque
	}
	if dir == "" {
		return nil, fmt.Errorf("embedded: uri %q carries no directory", cfg.URI)
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, err
	}

	var store kv.Store
	switch u.Scheme {
	case "badger":
		store, err = badgerkv.Open(dir)
	case "bbolt":
		store, err = boltkv.Open(dir)
	default:
		err = fmt.Errorf("embedded: unknown scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	return &client{kv: store}, nil
}

type client struct {
	kv kv.Store
}

func (c *client) Collection(name string) driver.Collection {
	return &collection{kv: c.kv, name: name}
}

func (c *client) Ping(ctx context.Context) error {
	tx, err := c.kv.Begin(false)
	if err != nil {
		return err
	}
	return tx.Rollback()
}

func (c *client) Close(ctx context.Context) error {
	return c.kv.Close()
}

type collection struct {
	kv   kv.Store
	name string
}

// Document keys are orderedcode tuples (collection, idHex), so every
// document of a collection lives under a common prefix and collections
// cannot collide.
func (c *collection) docKey(id oid.ID) ([]byte, error) {
	return orderedcode.Append(nil, c.name, id.Hex())
}

func (c *collection) prefix() ([]byte, error) {
	return orderedcode.Append(nil, c.name)
}

// scan invokes fn for every document of the collection, in id order.
// Returning internal.ErrStopIteration from fn ends the scan early.
func (c *collection) scan(ctx context.Context, tx kv.Tx, fn func(key []byte, doc *document.Document) error) error {
	prefix, err := c.prefix()
	if err != nil {
		return err
	}

	cur, err := tx.Cursor()
	if err != nil {
		return err
	}
	defer cur.Close()

	if err := cur.Seek(prefix); err != nil {
		return err
	}

	for ; cur.Valid(); cur.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := cur.Item()
		if err != nil {
			return err
		}
		if !bytes.HasPrefix(item.Key, prefix) {
			break
		}

		doc, err := document.Decode(item.Value)
		if err != nil {
			return err
		}

		if err := fn(item.Key, doc); err != nil {
			if errors.Is(err, internal.ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (c *collection) Find(filter map[string]interface{}) driver.Cursor {
	return &cursor{coll: c, filter: filter, limit: -1}
}

func (c *collection) InsertOne(ctx context.Context, doc *document.Document) (oid.ID, error) {
	stored := doc.Copy()

	id := stored.ID()
	if id == oid.Nil {
		id = oid.New()
		stored.SetID(id)
	}

	key, err := c.docKey(id)
	if err != nil {
		return oid.Nil, err
	}

	data, err := document.Encode(stored)
	if err != nil {
		return oid.Nil, err
	}

	tx, err := c.kv.Begin(true)
	if err != nil {
		return oid.Nil, err
	}
	defer tx.Rollback()

	existing, err := tx.Get(key)
	if err != nil {
		return oid.Nil, err
	}
	if existing != nil {
		return oid.Nil, ErrDuplicateID
	}

	if err := tx.Set(key, data); err != nil {
		return oid.Nil, err
	}
	return id, tx.Commit()
}

func (c *collection) Update(ctx context.Context, filter, update map[string]interface{}, multi bool) (int64, error) {
	tx, err := c.kv.Begin(true)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	type write struct {
		key  []byte
		data []byte
	}
	var writes []write

	err = c.scan(ctx, tx, func(key []byte, doc *document.Document) error {
		ok, err := matches(doc, filter)
		if err != nil || !ok {
			return err
		}

		updated, err := applyUpdate(doc, update)
		if err != nil {
			return err
		}

		data, err := document.Encode(updated)
		if err != nil {
			return err
		}

		writes = append(writes, write{key: key, data: data})
		if !multi {
			return internal.ErrStopIteration
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, w := range writes {
		if err := tx.Set(w.key, w.data); err != nil {
			return 0, err
		}
	}
	return int64(len(writes)), tx.Commit()
}

func (c *collection) Remove(ctx context.Context, filter map[string]interface{}, justOne bool) (int64, error) {
	tx, err := c.kv.Begin(true)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var keys [][]byte
	err = c.scan(ctx, tx, func(key []byte, doc *document.Document) error {
		ok, err := matches(doc, filter)
		if err != nil || !ok {
			return err
		}

		keys = append(keys, key)
		if justOne {
			return internal.ErrStopIteration
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return 0, err
		}
	}
	return int64(len(keys)), tx.Commit()
}

type cursor struct {
	coll   *collection
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
	tx, err := cur.coll.kv.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	docs := make([]*document.Document, 0)
	err = cur.coll.scan(ctx, tx, func(_ []byte, doc *document.Document) error {
		ok, err := matches(doc, cur.filter)
		if err != nil || !ok {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortDocs(docs, cur.sort)

	if cur.skip > 0 {
		if cur.skip >= int64(len(docs)) {
			return nil, nil
		}
		docs = docs[cur.skip:]
	}
	if cur.limit >= 0 && cur.limit < int64(len(docs)) {
		docs = docs[:cur.limit]
	}
	return docs, nil
}

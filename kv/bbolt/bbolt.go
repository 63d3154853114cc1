// Package bbolt provides a kv.Store backed by a single bbolt file.
package bbolt

import (
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/satchel-db/satchel/kv"
)

const (
	dbFileName = "satchel.db"
	rootBucket = "documents"
)

type boltStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the store file inside dir.
func Open(dir string) (kv.Store, error) {
	db, err := bbolt.Open(filepath.Join(dir, dbFileName), 0666, nil)
	if err != nil {
		return nil, err
	}
	s := &boltStore{db: db}
	err = s.createRootBucketIfNotExists()
	return s, err
}

func (s *boltStore) createRootBucketIfNotExists() error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.CreateBucketIfNotExists([]byte(rootBucket)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *boltStore) Begin(update bool) (kv.Tx, error) {
	tx, err := s.db.Begin(update)
	return &boltTx{Tx: tx}, err
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

type boltTx struct {
	*bbolt.Tx
}

func (tx *boltTx) bucket() *bbolt.Bucket {
	return tx.Bucket([]byte(rootBucket))
}

func (tx *boltTx) Get(key []byte) ([]byte, error) {
	return tx.bucket().Get(key), nil
}

func (tx *boltTx) Set(key, value []byte) error {
	return tx.bucket().Put(key, value)
}

func (tx *boltTx) Delete(key []byte) error {
	return tx.bucket().Delete(key)
}

func (tx *boltTx) Cursor() (kv.Cursor, error) {
	return &boltCursor{Cursor: tx.bucket().Cursor()}, nil
}

func (tx *boltTx) Commit() error {
	return tx.Tx.Commit()
}

func (tx *boltTx) Rollback() error {
	return tx.Tx.Rollback()
}

type boltCursor struct {
	*bbolt.Cursor

	currItem kv.Item
}

func (c *boltCursor) Seek(seek []byte) error {
	key, value := c.Cursor.Seek(seek)
	c.currItem = kv.Item{Key: key, Value: value}
	return nil
}

func (c *boltCursor) Next() {
	key, value := c.Cursor.Next()
	c.currItem = kv.Item{Key: key, Value: value}
}

func (c *boltCursor) Valid() bool {
	return c.currItem.Key != nil
}

func (c *boltCursor) Item() (kv.Item, error) {
	return c.currItem, nil
}

func (c *boltCursor) Close() error {
	return nil
}

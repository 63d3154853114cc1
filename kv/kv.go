// Package kv defines the key-value contract the embedded driver runs on.
package kv

// Store is a transactional key-value store ordered by key.
type Store interface {
	Begin(update bool) (Tx, error)
	Close() error
}

type Tx interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Cursor() (Cursor, error)
	Commit() error
	Rollback() error
}

// Cursor iterates key-value pairs in ascending key order.
type Cursor interface {
	Seek(key []byte) error
	Next()
	Valid() bool
	Item() (Item, error)
	Close() error
}

type Item struct {
	Key, Value []byte
}

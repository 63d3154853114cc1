// Package badger provides a kv.Store backed by badger, on disk or
// fully in memory.
package badger

import (
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"github.com/satchel-db/satchel/kv"
)

type badgerStore struct {
	db     *badger.DB
	chWg   sync.WaitGroup
	chQuit chan struct{}

	gcInterval     time.Duration
	gcDiscardRatio float64
}

// Open opens (or creates) a badger store rooted at dir.
func Open(dir string) (kv.Store, error) {
	return OpenWithOptions(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
}

// OpenInMemory opens a store that keeps everything in memory. Contents
// are lost on Close.
func OpenInMemory() (kv.Store, error) {
	return OpenWithOptions(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
}

func OpenWithOptions(opts badger.Options) (kv.Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	s := &badgerStore{
		db:             db,
		chQuit:         make(chan struct{}, 1),
		gcInterval:     time.Minute * 5,
		gcDiscardRatio: 0.5,
	}
	if !opts.InMemory {
		s.startGC()
	}
	return s, nil
}

func (s *badgerStore) Begin(update bool) (kv.Tx, error) {
	return &badgerTx{Txn: s.db.NewTransaction(update)}, nil
}

func (s *badgerStore) Close() error {
	s.stopGC()
	return s.db.Close()
}

func (s *badgerStore) startGC() {
	s.chWg.Add(1)

	go func() {
		defer s.chWg.Done()

		ticker := time.NewTicker(s.gcInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.chQuit:
				return

			case <-ticker.C:
				err := s.db.RunValueLogGC(s.gcDiscardRatio)
				if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					log.Warn().Err(err).Msg("badger value log GC")
				}
			}
		}
	}()
}

func (s *badgerStore) stopGC() {
	select {
	case s.chQuit <- struct{}{}:
	default:
	}
	s.chWg.Wait()
}

type badgerTx struct {
	*badger.Txn
}

func getItemValue(item *badger.Item) ([]byte, error) {
	var value []byte
	err := item.Value(func(val []byte) error {
		value = append([]byte(nil), val...)
		return nil
	})
	return value, err
}

func (tx *badgerTx) Get(key []byte) ([]byte, error) {
	item, err := tx.Txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return getItemValue(item)
}

func (tx *badgerTx) Set(key, value []byte) error {
	return tx.Txn.Set(key, value)
}

func (tx *badgerTx) Delete(key []byte) error {
	return tx.Txn.Delete(key)
}

func (tx *badgerTx) Cursor() (kv.Cursor, error) {
	return &badgerCursor{it: tx.NewIterator(badger.DefaultIteratorOptions)}, nil
}

func (tx *badgerTx) Commit() error {
	return tx.Txn.Commit()
}

func (tx *badgerTx) Rollback() error {
	tx.Txn.Discard()
	return nil
}

type badgerCursor struct {
	it *badger.Iterator
}

func (c *badgerCursor) Seek(key []byte) error {
	c.it.Seek(key)
	return nil
}

func (c *badgerCursor) Next() {
	c.it.Next()
}

func (c *badgerCursor) Valid() bool {
	return c.it.Valid()
}

func (c *badgerCursor) Item() (kv.Item, error) {
	item := c.it.Item()
	value, err := getItemValue(item)
	return kv.Item{Key: item.KeyCopy(nil), Value: value}, err
}

func (c *badgerCursor) Close() error {
	c.it.Close()
	return nil
}

// Package satchel is a thin facade over a document database. A Store
// value wraps one client session obtained from a registered driver and
// exposes uniform CRUD operations over it, normalizing identifier
// strings into the store's native identifier type on the way in.
//
// Drivers are selected by the scheme of the configured host URI and
// must be imported for side effects, in the manner of database/sql:
//
//	import (
//		"github.com/satchel-db/satchel"
//		_ "github.com/satchel-db/satchel/driver/embedded"
//	)
//
//	store, err := satchel.Open(ctx, satchel.Config{Host: "mem://"})
package satchel

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/driver"
	"github.com/satchel-db/satchel/oid"
)

// Filter describes field-match predicates, passed opaquely to the
// driver after identifier normalization.
type Filter = map[string]interface{}

// UpdateSpec describes store-native update operators, passed opaquely
// to the driver.
type UpdateSpec = map[string]interface{}

// Store holds one open session with a document database. It is safe
// for concurrent use; the facade imposes no ordering between
// concurrently issued operations.
type Store struct {
	client     driver.Client
	logger     zerolog.Logger
	strictAuth bool
	closed     atomic.Bool
}

// Open validates cfg, connects through the driver registered for the
// host URI scheme and returns a ready Store. When credentials are
// supplied the session is verified after connecting; a failed
// verification is logged and swallowed unless StrictAuth is given.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	drv, ok := driver.Lookup(cfg.scheme())
	if !ok {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("no driver registered for scheme %q (missing driver import?)", cfg.scheme()),
		}
	}

	s := &Store{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("store", uuid.Must(uuid.NewV4()).String()).Logger()

	client, err := drv.Open(ctx, driver.Config{
		URI:      cfg.Host,
		User:     cfg.User,
		Password: cfg.Password,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("connect failed")
		return nil, &ConnectionError{URI: cfg.Host, Err: err}
	}
	s.client = client

	if cfg.User != "" {
		if err := client.Ping(ctx); err != nil {
			if s.strictAuth {
				_ = client.Close(ctx)
				return nil, &ConnectionError{URI: cfg.Host, Err: err}
			}
			s.logger.Warn().Err(err).Msg("session verification failed, continuing with unverified session")
		}
	}

	s.logger.Debug().Str("host", cfg.Host).Msg("connected")
	return s, nil
}

// Close releases the underlying session. Any further operation on the
// store, including a second Close, fails with ErrClosed.
func (s *Store) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return s.client.Close(ctx)
}

// Find returns the documents of collection matching filter. A string
// under the identifier field of filter is converted to the native
// identifier type first. With Limit and Page, pagination is pushed down
// to the driver as a skip/limit window over the full match set. An
// empty result is a nil slice, not an error.
func (s *Store) Find(ctx context.Context, collection string, filter Filter, opts ...FindOption) ([]*document.Document, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	normalized, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	var fo findOptions
	for _, opt := range opts {
		opt(&fo)
	}

	cur := s.client.Collection(collection).Find(normalized)
	if fo.limit > 0 {
		cur = cur.Limit(fo.limit)
		if fo.page > 1 {
			cur = cur.Skip((fo.page - 1) * fo.limit)
		}
	}
	if len(fo.sort) > 0 {
		cur = cur.Sort(fo.sort...)
	}

	docs, err := cur.All(ctx)
	if err != nil {
		return nil, s.fail("find", collection, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs, nil
}

// FindOne returns the first document matching filter, or (nil, nil)
// when nothing matches.
func (s *Store) FindOne(ctx context.Context, collection string, filter Filter) (*document.Document, error) {
	docs, err := s.Find(ctx, collection, filter, Limit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// FindByID returns the document with the given identifier, accepted
// either as an oid.ID or as its hex encoding, or (nil, nil) when no
// such document exists.
func (s *Store) FindByID(ctx context.Context, collection string, id interface{}) (*document.Document, error) {
	nid, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	return s.FindOne(ctx, collection, Filter{document.IDField: nid})
}

// FindAll returns every document of the collection. The whole result
// set is materialized in memory, which makes this unsuitable for large
// collections.
func (s *Store) FindAll(ctx context.Context, collection string) ([]*document.Document, error) {
	return s.Find(ctx, collection, nil)
}

// InsertOne persists doc and writes the issued identifier back into the
// caller's document, so the caller holds the persisted form.
func (s *Store) InsertOne(ctx context.Context, collection string, doc *document.Document) (oid.ID, error) {
	if s.closed.Load() {
		return oid.Nil, ErrClosed
	}
	if doc == nil {
		return oid.Nil, &ValidationError{Reason: "insert of nil document"}
	}

	id, err := s.client.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return oid.Nil, s.fail("insert", collection, err)
	}

	doc.SetID(id)
	return id, nil
}

// UpdateDocument replaces the fields of the persisted document carrying
// doc's identifier with doc's fields. The caller's document is treated
// as immutable: the update is built from a copy with the identifier
// field stripped, and doc is never modified.
func (s *Store) UpdateDocument(ctx context.Context, collection string, doc *document.Document) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if doc == nil || !doc.HasID() {
		return &ValidationError{Reason: "update of document without identifier"}
	}

	// A plain field map is a replacement update: the stored document
	// becomes this copy, with its identifier preserved by the driver.
	fields := doc.ToMap()
	delete(fields, document.IDField)

	filter := Filter{document.IDField: doc.ID()}
	_, err := s.client.Collection(collection).Update(ctx, filter, fields, false)
	if err != nil {
		return s.fail("update", collection, err)
	}
	return nil
}

// Update applies the update specification, passed through verbatim, to
// every document matching filter.
func (s *Store) Update(ctx context.Context, collection string, filter Filter, update UpdateSpec) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(update) == 0 {
		return &ValidationError{Reason: "empty update specification"}
	}

	normalized, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	if _, err := s.client.Collection(collection).Update(ctx, normalized, update, true); err != nil {
		return s.fail("update", collection, err)
	}
	return nil
}

// Pull removes the values described by pullSpec from array fields of
// every document matching filter.
func (s *Store) Pull(ctx context.Context, collection string, filter Filter, pullSpec map[string]interface{}) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(pullSpec) == 0 {
		return &ValidationError{Reason: "pull specification must be a non-empty object"}
	}
	return s.Update(ctx, collection, filter, UpdateSpec{"$pull": pullSpec})
}

// Remove deletes at most one document matching filter.
func (s *Store) Remove(ctx context.Context, collection string, filter Filter) error {
	return s.remove(ctx, collection, filter, true)
}

// RemoveAll deletes every document matching filter.
func (s *Store) RemoveAll(ctx context.Context, collection string, filter Filter) error {
	return s.remove(ctx, collection, filter, false)
}

func (s *Store) remove(ctx context.Context, collection string, filter Filter, justOne bool) error {
	if s.closed.Load() {
		return ErrClosed
	}

	normalized, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	if _, err := s.client.Collection(collection).Remove(ctx, normalized, justOne); err != nil {
		return s.fail("remove", collection, err)
	}
	return nil
}

// fail logs a driver failure through the store's observer and wraps it
// for the caller.
func (s *Store) fail(op, collection string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Str("collection", collection).Msg("store call failed")
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// normalizeFilter copies filter, converting a hex string under the
// identifier field into the native identifier type.
func normalizeFilter(filter Filter) (Filter, error) {
	normalized := make(Filter, len(filter))
	for k, v := range filter {
		normalized[k] = v
	}

	if raw, ok := normalized[document.IDField].(string); ok {
		id, err := oid.FromHex(raw)
		if err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid identifier %q: %v", raw, err)}
		}
		normalized[document.IDField] = id
	}
	return normalized, nil
}

func normalizeID(id interface{}) (oid.ID, error) {
	switch id := id.(type) {
	case oid.ID:
		return id, nil
	case string:
		nid, err := oid.FromHex(id)
		if err != nil {
			return oid.Nil, &ValidationError{Reason: fmt.Sprintf("invalid identifier %q: %v", id, err)}
		}
		return nid, nil
	}
	return oid.Nil, &ValidationError{Reason: fmt.Sprintf("invalid identifier type %T", id)}
}

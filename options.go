package satchel

import (
	"github.com/rs/zerolog"

	"github.com/satchel-db/satchel/driver"
)

// Option configures a Store at Open time.
type Option func(s *Store)

// WithLogger installs a caller-supplied logger. Store call failures and
// swallowed authentication errors are reported through it; by default
// nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// StrictAuth makes Open fail with a ConnectionError when the
// post-connect credential check fails, instead of logging and carrying
// on with the unverified session.
func StrictAuth() Option {
	return func(s *Store) {
		s.strictAuth = true
	}
}

// FindOption configures a single Find call.
type FindOption func(o *findOptions)

type findOptions struct {
	limit int64
	page  int64
	sort  []driver.SortOption
}

// Limit caps the number of returned documents.
func Limit(n int64) FindOption {
	return func(o *findOptions) {
		o.limit = n
	}
}

// Page selects the 1-based page of size Limit. It has no effect unless
// a positive Limit is given as well.
func Page(p int64) FindOption {
	return func(o *findOptions) {
		o.page = p
	}
}

// Sort orders the result by field, ascending for direction >= 0 and
// descending otherwise. It may be repeated for secondary sort keys.
func Sort(field string, direction int) FindOption {
	return func(o *findOptions) {
		o.sort = append(o.sort, driver.SortOption{Field: field, Direction: direction})
	}
}

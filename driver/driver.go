// Package driver defines the contract between the satchel facade and
// the underlying document-database client.
//
// Drivers register themselves for one or more URI schemes, usually from
// an init function, mirroring database/sql: importing a driver package
// for side effects makes its schemes available to satchel.Open.
package driver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/satchel-db/satchel/document"
	"github.com/satchel-db/satchel/oid"
)

// Config carries the connection settings handed to a driver.
type Config struct {
	URI      string
	User     string
	Password string
}

// Driver opens client connections for the schemes it was registered under.
type Driver interface {
	Open(ctx context.Context, cfg Config) (Client, error)
}

// Client is an open session with a document database.
type Client interface {
	// Collection returns a handle to the named collection. The name is
	// never validated ahead of use.
	Collection(name string) Collection

	// Ping verifies the session, including any credentials it was
	// opened with.
	Ping(ctx context.Context) error

	Close(ctx context.Context) error
}

// Collection exposes the native CRUD calls of the underlying client.
// Filters and update specifications are passed through opaquely.
type Collection interface {
	Find(filter map[string]interface{}) Cursor

	// InsertOne persists a single document and returns the identifier
	// the store issued for it. The caller's document is not modified.
	InsertOne(ctx context.Context, doc *document.Document) (oid.ID, error)

	// Update applies the update specification to every match when multi
	// is true, and to at most one match otherwise. It returns the number
	// of modified documents.
	Update(ctx context.Context, filter, update map[string]interface{}, multi bool) (int64, error)

	// Remove deletes at most one match when justOne is true, every match
	// otherwise. It returns the number of deleted documents.
	Remove(ctx context.Context, filter map[string]interface{}, justOne bool) (int64, error)
}

// SortOption pairs a field with a direction: positive for ascending,
// negative for descending.
type SortOption struct {
	Field     string
	Direction int
}

// Cursor is a pending query. Limit, Skip and Sort configure it before
// All materializes every matching document into memory.
type Cursor interface {
	Limit(n int64) Cursor
	Skip(n int64) Cursor
	Sort(opts ...SortOption) Cursor
	All(ctx context.Context) ([]*document.Document, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available under the given URI scheme.
// It panics if called twice for the same scheme or with a nil driver.
func Register(scheme string, drv Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if drv == nil {
		panic("driver: Register driver is nil")
	}
	if _, dup := drivers[scheme]; dup {
		panic(fmt.Sprintf("driver: Register called twice for scheme %q", scheme))
	}
	drivers[scheme] = drv
}

// Lookup returns the driver registered for scheme, if any.
func Lookup(scheme string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	drv, ok := drivers[scheme]
	return drv, ok
}

// Schemes returns a sorted list of the registered URI schemes.
func Schemes() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	list := make([]string, 0, len(drivers))
	for scheme := range drivers {
		list = append(list, scheme)
	}
	sort.Strings(list)
	return list
}

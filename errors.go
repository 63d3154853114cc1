package satchel

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by any operation issued after Close.
var ErrClosed = errors.New("satchel: store is closed")

// ConfigError reports invalid or missing connection settings. It is
// always returned before any driver call is attempted.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "satchel: invalid configuration: " + e.Reason
}

// ConnectionError reports a failure to establish or verify a session
// with the store.
type ConnectionError struct {
	URI string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("satchel: connecting to %q: %v", e.URI, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed argument to a store operation,
// detected before any driver call is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "satchel: " + e.Reason
}

// StoreError wraps a failure surfaced by the underlying client for a
// single operation.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("satchel: %s on %q: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

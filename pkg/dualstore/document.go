// Package dualstore presents one logical document interface over two physical
// stores: a remote durable store (authoritative when reachable) and a local
// device-scoped fallback store.
package dualstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no document exists at the given path.
var ErrNotFound = errors.New("document not found")

// MutatorFn receives the current document (found=false means none exists yet)
// and returns the replacement document. Returning an error aborts the write.
type MutatorFn func(cur []byte, found bool) ([]byte, error)

// MutateError wraps an error returned by a MutatorFn so callers of Write can
// tell an aborted mutation from a store transport failure. errors.Is/As see
// through it via Unwrap.
type MutateError struct {
	Err error
}

func (e *MutateError) Error() string {
	return e.Err.Error()
}

func (e *MutateError) Unwrap() error {
	return e.Err
}

// DocumentStore is a keyed store of JSON documents. Paths are flat strings
// namespaced by convention ("accounts/<email>", "users/<id>", ...).
//
// Write is a read-modify-write cycle, not a transaction: concurrent writers
// against the same path race on the whole document (last writer wins).
// Callers that need ordering must serialize their writes.
type DocumentStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, mutate MutatorFn) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

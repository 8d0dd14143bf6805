// Package db defines the key-value storage abstraction used by every
// persistence layer in the settlement toolkit: the encrypted-balance ledger,
// the transaction inbox and the validated-transaction marker all sit on top
// of a db.Database, so any backend that satisfies this interface (Pebble,
// an in-memory map, ...) can serve as the object store described by the
// validator orchestrator.
package db

import "errors"

// ErrKeyNotFound is returned by Get and by WriteTx.Get when the requested key
// does not exist.
var ErrKeyNotFound = errors.New("db: key not found")

// ErrConflict is returned by WriteTx.Commit, on backends that track read
// versions (db/inmemory), when a key read or written during the transaction
// was concurrently modified by another committed transaction. db/pebbledb
// batches do not detect conflicts and never return it.
var ErrConflict = errors.New("db: conflicting transaction")

// Options configures the construction of a Database backend.
type Options struct {
	// Path is the filesystem location of the backend, when applicable.
	Path string
}

// Backend type identifiers accepted by a Database constructor selector.
const (
	TypePebble   = "pebble"
	TypeInMemory = "memory"
)

// Database is a prefix-addressable, versioned key-value store. Reads and
// writes outside of a WriteTx go directly to the latest committed state;
// writes inside a WriteTx are only visible after Commit.
type Database interface {
	// Get returns the value stored at k, or ErrKeyNotFound.
	Get(k []byte) ([]byte, error)
	// Iterate calls callback for every key with the given prefix, in
	// ascending key order, stopping early if callback returns false. The
	// prefix itself is stripped from the keys passed to callback.
	Iterate(prefix []byte, callback func(k, v []byte) bool) error
	// WriteTx opens a new read/write transaction.
	WriteTx() WriteTx
	// Compact requests backend-specific space reclamation; a no-op for
	// backends that don't need it.
	Compact() error
	// Close releases all resources held by the database.
	Close() error
}

// WriteTx is an atomic batch of reads and writes against a Database. Readers
// see their own uncommitted writes. On backends that track read versions
// (db/inmemory), Commit fails with ErrConflict if any key read or written by
// the transaction changed underneath it; db/pebbledb does not check this.
type WriteTx interface {
	Get(k []byte) ([]byte, error)
	Iterate(prefix []byte, callback func(k, v []byte) bool) error
	Set(k, v []byte) error
	Delete(k []byte) error
	// Apply merges every key/value written in other into this transaction.
	Apply(other WriteTx) error
	// Commit atomically applies every write. The transaction is unusable
	// afterwards.
	Commit() error
	// Discard abandons the transaction. Safe to call after Commit or more
	// than once; typically deferred right after WriteTx() is obtained.
	Discard()
}

// UnwrapWriteTx extracts the concrete transaction type a backend needs from
// a possibly-wrapped WriteTx (e.g. one produced by a prefixed view), so that
// Apply can merge two batches native to the same backend.
func UnwrapWriteTx(tx WriteTx) WriteTx {
	if u, ok := tx.(interface{ Unwrap() WriteTx }); ok {
		return UnwrapWriteTx(u.Unwrap())
	}
	return tx
}

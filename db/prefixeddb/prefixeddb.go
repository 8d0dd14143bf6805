// Package prefixeddb gives every namespace of the object store (accounts,
// per-user transaction inboxes, the common area) its own virtual Database
// carved out of one underlying backend, so the validator's storage layer
// never has to juggle raw key prefixes by hand.
package prefixeddb

import (
	"bytes"

	"github.com/shieldledger/settlement/db"
)

// PrefixedDatabase is a db.Database view that transparently prepends a fixed
// prefix to every key before delegating to the wrapped database, and strips
// it again on the way out.
type PrefixedDatabase struct {
	parent db.Database
	prefix []byte
}

var _ db.Database = (*PrefixedDatabase)(nil)

// NewPrefixedDatabase returns a view of parent restricted to keys under
// prefix.
func NewPrefixedDatabase(parent db.Database, prefix []byte) *PrefixedDatabase {
	return &PrefixedDatabase{parent: parent, prefix: bytes.Clone(prefix)}
}

func (d *PrefixedDatabase) key(k []byte) []byte {
	return append(bytes.Clone(d.prefix), k...)
}

// Get implements db.Database.
func (d *PrefixedDatabase) Get(k []byte) ([]byte, error) {
	return d.parent.Get(d.key(k))
}

// Iterate implements db.Database.
func (d *PrefixedDatabase) Iterate(prefix []byte, callback func(k, v []byte) bool) error {
	return d.parent.Iterate(d.key(prefix), callback)
}

// WriteTx implements db.Database.
func (d *PrefixedDatabase) WriteTx() db.WriteTx {
	return &prefixedWriteTx{parent: d.parent.WriteTx(), prefix: d.prefix}
}

// Compact implements db.Database.
func (d *PrefixedDatabase) Compact() error { return d.parent.Compact() }

// Close implements db.Database. The underlying database is shared across
// every prefixed view, so Close is a deliberate no-op here; the owner of the
// root Database is responsible for closing it.
func (d *PrefixedDatabase) Close() error { return nil }

type prefixedWriteTx struct {
	parent db.WriteTx
	prefix []byte
}

var _ db.WriteTx = (*prefixedWriteTx)(nil)

func (tx *prefixedWriteTx) key(k []byte) []byte {
	return append(bytes.Clone(tx.prefix), k...)
}

func (tx *prefixedWriteTx) Get(k []byte) ([]byte, error) {
	return tx.parent.Get(tx.key(k))
}

func (tx *prefixedWriteTx) Iterate(prefix []byte, callback func(k, v []byte) bool) error {
	return tx.parent.Iterate(tx.key(prefix), callback)
}

func (tx *prefixedWriteTx) Set(k, v []byte) error {
	return tx.parent.Set(tx.key(k), v)
}

func (tx *prefixedWriteTx) Delete(k []byte) error {
	return tx.parent.Delete(tx.key(k))
}

func (tx *prefixedWriteTx) Apply(other db.WriteTx) error {
	return tx.parent.Apply(other)
}

func (tx *prefixedWriteTx) Commit() error { return tx.parent.Commit() }
func (tx *prefixedWriteTx) Discard()      { tx.parent.Discard() }

// Unwrap returns the wrapped transaction, so that db.UnwrapWriteTx can reach
// the concrete backend type beneath a chain of prefixed views.
func (tx *prefixedWriteTx) Unwrap() db.WriteTx { return tx.parent }

// NewPrefixedReader returns a view scoped to prefix for read access. It is
// the same full PrefixedDatabase NewPrefixedDatabase returns; writes through
// it are not prevented.
func NewPrefixedReader(parent db.Database, prefix []byte) *PrefixedDatabase {
	return NewPrefixedDatabase(parent, prefix)
}

// Package dbtest holds a conformance suite for the db.Database contract,
// written against the interface so any backend can run it; currently only
// db/pebbledb's tests call it.
package dbtest

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/shieldledger/settlement/db"
)

// TestWriteTx exercises the basic Set/Get/Delete/Commit lifecycle of a
// db.WriteTx.
func TestWriteTx(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("a"), []byte("1")), qt.IsNil)
	c.Assert(tx.Set([]byte("b"), []byte("2")), qt.IsNil)

	v, err := tx.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("1"))

	c.Assert(tx.Commit(), qt.IsNil)

	v, err = database.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("1"))

	tx2 := database.WriteTx()
	c.Assert(tx2.Delete([]byte("a")), qt.IsNil)
	c.Assert(tx2.Commit(), qt.IsNil)

	_, err = database.Get([]byte("a"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
}

// TestIterate checks that Iterate visits exactly the keys under a prefix, in
// ascending order, with the prefix stripped.
func TestIterate(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("p/1"), []byte("x")), qt.IsNil)
	c.Assert(tx.Set([]byte("p/2"), []byte("y")), qt.IsNil)
	c.Assert(tx.Set([]byte("q/1"), []byte("z")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	var got []string
	c.Assert(database.Iterate([]byte("p/"), func(k, v []byte) bool {
		got = append(got, string(k))
		return true
	}), qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"1", "2"})
}

// TestWriteTxApply checks that Apply merges one transaction's writes into
// another prior to commit.
func TestWriteTxApply(t *testing.T, database db.Database) {
	c := qt.New(t)

	src := database.WriteTx()
	c.Assert(src.Set([]byte("merged"), []byte("v")), qt.IsNil)

	dst := database.WriteTx()
	c.Assert(dst.Apply(src), qt.IsNil)
	c.Assert(dst.Commit(), qt.IsNil)

	v, err := database.Get([]byte("merged"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("v"))
}

// TestWriteTxApplyPrefixed checks that writes made through a prefixed view
// land, once merged, at the prefixed key in the root database.
func TestWriteTxApplyPrefixed(t *testing.T, database db.Database, prefixed db.Database) {
	c := qt.New(t)

	src := prefixed.WriteTx()
	c.Assert(src.Set([]byte("k"), []byte("v")), qt.IsNil)

	dst := prefixed.WriteTx()
	c.Assert(dst.Apply(src), qt.IsNil)
	c.Assert(dst.Commit(), qt.IsNil)

	v, err := prefixed.Get([]byte("k"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("v"))
}

package ristretto_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/shieldledger/settlement/crypto/ristretto"
)

func TestScalarArithmetic(t *testing.T) {
	c := qt.New(t)

	a, err := ristretto.RandomScalar()
	c.Assert(err, qt.IsNil)
	b, err := ristretto.RandomScalar()
	c.Assert(err, qt.IsNil)

	sum := ristretto.NewScalar().Add(a, b)
	back := ristretto.NewScalar().Sub(sum, b)
	c.Assert(back.Equal(a), qt.IsTrue)

	prod := ristretto.NewScalar().Mul(a, b)
	inv := ristretto.NewScalar().Invert(b)
	back2 := ristretto.NewScalar().Mul(prod, inv)
	c.Assert(back2.Equal(a), qt.IsTrue)
}

func TestScalarCanonicalRoundTrip(t *testing.T) {
	c := qt.New(t)

	s, err := ristretto.RandomScalar()
	c.Assert(err, qt.IsNil)

	decoded := ristretto.NewScalar()
	c.Assert(decoded.SetCanonicalBytes(s.Bytes()), qt.IsNil)
	c.Assert(decoded.Equal(s), qt.IsTrue)
}

func TestScalarRejectsNonCanonical(t *testing.T) {
	c := qt.New(t)

	// All-0xff bytes encode 2^256 - 1, far above the group order l (about
	// 2^252), so they are not the canonical representative of any scalar.
	nonCanonical := make([]byte, 32)
	for i := range nonCanonical {
		nonCanonical[i] = 0xff
	}

	s := ristretto.NewScalar()
	err := s.SetCanonicalBytes(nonCanonical)
	c.Assert(err, qt.ErrorIs, ristretto.ErrInvalidEncoding)
}

func TestPointArithmetic(t *testing.T) {
	c := qt.New(t)

	g := ristretto.BasePoint()
	two := ristretto.ScalarFromUint64(2)
	three := ristretto.ScalarFromUint64(3)
	five := ristretto.ScalarFromUint64(5)

	twoG := ristretto.NewPoint().ScalarMult(two, g)
	threeG := ristretto.NewPoint().ScalarMult(three, g)
	fiveG := ristretto.NewPoint().ScalarMult(five, g)

	sum := ristretto.NewPoint().Add(twoG, threeG)
	c.Assert(sum.Equal(fiveG), qt.IsTrue)

	diff := ristretto.NewPoint().Sub(fiveG, threeG)
	c.Assert(diff.Equal(twoG), qt.IsTrue)
}

func TestPointCanonicalRoundTrip(t *testing.T) {
	c := qt.New(t)

	s, err := ristretto.RandomScalar()
	c.Assert(err, qt.IsNil)
	p := ristretto.NewPoint().ScalarBaseMult(s)

	decoded := ristretto.NewPoint()
	c.Assert(decoded.SetCanonicalBytes(p.Bytes()), qt.IsNil)
	c.Assert(decoded.Equal(p), qt.IsTrue)
}

func TestPointRejectsInvalidEncoding(t *testing.T) {
	c := qt.New(t)

	// A point with its high bit set and every other byte zero is not a
	// valid canonical Ristretto encoding.
	invalid := make([]byte, 32)
	invalid[31] = 0xff

	p := ristretto.NewPoint()
	err := p.SetCanonicalBytes(invalid)
	c.Assert(err, qt.ErrorIs, ristretto.ErrInvalidEncoding)
}

func TestGeneratorsAreIndependent(t *testing.T) {
	c := qt.New(t)

	g := ristretto.BasePoint()
	h := ristretto.HGenerator()

	c.Assert(g.Equal(h), qt.IsFalse)
	c.Assert(h.IsIdentity(), qt.IsFalse)

	// HGenerator must be deterministic across calls.
	h2 := ristretto.HGenerator()
	c.Assert(h.Equal(h2), qt.IsTrue)
}

func TestIdentityIsAdditiveIdentity(t *testing.T) {
	c := qt.New(t)

	g := ristretto.BasePoint()
	id := ristretto.NewPoint()
	sum := ristretto.NewPoint().Add(g, id)
	c.Assert(sum.Equal(g), qt.IsTrue)
	c.Assert(id.IsIdentity(), qt.IsTrue)
}

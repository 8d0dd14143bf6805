package elgamal_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/ristretto"
)

const testWindow = 1 << 16

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	ciphertext, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)

	got, err := elgamal.Decrypt(sec, ciphertext, testWindow)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint64(13))
}

func TestRefreshPreservesPlaintext(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	ciphertext, _, err := elgamal.Encrypt(pub, 99)
	c.Assert(err, qt.IsNil)

	rPrime, err := elgamal.RandomBlinding()
	c.Assert(err, qt.IsNil)

	refreshed, err := elgamal.Refresh(sec, pub, ciphertext, rPrime, testWindow)
	c.Assert(err, qt.IsNil)

	before, err := elgamal.Decrypt(sec, ciphertext, testWindow)
	c.Assert(err, qt.IsNil)
	after, err := elgamal.Decrypt(sec, refreshed, testWindow)
	c.Assert(err, qt.IsNil)
	c.Assert(after, qt.Equals, before)

	c.Assert(refreshed.X.Equal(ciphertext.X), qt.IsFalse)
	c.Assert(refreshed.Y.Equal(ciphertext.Y), qt.IsFalse)
}

func TestRefreshFailsForWrongKey(t *testing.T) {
	c := qt.New(t)

	pub, _, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)
	_, wrongSec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	ciphertext, _, err := elgamal.Encrypt(pub, 7)
	c.Assert(err, qt.IsNil)

	rPrime, err := elgamal.RandomBlinding()
	c.Assert(err, qt.IsNil)

	_, err = elgamal.Refresh(wrongSec, pub, ciphertext, rPrime, testWindow)
	c.Assert(err, qt.ErrorIs, elgamal.ErrDecryptionFailure)
}

func TestHomomorphicAddition(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	c1, _, err := elgamal.Encrypt(pub, 6)
	c.Assert(err, qt.IsNil)
	c2, _, err := elgamal.Encrypt(pub, 7)
	c.Assert(err, qt.IsNil)

	sum := elgamal.Add(c1, c2)
	got, err := elgamal.Decrypt(sec, sum, testWindow)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint64(13))
}

func TestHomomorphicSubtraction(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	c1, _, err := elgamal.Encrypt(pub, 100)
	c.Assert(err, qt.IsNil)
	c2, _, err := elgamal.Encrypt(pub, 40)
	c.Assert(err, qt.IsNil)

	diff := elgamal.Sub(c1, c2)
	got, err := elgamal.Decrypt(sec, diff, testWindow)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint64(60))
}

func TestDecryptOutsideWindowFails(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	ciphertext, _, err := elgamal.Encrypt(pub, 1<<20)
	c.Assert(err, qt.IsNil)

	_, err = elgamal.Decrypt(sec, ciphertext, 1<<10)
	c.Assert(err, qt.ErrorIs, elgamal.ErrDecryptionFailure)
}

func TestEncryptWithBlindingIsDeterministic(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	r := ristretto.ScalarFromUint64(4242)
	c1 := elgamal.EncryptWithBlinding(pub, 5, r)
	c2 := elgamal.EncryptWithBlinding(pub, 5, r)
	c.Assert(c1.X.Equal(c2.X), qt.IsTrue)
	c.Assert(c1.Y.Equal(c2.Y), qt.IsTrue)

	got, err := elgamal.Decrypt(sec, c1, testWindow)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint64(5))
}

package refreshment_test

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/refreshment"
	"github.com/shieldledger/settlement/crypto/ristretto"
)

const testWindow = 1 << 16

func seededEntropy(fill byte) *bytes.Reader {
	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = fill
	}
	return bytes.NewReader(buf)
}

// S1. Refreshment, positive.
func TestS1RefreshmentPositive(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	c1, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)
	c2, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)

	stmt := refreshment.NewStatement(pub, c1, c2)
	witness := &refreshment.Witness{S: sec}

	m, z, err := refreshment.Prove(stmt, witness, seededEntropy(0x17))
	c.Assert(err, qt.IsNil)

	err = refreshment.Verify(stmt, m, z)
	c.Assert(err, qt.IsNil)
}

// S2. Refreshment, tampered initial message.
func TestS2TamperedInitialMessage(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	c1, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)
	c2, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)

	stmt := refreshment.NewStatement(pub, c1, c2)
	witness := &refreshment.Witness{S: sec}

	m, z, err := refreshment.Prove(stmt, witness, seededEntropy(0x17))
	c.Assert(err, qt.IsNil)

	m.A = ristretto.BasePoint()

	err = refreshment.Verify(stmt, m, z)
	verr, ok := asFinalResponseError(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(verr.Check, qt.Equals, 1)
}

// S3. Refreshment, tampered response.
func TestS3TamperedResponse(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	c1, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)
	c2, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)

	stmt := refreshment.NewStatement(pub, c1, c2)
	witness := &refreshment.Witness{S: sec}

	m, z, err := refreshment.Prove(stmt, witness, seededEntropy(0x17))
	c.Assert(err, qt.IsNil)

	z.Z = ristretto.NewScalar()

	err = refreshment.Verify(stmt, m, z)
	verr, ok := asFinalResponseError(err)
	c.Assert(ok, qt.IsTrue)
	c.Assert(verr.Check, qt.Equals, 1)
}

// S4. cipher.refresh(sk, r_new) followed by Σ-proof of refreshment between
// cipher and its refreshment.
func TestS4RefreshThenProve(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	original, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)

	rPrime, err := elgamal.RandomBlinding()
	c.Assert(err, qt.IsNil)

	refreshed, err := elgamal.Refresh(sec, pub, original, rPrime, testWindow)
	c.Assert(err, qt.IsNil)

	stmt := refreshment.NewStatement(pub, original, refreshed)
	witness := &refreshment.Witness{S: sec}

	m, z, err := refreshment.Prove(stmt, witness, seededEntropy(0x13))
	c.Assert(err, qt.IsNil)

	err = refreshment.Verify(stmt, m, z)
	c.Assert(err, qt.IsNil)
}

func TestDifferentPlaintextsFailVerification(t *testing.T) {
	c := qt.New(t)

	pub, sec, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)

	c1, _, err := elgamal.Encrypt(pub, 13)
	c.Assert(err, qt.IsNil)
	c2, _, err := elgamal.Encrypt(pub, 14)
	c.Assert(err, qt.IsNil)

	stmt := refreshment.NewStatement(pub, c1, c2)
	witness := &refreshment.Witness{S: sec}

	m, z, err := refreshment.Prove(stmt, witness, seededEntropy(0x01))
	c.Assert(err, qt.IsNil)

	err = refreshment.Verify(stmt, m, z)
	c.Assert(err, qt.IsNotNil)
}

func asFinalResponseError(err error) (*refreshment.FinalResponseVerificationError, bool) {
	verr, ok := err.(*refreshment.FinalResponseVerificationError)
	return verr, ok
}

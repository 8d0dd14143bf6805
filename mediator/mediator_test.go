package mediator_test

import (
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"

	"github.com/shieldledger/settlement/mediator"
)

func TestNewSigner(t *testing.T) {
	c := qt.New(t)

	signer, err := mediator.NewSigner()
	c.Assert(err, qt.IsNil)
	c.Assert(signer, qt.Not(qt.IsNil))
}

func TestSignAndVerify(t *testing.T) {
	c := qt.New(t)

	signer, err := mediator.NewSigner()
	c.Assert(err, qt.IsNil)

	payload := []byte("issuance justification blob")
	sig, err := signer.Sign(payload)
	c.Assert(err, qt.IsNil)

	err = mediator.Verify(payload, sig, signer.Address())
	c.Assert(err, qt.IsNil)
}

func TestVerifyRejectsWrongMediator(t *testing.T) {
	c := qt.New(t)

	signer, err := mediator.NewSigner()
	c.Assert(err, qt.IsNil)
	other, err := mediator.NewSigner()
	c.Assert(err, qt.IsNil)

	payload := []byte("transfer justification blob")
	sig, err := signer.Sign(payload)
	c.Assert(err, qt.IsNil)

	err = mediator.Verify(payload, sig, other.Address())
	c.Assert(err, qt.IsNotNil)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	c := qt.New(t)

	signer, err := mediator.NewSigner()
	c.Assert(err, qt.IsNil)

	sig, err := signer.Sign([]byte("original"))
	c.Assert(err, qt.IsNil)

	err = mediator.Verify([]byte("tampered"), sig, signer.Address())
	c.Assert(err, qt.IsNotNil)
}

func TestSignatureByteRoundTrip(t *testing.T) {
	c := qt.New(t)

	signer, err := mediator.NewSigner()
	c.Assert(err, qt.IsNil)

	sig, err := signer.Sign([]byte("round trip"))
	c.Assert(err, qt.IsNil)

	decoded, err := mediator.FromBytes(sig.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.R.Cmp(sig.R), qt.Equals, 0)
	c.Assert(decoded.S.Cmp(sig.S), qt.Equals, 0)
	c.Assert(decoded.V, qt.Equals, sig.V)
}

func TestNewSignerFromSeedIsDeterministic(t *testing.T) {
	c := qt.New(t)

	seed := ethcrypto.Keccak256([]byte("fixed mediator seed"))
	s1, err := mediator.NewSignerFromSeed(seed)
	c.Assert(err, qt.IsNil)
	s2, err := mediator.NewSignerFromSeed(seed)
	c.Assert(err, qt.IsNil)

	c.Assert(s1.Address(), qt.Equals, s2.Address())
}

func TestFromBytesRejectsWrongLength(t *testing.T) {
	c := qt.New(t)

	_, err := mediator.FromBytes(make([]byte, 10))
	c.Assert(err, qt.IsNotNil)
}

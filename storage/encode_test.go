package storage

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/proofs"
	"github.com/shieldledger/settlement/mediator"
	"github.com/shieldledger/settlement/types"
)

type testEncodeData struct {
	DataStr   string
	DataInt   int
	DataFloat float64
	DataBool  bool
	DataMap   map[string]string
}

func (a *testEncodeData) Equal(b testEncodeData) bool {
	equalMap := false
	for k, v := range a.DataMap {
		if b.DataMap[k] != v {
			equalMap = false
			break
		}
		equalMap = true
	}

	return a.DataStr == b.DataStr &&
		a.DataInt == b.DataInt &&
		a.DataFloat == b.DataFloat &&
		a.DataBool == b.DataBool &&
		equalMap
}

func TestEncodeDecodeArtifact(t *testing.T) {
	c := qt.New(t)
	artifact := testEncodeData{
		DataStr:   "test",
		DataInt:   42,
		DataFloat: 3.14,
		DataBool:  true,
		DataMap:   map[string]string{"key": "value"},
	}

	c.Run("default encoding", func(c *qt.C) {
		encoded, err := EncodeArtifact(artifact)
		c.Assert(err, qt.IsNil)
		var decoded testEncodeData
		c.Assert(DecodeArtifact(encoded, &decoded), qt.IsNil)
		c.Assert(decoded.Equal(artifact), qt.IsTrue)
	})

	c.Run("cbor encoding", func(c *qt.C) {
		encoded, err := EncodeArtifact(artifact, ArtifactEncodingCBOR)
		c.Assert(err, qt.IsNil)
		var decoded testEncodeData
		c.Assert(DecodeArtifact(encoded, &decoded, ArtifactEncodingCBOR), qt.IsNil)
		c.Assert(decoded.Equal(artifact), qt.IsTrue)
	})

	c.Run("json encoding", func(c *qt.C) {
		encoded, err := EncodeArtifact(artifact, ArtifactEncodingJSON)
		c.Assert(err, qt.IsNil)
		var decoded testEncodeData
		c.Assert(DecodeArtifact(encoded, &decoded, ArtifactEncodingJSON), qt.IsNil)
		c.Assert(decoded.Equal(artifact), qt.IsTrue)
	})

	c.Run("invalid encoding", func(c *qt.C) {
		encoded, err := EncodeArtifact(artifact, ArtifactEncoding(100))
		c.Assert(err, qt.IsNotNil)
		var decoded testEncodeData
		c.Assert(DecodeArtifact(encoded, &decoded, ArtifactEncoding(100)), qt.IsNotNil)
	})
}

// TestEncodeDecodeDomainTypes round-trips the actual persisted domain
// types — not just a trivial struct — through EncodeArtifact/DecodeArtifact:
// a PubAccount (exercising *ristretto.Point and elgamal.Ciphertext, which
// depend on Point/Scalar's MarshalCBOR/UnmarshalCBOR hooks), and a
// correctness proof's InitialMessage/FinalResponse pair.
func TestEncodeDecodeDomainTypes(t *testing.T) {
	c := qt.New(t)

	pub, _, err := elgamal.GenerateKey()
	c.Assert(err, qt.IsNil)
	r, err := elgamal.RandomBlinding()
	c.Assert(err, qt.IsNil)
	ciphertext := elgamal.EncryptWithBlinding(pub, 42, r)

	account := types.PubAccount{
		ID:         types.AccountID{0x01, 0x02, 0x03},
		PublicKey:  pub,
		EncAssetID: ciphertext,
		EncBalance: ciphertext,
		Memo: types.AccountMemo{
			Ticker:      types.AssetID{0x54},
			MediatorKey: mediator.AddressFromHex("0x000000000000000000000000000000000000aa"),
		},
	}

	c.Run("PubAccount", func(c *qt.C) {
		encoded, err := EncodeArtifact(account)
		c.Assert(err, qt.IsNil)
		var decoded types.PubAccount
		c.Assert(DecodeArtifact(encoded, &decoded), qt.IsNil)
		c.Assert(decoded.ID, qt.Equals, account.ID)
		c.Assert(decoded.Memo, qt.Equals, account.Memo)
		c.Assert(decoded.PublicKey.Equal(account.PublicKey), qt.IsTrue)
		c.Assert(decoded.EncAssetID.X.Equal(account.EncAssetID.X), qt.IsTrue)
		c.Assert(decoded.EncAssetID.Y.Equal(account.EncAssetID.Y), qt.IsTrue)
	})

	c.Run("Ciphertext", func(c *qt.C) {
		encoded, err := EncodeArtifact(ciphertext)
		c.Assert(err, qt.IsNil)
		var decoded elgamal.Ciphertext
		c.Assert(DecodeArtifact(encoded, &decoded), qt.IsNil)
		c.Assert(decoded.X.Equal(ciphertext.X), qt.IsTrue)
		c.Assert(decoded.Y.Equal(ciphertext.Y), qt.IsTrue)
	})

	stmt := proofs.NewCorrectnessStatement(pub, ciphertext, 42)
	witness := &proofs.CorrectnessWitness{R: r}
	initialMessage, finalResponse, err := proofs.ProveCorrectness(stmt, witness, seededRng(0x7a))
	c.Assert(err, qt.IsNil)

	c.Run("InitialMessage", func(c *qt.C) {
		encoded, err := EncodeArtifact(initialMessage)
		c.Assert(err, qt.IsNil)
		var decoded proofs.CorrectnessInitialMessage
		c.Assert(DecodeArtifact(encoded, &decoded), qt.IsNil)
		c.Assert(decoded.A.Equal(initialMessage.A), qt.IsTrue)
		c.Assert(decoded.B.Equal(initialMessage.B), qt.IsTrue)
	})

	c.Run("FinalResponse", func(c *qt.C) {
		encoded, err := EncodeArtifact(finalResponse)
		c.Assert(err, qt.IsNil)
		var decoded proofs.CorrectnessFinalResponse
		c.Assert(DecodeArtifact(encoded, &decoded), qt.IsNil)
		c.Assert(decoded.Z.Equal(finalResponse.Z), qt.IsTrue)
	})

	c.Run("proof verifies after round trip", func(c *qt.C) {
		encodedM, err := EncodeArtifact(initialMessage)
		c.Assert(err, qt.IsNil)
		encodedZ, err := EncodeArtifact(finalResponse)
		c.Assert(err, qt.IsNil)

		var decodedM proofs.CorrectnessInitialMessage
		c.Assert(DecodeArtifact(encodedM, &decodedM), qt.IsNil)
		var decodedZ proofs.CorrectnessFinalResponse
		c.Assert(DecodeArtifact(encodedZ, &decodedZ), qt.IsNil)

		c.Assert(proofs.VerifyCorrectness(stmt, &decodedM, &decodedZ), qt.IsNil)
	})
}

// seededRng returns a deterministic, repeatable byte source large enough
// for a single correctness proof's nonce draw.
func seededRng(fill byte) *bytes.Reader {
	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = fill
	}
	return bytes.NewReader(buf)
}

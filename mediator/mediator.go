// Package mediator verifies the ECDSA signatures mediators attach to
// issuance and transfer transactions (§4.6). A mediator signs the hash of
// the transaction's justifying material with a secp256k1 key; the
// validator checks that signature against the mediator's registered public
// key before folding the transaction's effect into the ledger.
package mediator

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// SignatureLength is the size in bytes of a recoverable secp256k1
	// signature: 32 (R) + 32 (S) + 1 (recovery id).
	SignatureLength = ethcrypto.SignatureLength
	// SigningPrefix is prepended to the payload before hashing, mirroring
	// Ethereum's personal-message signing convention.
	SigningPrefix = "ShieldLedger Mediator Signed Message:\n"
)

// PublicKey identifies a mediator by the Ethereum-style address derived
// from its secp256k1 public key.
type PublicKey = common.Address

// Signature is a mediator's ECDSA signature over a transaction's
// justifying material.
type Signature struct {
	R *big.Int
	S *big.Int
	V byte
}

// FromBytes decodes a 65-byte recoverable signature.
func FromBytes(b []byte) (*Signature, error) {
	if len(b) != SignatureLength {
		return nil, fmt.Errorf("mediator: signature must be %d bytes, got %d", SignatureLength, len(b))
	}
	v := b[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return nil, fmt.Errorf("mediator: invalid recovery id %d", b[64])
	}
	return &Signature{
		R: new(big.Int).SetBytes(b[:32]),
		S: new(big.Int).SetBytes(b[32:64]),
		V: v,
	}, nil
}

// Bytes encodes the signature back into its 65-byte wire form.
func (sig *Signature) Bytes() []byte {
	r := make([]byte, 32)
	s := make([]byte, 32)
	rb := sig.R.Bytes()
	sb := sig.S.Bytes()
	copy(r[32-len(rb):], rb)
	copy(s[32-len(sb):], sb)
	return append(append(r, s...), sig.V)
}

// Hex returns the hex-encoded wire form of the signature.
func (sig *Signature) Hex() string {
	return hex.EncodeToString(sig.Bytes())
}

// Signer is a mediator's secp256k1 private key, used in tests and
// operator tooling to produce mediator signatures. The validator itself
// never holds one: it only verifies.
type Signer ecdsa.PrivateKey

// NewSigner generates a fresh mediator signing key.
func NewSigner() (*Signer, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("mediator: generating key: %w", err)
	}
	return (*Signer)(key), nil
}

// NewSignerFromSeed derives a mediator signing key deterministically from
// seed, hashing it first to obtain a valid scalar of the right length.
func NewSignerFromSeed(seed []byte) (*Signer, error) {
	key, err := ethcrypto.ToECDSA(ethcrypto.Keccak256(seed))
	if err != nil {
		return nil, fmt.Errorf("mediator: deriving key from seed: %w", err)
	}
	return (*Signer)(key), nil
}

// Address returns the mediator's public key, the PublicKey the validator
// checks signatures against.
func (s *Signer) Address() PublicKey {
	return ethcrypto.PubkeyToAddress(s.PublicKey)
}

// Sign signs payload, producing a mediator signature over
// HashPayload(payload).
func (s *Signer) Sign(payload []byte) (*Signature, error) {
	raw, err := ethcrypto.Sign(HashPayload(payload), (*ecdsa.PrivateKey)(s))
	if err != nil {
		return nil, fmt.Errorf("mediator: sign: %w", err)
	}
	return FromBytes(raw)
}

// HashPayload hashes payload with the mediator signing prefix using
// Keccak256, matching the convention the validator uses when it recovers
// the signer's address for verification.
func HashPayload(payload []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%d%s", SigningPrefix, len(payload), payload)
	return ethcrypto.Keccak256(buf.Bytes())
}

// Verify reports whether sig is a valid signature of payload produced by
// the holder of expected. This is the operation §4.6 calls for both
// issuance and transfer validation: every mediator-signed transaction must
// verify against its claimed mediator's registered public key before the
// validator proceeds to the proof checks.
func Verify(payload []byte, sig *Signature, expected PublicKey) error {
	if sig == nil {
		return fmt.Errorf("mediator: nil signature")
	}
	pubKey, err := ethcrypto.SigToPub(HashPayload(payload), sig.Bytes())
	if err != nil {
		return fmt.Errorf("mediator: recovering signer: %w", err)
	}
	addr := ethcrypto.PubkeyToAddress(*pubKey)
	if addr != expected {
		return fmt.Errorf("mediator: signature recovers to %s, expected %s", addr.Hex(), expected.Hex())
	}
	return nil
}

// AddressFromHex parses a hex-encoded Ethereum-style address into a
// PublicKey.
func AddressFromHex(hexAddr string) PublicKey {
	return common.HexToAddress(hexAddr)
}

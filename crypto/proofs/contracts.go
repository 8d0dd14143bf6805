// Package proofs defines the black-box contracts for the proof types the
// settlement core references but does not reimplement (range, membership,
// wellformedness, key-equality), plus one concrete proof — correctness —
// implemented in full on top of crypto/sigma, since §8 scenario S5
// (batched correctness) requires a real, batchable proof to exercise
// prove_multiple/verify_multiple.
package proofs

import (
	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/ristretto"
)

// CorrectnessProof proves that ciphertext encrypts claimedPlaintext under
// pub, without revealing the blinding used at encryption time.
type CorrectnessProof interface {
	Verify(pub *ristretto.Point, ciphertext elgamal.Ciphertext, claimedPlaintext uint64) error
}

// RangeProof proves that ciphertext's plaintext lies in [0, 2^bits).
// Contract only: the settlement core never instantiates a concrete
// construction of this proof, per §2 item 6.
type RangeProof interface {
	Verify(ciphertext elgamal.Ciphertext, bits int) error
}

// MembershipProof proves that ciphertext's plaintext (interpreted as an
// asset id) is a member of validSet, without revealing which. Contract
// only.
type MembershipProof interface {
	Verify(ciphertext elgamal.Ciphertext, validSet []AssetID) error
}

// WellformednessProof proves that a ciphertext was constructed as a valid
// ElGamal encryption (both components are valid group elements and their
// relationship to some plaintext and blinding is internally consistent).
// Contract only.
type WellformednessProof interface {
	Verify(ciphertext elgamal.Ciphertext) error
}

// KeyEqualityProof proves that sender and receiver ciphertexts encrypt the
// same plaintext under their respective (different) public keys. Contract
// only.
type KeyEqualityProof interface {
	Verify(sender, receiver elgamal.Ciphertext, pubSender, pubReceiver *ristretto.Point) error
}

// Package elgamal implements additively-homomorphic ElGamal encryption of a
// bounded scalar plaintext over the Ristretto group. A secret key is a
// scalar s; the public key is P = s·H, where H is the blinding basepoint
// independent of the value basepoint G (crypto/ristretto.HGenerator). A
// ciphertext is the pair (X, Y) with Y = r·H and X = r·P + v·G for blinding
// r and plaintext v.
//
// Decrypt and the internal check inside Refresh recover the plaintext by
// solving a discrete log in a caller-bounded window (baby-step/giant-step);
// both are debugging/verification-only operations. The validator orchestrator
// must never call them on the settlement-critical path: balances are
// tracked as ciphertexts and folded with Add/Sub, never decrypted.
package elgamal

import (
	"fmt"
	"math/big"

	"github.com/shieldledger/settlement/crypto/ristretto"
)

// Ciphertext is an ElGamal encryption of a scalar plaintext under some
// public key.
type Ciphertext struct {
	X *ristretto.Point
	Y *ristretto.Point
}

// GenerateKey returns a new ElGamal keypair: a secret scalar s and its
// corresponding public key P = s·H.
func GenerateKey() (pub *ristretto.Point, sec *ristretto.Scalar, err error) {
	sec, err = ristretto.RandomScalar()
	if err != nil {
		return nil, nil, fmt.Errorf("elgamal: failed to generate secret key: %w", err)
	}
	pub = ristretto.NewPoint().ScalarMult(sec, ristretto.HGenerator())
	return pub, sec, nil
}

// RandomBlinding draws a fresh random blinding scalar r, suitable for
// Encrypt or Refresh.
func RandomBlinding() (*ristretto.Scalar, error) {
	r, err := ristretto.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("elgamal: failed to sample blinding: %w", err)
	}
	return r, nil
}

// Encrypt encrypts plaintext under pub with a freshly drawn blinding
// factor, returning the ciphertext and the blinding used.
func Encrypt(pub *ristretto.Point, plaintext uint64) (Ciphertext, *ristretto.Scalar, error) {
	r, err := RandomBlinding()
	if err != nil {
		return Ciphertext{}, nil, err
	}
	return EncryptWithBlinding(pub, plaintext, r), r, nil
}

// EncryptWithBlinding encrypts plaintext under pub using the caller-supplied
// blinding r: X = r·pub + plaintext·G, Y = r·H.
func EncryptWithBlinding(pub *ristretto.Point, plaintext uint64, r *ristretto.Scalar) Ciphertext {
	v := ristretto.ScalarFromUint64(plaintext)

	rP := ristretto.NewPoint().ScalarMult(r, pub)
	vG := ristretto.NewPoint().ScalarBaseMult(v)
	x := ristretto.NewPoint().Add(rP, vG)

	y := ristretto.NewPoint().ScalarMult(r, ristretto.HGenerator())

	return Ciphertext{X: x, Y: y}
}

// Decrypt recovers the plaintext scalar of ciphertext under sec, by
// computing M = X − s·Y = plaintext·G and solving the discrete log of M in
// base G over the interval [0, maxMessage]. Returns ErrDecryptionFailure if
// no such plaintext exists in the window.
//
// This is a debugging/operator-only path: the validator never calls it on
// the settlement-critical path, where balances stay ciphertexts end to end.
func Decrypt(sec *ristretto.Scalar, ciphertext Ciphertext, maxMessage uint64) (uint64, error) {
	sY := ristretto.NewPoint().ScalarMult(sec, ciphertext.Y)
	m := ristretto.NewPoint().Sub(ciphertext.X, sY)

	return babyStepGiantStep(m, maxMessage)
}

// Refresh re-randomises ciphertext under the same key and plaintext: it
// first decrypts to confirm sec owns ciphertext (within maxMessage), then
// returns (X + r'·P, Y + r'·H). Fails with ErrDecryptionFailure if sec does
// not own ciphertext.
func Refresh(
	sec *ristretto.Scalar,
	pub *ristretto.Point,
	ciphertext Ciphertext,
	rPrime *ristretto.Scalar,
	maxMessage uint64,
) (Ciphertext, error) {
	if _, err := Decrypt(sec, ciphertext, maxMessage); err != nil {
		return Ciphertext{}, fmt.Errorf("elgamal: refresh: %w", ErrDecryptionFailure)
	}

	rP := ristretto.NewPoint().ScalarMult(rPrime, pub)
	rH := ristretto.NewPoint().ScalarMult(rPrime, ristretto.HGenerator())

	return Ciphertext{
		X: ristretto.NewPoint().Add(ciphertext.X, rP),
		Y: ristretto.NewPoint().Add(ciphertext.Y, rH),
	}, nil
}

// Add returns the homomorphic sum of two ciphertexts: if a encrypts v₁ and
// b encrypts v₂, Add(a,b) encrypts v₁+v₂.
func Add(a, b Ciphertext) Ciphertext {
	return Ciphertext{
		X: ristretto.NewPoint().Add(a.X, b.X),
		Y: ristretto.NewPoint().Add(a.Y, b.Y),
	}
}

// Sub returns the homomorphic difference of two ciphertexts: if a encrypts
// v₁ and b encrypts v₂, Sub(a,b) encrypts v₁−v₂.
func Sub(a, b Ciphertext) Ciphertext {
	return Ciphertext{
		X: ristretto.NewPoint().Sub(a.X, b.X),
		Y: ristretto.NewPoint().Sub(a.Y, b.Y),
	}
}

// babyStepGiantStep solves beta = m·G for m in [0, max], returning
// ErrDecryptionFailure if no such m exists in the window.
func babyStepGiantStep(beta *ristretto.Point, max uint64) (uint64, error) {
	m := new(big.Int).Sqrt(new(big.Int).SetUint64(max))
	if new(big.Int).Mul(m, m).Cmp(new(big.Int).SetUint64(max)) < 0 {
		m.Add(m, big.NewInt(1))
	}
	step := m.Uint64()

	g := ristretto.BasePoint()

	table := make(map[string]uint64, step+1)
	baby := ristretto.NewPoint() // identity = 0·G
	for j := uint64(0); j <= step; j++ {
		table[string(baby.Bytes())] = j
		baby = ristretto.NewPoint().Add(baby, g)
	}

	negStepG := ristretto.NewPoint().ScalarMult(ristretto.ScalarFromUint64(step), g)
	negStepG = ristretto.NewPoint().Negate(negStepG)

	giant := beta
	for i := uint64(0); ; i++ {
		if j, ok := table[string(giant.Bytes())]; ok {
			candidate := i*step + j
			if candidate <= max {
				return candidate, nil
			}
		}
		if i == step {
			break
		}
		giant = ristretto.NewPoint().Add(giant, negStepG)
	}
	return 0, fmt.Errorf("elgamal: %w: discrete log not found in [0,%d]", ErrDecryptionFailure, max)
}

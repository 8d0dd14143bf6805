// Package ristretto wraps the Ristretto prime-order group (built atop
// Curve25519) in the Scalar/Point vocabulary the rest of the settlement
// toolkit is written against: random scalars, constant-time scalar
// arithmetic mod the group order, point addition, scalar multiplication,
// and the two independent generators G and H every ElGamal and Σ-protocol
// operation is expressed in terms of.
package ristretto

import (
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gtank/ristretto255"
)

// ErrInvalidEncoding is returned when a point or scalar fails canonical
// decoding: the 32 bytes do not represent a valid Ristretto element, or a
// scalar byte string is not the canonical little-endian representative of
// its class mod the group order ℓ.
var ErrInvalidEncoding = errors.New("ristretto: invalid encoding")

// hGeneratorDomainSep is the domain-separation string hashed to derive the
// blinding basepoint H, so that log_G(H) is unknown to anyone.
const hGeneratorDomainSep = "shieldledger-settlement/ristretto/H-generator/v1"

// Scalar is an element of ℤ_ℓ, the scalar field of the Ristretto group.
type Scalar struct {
	inner *ristretto255.Scalar
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{inner: ristretto255.NewScalar()}
}

// RandomScalar draws a uniformly random scalar using a
// cryptographically secure source of entropy.
func RandomScalar() (*Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("ristretto: failed to sample random scalar: %w", err)
	}
	inner, err := ristretto255.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		return nil, fmt.Errorf("ristretto: wide reduction of random bytes failed: %w", err)
	}
	return &Scalar{inner: inner}, nil
}

// ScalarFromUniformBytes maps a wide (>=64 byte) buffer onto ℤ_ℓ via wide
// reduction, used to turn a transcript-squeezed challenge into a Scalar.
func ScalarFromUniformBytes(b []byte) (*Scalar, error) {
	inner, err := ristretto255.NewScalar().SetUniformBytes(b)
	if err != nil {
		return nil, fmt.Errorf("ristretto: wide reduction failed: %w", err)
	}
	return &Scalar{inner: inner}, nil
}

// ScalarFromUint64 encodes a small non-negative integer as a Scalar.
func ScalarFromUint64(v uint64) *Scalar {
	var le [32]byte
	for i := 0; i < 8; i++ {
		le[i] = byte(v >> (8 * i))
	}
	s, err := ristretto255.NewScalar().SetCanonicalBytes(le[:])
	if err != nil {
		panic("ristretto: uint64 little-endian encoding must be canonical")
	}
	return &Scalar{inner: s}
}

// SetCanonicalBytes decodes a 32-byte little-endian canonical scalar
// representative. Returns ErrInvalidEncoding if b is not canonical.
func (s *Scalar) SetCanonicalBytes(b []byte) error {
	if s.inner == nil {
		s.inner = ristretto255.NewScalar()
	}
	if _, err := s.inner.SetCanonicalBytes(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return nil
}

// Bytes returns the 32-byte little-endian canonical encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.inner.Bytes()
}

// MarshalCBOR serializes the scalar as its canonical byte encoding. Scalar
// otherwise carries only the unexported inner field, so without this hook
// every persisted *Scalar would encode to an empty CBOR map.
func (s *Scalar) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.Bytes())
}

// UnmarshalCBOR deserializes a scalar previously written by MarshalCBOR.
func (s *Scalar) UnmarshalCBOR(buf []byte) error {
	var b []byte
	if err := cbor.Unmarshal(buf, &b); err != nil {
		return fmt.Errorf("ristretto: unmarshaling scalar: %w", err)
	}
	return s.SetCanonicalBytes(b)
}

// Add returns a+b.
func (s *Scalar) Add(a, b *Scalar) *Scalar {
	s.ensure()
	s.inner.Add(a.inner, b.inner)
	return s
}

// Sub returns a-b.
func (s *Scalar) Sub(a, b *Scalar) *Scalar {
	s.ensure()
	s.inner.Subtract(a.inner, b.inner)
	return s
}

// Mul returns a*b.
func (s *Scalar) Mul(a, b *Scalar) *Scalar {
	s.ensure()
	s.inner.Multiply(a.inner, b.inner)
	return s
}

// Negate returns -a.
func (s *Scalar) Negate(a *Scalar) *Scalar {
	s.ensure()
	s.inner.Negate(a.inner)
	return s
}

// Invert returns a^-1 mod ℓ. a must be non-zero.
func (s *Scalar) Invert(a *Scalar) *Scalar {
	s.ensure()
	s.inner.Invert(a.inner)
	return s
}

// Equal reports whether s and o represent the same field element.
func (s *Scalar) Equal(o *Scalar) bool {
	return s.inner.Equal(o.inner) == 1
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.Equal(NewScalar())
}

// Zeroize overwrites the scalar's internal representation with zeros. Call
// via defer at every Prover/witness exit path; the scalar must not be used
// afterwards.
func (s *Scalar) Zeroize() {
	s.ensure()
	s.inner.Subtract(s.inner, s.inner)
}

func (s *Scalar) ensure() {
	if s.inner == nil {
		s.inner = ristretto255.NewScalar()
	}
}

// Point is an element of the Ristretto prime-order group.
type Point struct {
	inner *ristretto255.Element
}

// NewPoint returns the identity element.
func NewPoint() *Point {
	return &Point{inner: ristretto255.NewIdentityElement()}
}

// BasePoint returns the standard Ristretto basepoint G.
func BasePoint() *Point {
	one, err := ristretto255.NewScalar().SetCanonicalBytes(oneScalarBytes())
	if err != nil {
		panic("ristretto: failed to build the scalar 1")
	}
	return &Point{inner: ristretto255.NewIdentityElement().ScalarBaseMult(one)}
}

func oneScalarBytes() []byte {
	var le [32]byte
	le[0] = 1
	return le[:]
}

// hGenerator is computed lazily so package init stays allocation-free.
var hGenerator *Point

// HGenerator returns the independent blinding basepoint H, derived by
// hashing a fixed domain-separated string onto the curve so that log_G(H)
// is unknown to anyone (a nothing-up-my-sleeve generator).
func HGenerator() *Point {
	if hGenerator != nil {
		return hGenerator
	}
	digest := sha512.Sum512([]byte(hGeneratorDomainSep))
	elem, err := ristretto255.NewIdentityElement().SetUniformBytes(digest[:])
	if err != nil {
		panic("ristretto: hash-to-group of H's domain separator failed")
	}
	hGenerator = &Point{inner: elem}
	return hGenerator
}

// SetCanonicalBytes decodes a 32-byte canonical Ristretto point encoding.
// Returns ErrInvalidEncoding if b does not represent a valid point.
func (p *Point) SetCanonicalBytes(b []byte) error {
	if p.inner == nil {
		p.inner = ristretto255.NewIdentityElement()
	}
	if _, err := p.inner.SetCanonicalBytes(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return nil
}

// Bytes returns the 32-byte canonical compressed encoding of p.
func (p *Point) Bytes() []byte {
	return p.inner.Bytes()
}

// MarshalCBOR serializes the point as its canonical byte encoding, the same
// pattern the teacher's ecc point types use (e.g. bn254.G1.MarshalCBOR) so
// that a CBOR-persisted struct embedding a *Point round-trips: Point
// otherwise carries only the unexported inner field, invisible to cbor's
// reflection-based struct encoding.
func (p *Point) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.Bytes())
}

// UnmarshalCBOR deserializes a point previously written by MarshalCBOR.
func (p *Point) UnmarshalCBOR(buf []byte) error {
	var b []byte
	if err := cbor.Unmarshal(buf, &b); err != nil {
		return fmt.Errorf("ristretto: unmarshaling point: %w", err)
	}
	return p.SetCanonicalBytes(b)
}

// Add returns a+b.
func (p *Point) Add(a, b *Point) *Point {
	p.ensure()
	p.inner.Add(a.inner, b.inner)
	return p
}

// Sub returns a-b.
func (p *Point) Sub(a, b *Point) *Point {
	p.ensure()
	p.inner.Subtract(a.inner, b.inner)
	return p
}

// Negate returns -a.
func (p *Point) Negate(a *Point) *Point {
	p.ensure()
	p.inner.Negate(a.inner)
	return p
}

// ScalarMult returns s*a.
func (p *Point) ScalarMult(s *Scalar, a *Point) *Point {
	p.ensure()
	p.inner.ScalarMult(s.inner, a.inner)
	return p
}

// ScalarBaseMult returns s*G.
func (p *Point) ScalarBaseMult(s *Scalar) *Point {
	p.ensure()
	p.inner.ScalarBaseMult(s.inner)
	return p
}

// Equal reports whether p and o represent the same group element.
func (p *Point) Equal(o *Point) bool {
	return p.inner.Equal(o.inner) == 1
}

// IsIdentity reports whether p is the group identity.
func (p *Point) IsIdentity() bool {
	return p.Equal(NewPoint())
}

func (p *Point) ensure() {
	if p.inner == nil {
		p.inner = ristretto255.NewIdentityElement()
	}
}

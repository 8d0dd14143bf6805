// Package refreshment implements the concrete ciphertext-refreshment
// Σ-protocol: a zero-knowledge proof that two ElGamal ciphertexts under the
// same public key encrypt the same plaintext, without revealing the
// secret key or the plaintext. It is the one concrete proof the settlement
// core ships in full, built on the generic crypto/sigma framework.
//
// Statement: public key P, ciphertexts (X₁,Y₁) and (X₂,Y₂) under P. Define
// X = X₁−X₂, Y = Y₁−Y₂. The claim is "∃s: P=s·H ∧ X=s·Y" — which holds
// whenever the two ciphertexts encrypt the same value, since then
// X = (r₁−r₂)·P and Y = (r₁−r₂)·H for the same s that generates P.
//
// Per the design notes, the prover does not absorb P into the transcript,
// matching the original protocol this spec preserves compatibility with;
// an implementation starting from scratch should prefer absorbing P, X, Y
// ahead of a and b for stronger binding.
package refreshment

import (
	"fmt"
	"io"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/ristretto"
	"github.com/shieldledger/settlement/crypto/sigma"
	"github.com/shieldledger/settlement/crypto/transcript"
)

// Statement is the public data of a refreshment proof.
type Statement struct {
	P *ristretto.Point
	X *ristretto.Point
	Y *ristretto.Point
}

// NewStatement derives the statement (P, X, Y) from a public key and two
// ciphertexts alleged to encrypt the same plaintext under it.
func NewStatement(pub *ristretto.Point, before, after elgamal.Ciphertext) *Statement {
	return &Statement{
		P: pub,
		X: ristretto.NewPoint().Sub(before.X, after.X),
		Y: ristretto.NewPoint().Sub(before.Y, after.Y),
	}
}

// Witness is the prover's secret: the key scalar s with P = s·H.
type Witness struct {
	S *ristretto.Scalar
}

// InitialMessage is the pair of Schnorr-style commitments (a, b).
type InitialMessage struct {
	A *ristretto.Point
	B *ristretto.Point
}

var _ sigma.InitialMessage = (*InitialMessage)(nil)

// UpdateTranscript absorbs the domain separator then a and b, under labels
// "A" and "B". It deliberately does not absorb the statement (P, X, Y).
func (m *InitialMessage) UpdateTranscript(t *transcript.Transcript) error {
	t.AppendDomainSeparator(DomainSeparatorLabel)
	if err := t.AppendValidatedPoint(LabelA, m.A.Bytes()); err != nil {
		return fmt.Errorf("refreshment: absorbing A: %w", err)
	}
	if err := t.AppendValidatedPoint(LabelB, m.B.Bytes()); err != nil {
		return fmt.Errorf("refreshment: absorbing B: %w", err)
	}
	return nil
}

// FinalResponse is the Schnorr-style response scalar z = u + c·s.
type FinalResponse struct {
	Z *ristretto.Scalar
}

type proverAwaitingChallenge struct {
	stmt    *Statement
	witness *Witness
}

// NewProver returns a ProverAwaitingChallenge for the refreshment relation.
func NewProver(stmt *Statement, witness *Witness) sigma.ProverAwaitingChallenge[*InitialMessage, *FinalResponse] {
	return &proverAwaitingChallenge{stmt: stmt, witness: witness}
}

func (p *proverAwaitingChallenge) CreateTranscriptRng(entropy io.Reader, t *transcript.Transcript) (io.Reader, error) {
	return t.BuildRng().RekeyWithWitnessBytes(WitnessLabel, p.witness.S.Bytes()).Finalize(entropy)
}

func (p *proverAwaitingChallenge) GenerateInitialMessage(rng io.Reader) (sigma.Prover[*FinalResponse], *InitialMessage) {
	u := drawScalar(rng)
	a := ristretto.NewPoint().ScalarMult(u, p.stmt.Y)
	b := ristretto.NewPoint().ScalarMult(u, ristretto.HGenerator())

	return &activeProver{u: u, s: p.witness.S}, &InitialMessage{A: a, B: b}
}

type activeProver struct {
	u *ristretto.Scalar
	s *ristretto.Scalar
}

func (pr *activeProver) ApplyChallenge(c *ristretto.Scalar) *FinalResponse {
	cs := ristretto.NewScalar().Mul(c, pr.s)
	z := ristretto.NewScalar().Add(pr.u, cs)
	return &FinalResponse{Z: z}
}

// Zeroize overwrites the nonce and witness scalars. Callers must not reuse
// the activeProver afterwards.
func (pr *activeProver) Zeroize() {
	pr.u.Zeroize()
	pr.s.Zeroize()
}

type verifier struct {
	stmt *Statement
}

// NewVerifier returns a Verifier for the refreshment relation over stmt.
func NewVerifier(stmt *Statement) sigma.Verifier[*InitialMessage, *FinalResponse] {
	return &verifier{stmt: stmt}
}

// Verify checks the two verification equations. Check #1 is evaluated
// first; on failure, check #2 is not evaluated.
func (v *verifier) Verify(c *ristretto.Scalar, m *InitialMessage, z *FinalResponse) error {
	lhs1 := ristretto.NewPoint().ScalarMult(z.Z, v.stmt.Y)
	cX := ristretto.NewPoint().ScalarMult(c, v.stmt.X)
	rhs1 := ristretto.NewPoint().Add(m.A, cX)
	if !lhs1.Equal(rhs1) {
		return &FinalResponseVerificationError{Check: 1}
	}

	lhs2 := ristretto.NewPoint().ScalarMult(z.Z, ristretto.HGenerator())
	cP := ristretto.NewPoint().ScalarMult(c, v.stmt.P)
	rhs2 := ristretto.NewPoint().Add(m.B, cP)
	if !lhs2.Equal(rhs2) {
		return &FinalResponseVerificationError{Check: 2}
	}

	return nil
}

// Prove runs the non-interactive driver for a single refreshment statement.
func Prove(stmt *Statement, witness *Witness, entropy io.Reader) (*InitialMessage, *FinalResponse, error) {
	return sigma.Prove[*InitialMessage, *FinalResponse](ProtocolLabel, ChallengeLabel, entropy, NewProver(stmt, witness))
}

// Verify checks a single refreshment proof against stmt.
func Verify(stmt *Statement, m *InitialMessage, z *FinalResponse) error {
	return sigma.VerifySingle[*InitialMessage, *FinalResponse](ProtocolLabel, ChallengeLabel, NewVerifier(stmt), m, z)
}

func drawScalar(rng io.Reader) *ristretto.Scalar {
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		panic(fmt.Sprintf("refreshment: failed to read nonce randomness: %v", err))
	}
	s, err := ristretto.ScalarFromUniformBytes(wide[:])
	if err != nil {
		panic("refreshment: wide reduction of 64 bytes cannot fail")
	}
	return s
}

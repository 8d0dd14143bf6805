package proofs

import (
	"fmt"
	"io"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/ristretto"
	"github.com/shieldledger/settlement/crypto/sigma"
	"github.com/shieldledger/settlement/crypto/transcript"
)

// Domain-separation labels for the correctness proof.
const (
	CorrectnessProtocolLabel = "shieldledger-settlement/Correctness/v1"
	correctnessDomainSep     = "CorrectnessChallenge"
	correctnessLabelA        = "A"
	correctnessLabelB        = "B"
	CorrectnessChallengeLabel = "c"
	correctnessWitnessLabel   = "witness-r"
)

// CorrectnessFinalResponseVerificationError reports that the correctness
// proof's response failed the named verification equation.
type CorrectnessFinalResponseVerificationError struct {
	Reason string
}

func (e *CorrectnessFinalResponseVerificationError) Error() string {
	return fmt.Sprintf("proofs: correctness final response verification failed: %s", e.Reason)
}

// CorrectnessStatement is the public data of a correctness proof: it
// reduces to the DLEQ relation "∃r: (X − v·G) = r·P ∧ Y = r·H", proving
// that ciphertext (X,Y) encrypts v under pub with some blinding r, without
// revealing r.
type CorrectnessStatement struct {
	P  *ristretto.Point
	Xp *ristretto.Point
	Y  *ristretto.Point
}

// NewCorrectnessStatement derives the statement from a public key, a
// ciphertext, and the plaintext claimed to be encrypted within it.
func NewCorrectnessStatement(pub *ristretto.Point, ciphertext elgamal.Ciphertext, claimedPlaintext uint64) *CorrectnessStatement {
	vG := ristretto.NewPoint().ScalarBaseMult(ristretto.ScalarFromUint64(claimedPlaintext))
	return &CorrectnessStatement{
		P:  pub,
		Xp: ristretto.NewPoint().Sub(ciphertext.X, vG),
		Y:  ciphertext.Y,
	}
}

// CorrectnessWitness is the blinding scalar used when the ciphertext was
// encrypted.
type CorrectnessWitness struct {
	R *ristretto.Scalar
}

// CorrectnessInitialMessage is the pair of Schnorr-style commitments.
type CorrectnessInitialMessage struct {
	A *ristretto.Point
	B *ristretto.Point
}

var _ sigma.InitialMessage = (*CorrectnessInitialMessage)(nil)

// UpdateTranscript absorbs the domain separator then A and B.
func (m *CorrectnessInitialMessage) UpdateTranscript(t *transcript.Transcript) error {
	t.AppendDomainSeparator(correctnessDomainSep)
	if err := t.AppendValidatedPoint(correctnessLabelA, m.A.Bytes()); err != nil {
		return fmt.Errorf("proofs: correctness: absorbing A: %w", err)
	}
	if err := t.AppendValidatedPoint(correctnessLabelB, m.B.Bytes()); err != nil {
		return fmt.Errorf("proofs: correctness: absorbing B: %w", err)
	}
	return nil
}

// CorrectnessFinalResponse is the response scalar z = u + c·r.
type CorrectnessFinalResponse struct {
	Z *ristretto.Scalar
}

type correctnessProverAwaitingChallenge struct {
	stmt    *CorrectnessStatement
	witness *CorrectnessWitness
}

// NewCorrectnessProver returns a ProverAwaitingChallenge for the
// correctness relation.
func NewCorrectnessProver(stmt *CorrectnessStatement, witness *CorrectnessWitness) sigma.ProverAwaitingChallenge[*CorrectnessInitialMessage, *CorrectnessFinalResponse] {
	return &correctnessProverAwaitingChallenge{stmt: stmt, witness: witness}
}

func (p *correctnessProverAwaitingChallenge) CreateTranscriptRng(entropy io.Reader, t *transcript.Transcript) (io.Reader, error) {
	return t.BuildRng().RekeyWithWitnessBytes(correctnessWitnessLabel, p.witness.R.Bytes()).Finalize(entropy)
}

func (p *correctnessProverAwaitingChallenge) GenerateInitialMessage(rng io.Reader) (sigma.Prover[*CorrectnessFinalResponse], *CorrectnessInitialMessage) {
	u := drawCorrectnessScalar(rng)
	a := ristretto.NewPoint().ScalarMult(u, p.stmt.P)
	b := ristretto.NewPoint().ScalarMult(u, ristretto.HGenerator())
	return &correctnessActiveProver{u: u, r: p.witness.R}, &CorrectnessInitialMessage{A: a, B: b}
}

type correctnessActiveProver struct {
	u *ristretto.Scalar
	r *ristretto.Scalar
}

func (pr *correctnessActiveProver) ApplyChallenge(c *ristretto.Scalar) *CorrectnessFinalResponse {
	cr := ristretto.NewScalar().Mul(c, pr.r)
	z := ristretto.NewScalar().Add(pr.u, cr)
	return &CorrectnessFinalResponse{Z: z}
}

func (pr *correctnessActiveProver) Zeroize() {
	pr.u.Zeroize()
	pr.r.Zeroize()
}

type correctnessVerifier struct {
	stmt *CorrectnessStatement
}

// NewCorrectnessVerifier returns a Verifier for the correctness relation.
func NewCorrectnessVerifier(stmt *CorrectnessStatement) sigma.Verifier[*CorrectnessInitialMessage, *CorrectnessFinalResponse] {
	return &correctnessVerifier{stmt: stmt}
}

func (v *correctnessVerifier) Verify(c *ristretto.Scalar, m *CorrectnessInitialMessage, z *CorrectnessFinalResponse) error {
	lhs1 := ristretto.NewPoint().ScalarMult(z.Z, v.stmt.P)
	cXp := ristretto.NewPoint().ScalarMult(c, v.stmt.Xp)
	rhs1 := ristretto.NewPoint().Add(m.A, cXp)
	if !lhs1.Equal(rhs1) {
		return &CorrectnessFinalResponseVerificationError{Reason: "z·P != A + c·(X-v·G)"}
	}

	lhs2 := ristretto.NewPoint().ScalarMult(z.Z, ristretto.HGenerator())
	cY := ristretto.NewPoint().ScalarMult(c, v.stmt.Y)
	rhs2 := ristretto.NewPoint().Add(m.B, cY)
	if !lhs2.Equal(rhs2) {
		return &CorrectnessFinalResponseVerificationError{Reason: "z·H != B + c·Y"}
	}

	return nil
}

// ProveCorrectness runs the non-interactive driver for a single correctness
// statement.
func ProveCorrectness(stmt *CorrectnessStatement, witness *CorrectnessWitness, entropy io.Reader) (*CorrectnessInitialMessage, *CorrectnessFinalResponse, error) {
	return sigma.Prove[*CorrectnessInitialMessage, *CorrectnessFinalResponse](
		CorrectnessProtocolLabel, CorrectnessChallengeLabel, entropy, NewCorrectnessProver(stmt, witness),
	)
}

// VerifyCorrectness checks a single correctness proof against stmt.
func VerifyCorrectness(stmt *CorrectnessStatement, m *CorrectnessInitialMessage, z *CorrectnessFinalResponse) error {
	return sigma.VerifySingle[*CorrectnessInitialMessage, *CorrectnessFinalResponse](
		CorrectnessProtocolLabel, CorrectnessChallengeLabel, NewCorrectnessVerifier(stmt), m, z,
	)
}

// ProveCorrectnessMultiple batches several independent correctness
// statements under one shared challenge (§8 scenario S5).
func ProveCorrectnessMultiple(
	provers []sigma.ProverAwaitingChallenge[*CorrectnessInitialMessage, *CorrectnessFinalResponse],
	entropy io.Reader,
) ([]*CorrectnessInitialMessage, []*CorrectnessFinalResponse, error) {
	return sigma.ProveMultiple[*CorrectnessInitialMessage, *CorrectnessFinalResponse](
		CorrectnessProtocolLabel, CorrectnessChallengeLabel, entropy, provers,
	)
}

// VerifyCorrectnessMultiple checks a batch of correctness proofs produced by
// ProveCorrectnessMultiple.
func VerifyCorrectnessMultiple(
	verifiers []sigma.Verifier[*CorrectnessInitialMessage, *CorrectnessFinalResponse],
	messages []*CorrectnessInitialMessage,
	responses []*CorrectnessFinalResponse,
) error {
	return sigma.VerifyMultiple[*CorrectnessInitialMessage, *CorrectnessFinalResponse](
		CorrectnessProtocolLabel, CorrectnessChallengeLabel, verifiers, messages, responses,
	)
}

// Correctness bundles an (initial message, final response) pair into a
// CorrectnessProof that can be verified against a (pub, ciphertext,
// claimedPlaintext) triple it did not itself construct — the shape the
// validator deserialises from a JustifiedAssetTx/JustifiedTransferTx file.
type Correctness struct {
	M *CorrectnessInitialMessage
	Z *CorrectnessFinalResponse
}

var _ CorrectnessProof = (*Correctness)(nil)

// Verify implements CorrectnessProof.
func (p *Correctness) Verify(pub *ristretto.Point, ciphertext elgamal.Ciphertext, claimedPlaintext uint64) error {
	stmt := NewCorrectnessStatement(pub, ciphertext, claimedPlaintext)
	return VerifyCorrectness(stmt, p.M, p.Z)
}

func drawCorrectnessScalar(rng io.Reader) *ristretto.Scalar {
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		panic(fmt.Sprintf("proofs: correctness: failed to read nonce randomness: %v", err))
	}
	s, err := ristretto.ScalarFromUniformBytes(wide[:])
	if err != nil {
		panic("proofs: correctness: wide reduction of 64 bytes cannot fail")
	}
	return s
}

// Package sigma provides the generic Σ-protocol (commit/challenge/respond)
// machinery every concrete zero-knowledge proof in this toolkit is built
// from: prover/verifier role contracts, a non-interactive Fiat–Shamir
// driver, and a batch composition that binds several independent
// statements to one shared challenge.
//
// The driver is monomorphic per concrete proof type (crypto/refreshment,
// crypto/proofs/correctness, ...), expressed with Go generics over the
// proof's own InitialMessage/FinalResponse types, matching the spec's own
// note that the batch driver is homogeneous in the source and should stay
// that way.
package sigma

import (
	"errors"
	"fmt"
	"io"

	"github.com/shieldledger/settlement/crypto/ristretto"
	"github.com/shieldledger/settlement/crypto/transcript"
)

// ErrShapeMismatch is returned by the batch driver when the cardinalities
// of provers/verifiers, initial messages and final responses disagree.
var ErrShapeMismatch = errors.New("sigma: shape mismatch")

// InitialMessage is the set of commitment group elements a Prover sends
// before the challenge. UpdateTranscript absorbs every element it carries
// under a labeled domain, failing with ristretto.ErrInvalidEncoding only
// if an element was built from invalid bytes (never for freshly
// constructed commitments).
type InitialMessage interface {
	UpdateTranscript(t *transcript.Transcript) error
}

// Prover holds commitment nonces and the witness for one proof session. It
// is single-use: ApplyChallenge consumes it and the caller must Zeroize
// immediately after, on every exit path.
type Prover[FinalResponse any] interface {
	ApplyChallenge(c *ristretto.Scalar) FinalResponse
	Zeroize()
}

// ProverAwaitingChallenge holds a statement and witness before any
// randomness has been drawn.
type ProverAwaitingChallenge[IM InitialMessage, FinalResponse any] interface {
	// CreateTranscriptRng derives the witness-seeded, transcript-bound RNG
	// used to pick commitment randomness.
	CreateTranscriptRng(entropy io.Reader, t *transcript.Transcript) (io.Reader, error)
	// GenerateInitialMessage draws nonces from rng and returns the
	// Prover holding them plus the public commitment values.
	GenerateInitialMessage(rng io.Reader) (Prover[FinalResponse], IM)
}

// Verifier holds a statement only and checks a (challenge, initial
// message, final response) triple against its verification equations.
type Verifier[IM InitialMessage, FinalResponse any] interface {
	Verify(c *ristretto.Scalar, m IM, z FinalResponse) error
}

// Prove runs the non-interactive single-statement driver: it opens a fresh
// transcript under protocolLabel, derives the prover's nonce RNG, absorbs
// the initial message, squeezes the challenge under challengeLabel, and
// returns the resulting (initial message, final response) proof.
func Prove[IM InitialMessage, FinalResponse any](
	protocolLabel, challengeLabel string,
	entropy io.Reader,
	prover ProverAwaitingChallenge[IM, FinalResponse],
) (IM, FinalResponse, error) {
	var zeroIM IM
	var zeroFR FinalResponse

	t := transcript.New(protocolLabel)

	rng, err := prover.CreateTranscriptRng(entropy, t)
	if err != nil {
		return zeroIM, zeroFR, fmt.Errorf("sigma: failed to create transcript rng: %w", err)
	}

	p1, m := prover.GenerateInitialMessage(rng)
	if err := m.UpdateTranscript(t); err != nil {
		p1.Zeroize()
		return zeroIM, zeroFR, fmt.Errorf("sigma: failed to absorb initial message: %w", err)
	}

	c := t.ScalarChallenge(challengeLabel)
	z := p1.ApplyChallenge(c)
	p1.Zeroize()

	return m, z, nil
}

// VerifySingle mirrors Prove's transcript construction and checks the
// resulting proof against verifier's statement.
func VerifySingle[IM InitialMessage, FinalResponse any](
	protocolLabel, challengeLabel string,
	verifier Verifier[IM, FinalResponse],
	m IM,
	z FinalResponse,
) error {
	t := transcript.New(protocolLabel)
	if err := m.UpdateTranscript(t); err != nil {
		return fmt.Errorf("sigma: failed to absorb initial message: %w", err)
	}
	c := t.ScalarChallenge(challengeLabel)
	return verifier.Verify(c, m, z)
}

// ProveMultiple runs the batch composition: a single transcript absorbs
// every prover's initial message, in input order, before one challenge is
// squeezed and supplied to every prover. Swapping the order of two provers
// changes the challenge and therefore the resulting proofs. An empty batch
// is accepted as a trivial proof, with the challenge squeezed from the
// bare protocol label.
func ProveMultiple[IM InitialMessage, FinalResponse any](
	protocolLabel, challengeLabel string,
	entropy io.Reader,
	provers []ProverAwaitingChallenge[IM, FinalResponse],
) ([]IM, []FinalResponse, error) {
	t := transcript.New(protocolLabel)

	sessions := make([]Prover[FinalResponse], len(provers))
	messages := make([]IM, len(provers))

	for i, prover := range provers {
		rng, err := prover.CreateTranscriptRng(entropy, t)
		if err != nil {
			for _, s := range sessions[:i] {
				s.Zeroize()
			}
			return nil, nil, fmt.Errorf("sigma: failed to create transcript rng for statement %d: %w", i, err)
		}
		p1, m := prover.GenerateInitialMessage(rng)
		if err := m.UpdateTranscript(t); err != nil {
			p1.Zeroize()
			for _, s := range sessions[:i] {
				s.Zeroize()
			}
			return nil, nil, fmt.Errorf("sigma: failed to absorb initial message %d: %w", i, err)
		}
		sessions[i] = p1
		messages[i] = m
	}

	c := t.ScalarChallenge(challengeLabel)

	responses := make([]FinalResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = session.ApplyChallenge(c)
		session.Zeroize()
	}

	return messages, responses, nil
}

// VerifyMultiple checks a batch of proofs produced by ProveMultiple. The
// cardinalities of verifiers, messages and responses must all agree, else
// ErrShapeMismatch. Every verifier receives the same challenge, squeezed
// once after every message in order has been absorbed into one transcript.
func VerifyMultiple[IM InitialMessage, FinalResponse any](
	protocolLabel, challengeLabel string,
	verifiers []Verifier[IM, FinalResponse],
	messages []IM,
	responses []FinalResponse,
) error {
	if len(verifiers) != len(messages) || len(messages) != len(responses) {
		return fmt.Errorf(
			"sigma: %w: %d verifiers, %d initial messages, %d final responses",
			ErrShapeMismatch, len(verifiers), len(messages), len(responses),
		)
	}

	t := transcript.New(protocolLabel)
	for i, m := range messages {
		if err := m.UpdateTranscript(t); err != nil {
			return fmt.Errorf("sigma: failed to absorb initial message %d: %w", i, err)
		}
	}

	c := t.ScalarChallenge(challengeLabel)

	for i, verifier := range verifiers {
		if err := verifier.Verify(c, messages[i], responses[i]); err != nil {
			return fmt.Errorf("sigma: statement %d failed verification: %w", i, err)
		}
	}
	return nil
}

package types

import (
	"fmt"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/proofs"
	"github.com/shieldledger/settlement/mediator"
)

// TxID identifies a transaction in its causal ordering. Strictly monotone
// per ledger; the validator persists the largest one it has processed as
// LAST_VALIDATED_TX_ID.
type TxID uint64

// TxKind discriminates the three transaction shapes the validator
// classifies raw files into (§4.6 main loop, step 2).
type TxKind int

const (
	TxKindAccount TxKind = iota
	TxKindIssuance
	TxKindTransfer
)

// String implements fmt.Stringer.
func (k TxKind) String() string {
	switch k {
	case TxKindAccount:
		return "account"
	case TxKindIssuance:
		return "issuance"
	case TxKindTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// TxState is the coarse lifecycle stage of a transaction file (§4.6).
type TxState int

const (
	TxStateAccountCreation TxState = iota
	TxStateJustification
	TxStateInitialisation
	TxStateFinalisation
)

// String implements fmt.Stringer.
func (s TxState) String() string {
	switch s {
	case TxStateAccountCreation:
		return "AccountCreation"
	case TxStateJustification:
		return "Justification"
	case TxStateInitialisation:
		return "Initialisation"
	case TxStateFinalisation:
		return "Finalisation"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// TxSubstate further refines a TxState: Started means justified and ready
// for validation, Validated means the validator has already committed it.
type TxSubstate int

const (
	TxSubstateStarted TxSubstate = iota
	TxSubstateValidated
)

// String implements fmt.Stringer.
func (s TxSubstate) String() string {
	switch s {
	case TxSubstateStarted:
		return "Started"
	case TxSubstateValidated:
		return "Validated"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// IsReadyForValidation reports whether (state, substate) is a justified
// Started substate the validator's main loop will dispatch on. Any other
// combination is either already validated or not yet justified.
func IsReadyForValidation(state TxState, substate TxSubstate) bool {
	if substate != TxSubstateStarted {
		return false
	}
	switch state {
	case TxStateAccountCreation, TxStateJustification, TxStateFinalisation:
		return true
	default:
		return false
	}
}

// PubAccountTx is the account-creation bundle a new owner submits: the
// encrypted asset id and balance the account will start with, plus the
// membership and key-correctness proofs that bind them.
type PubAccountTx struct {
	ID      TxID
	Account PubAccount

	// MembershipProof shows EncAssetID encrypts a member of the valid
	// asset-id set, without revealing which.
	MembershipProof *proofs.OpaqueMembershipProof
	// KeyCorrectnessProof shows EncBalance encrypts a zero balance under
	// PublicKey; it says nothing about EncAssetID.
	KeyCorrectnessProof *proofs.Correctness
	// WellformednessProof shows EncBalance is a well-formed, zero-valued
	// ElGamal ciphertext at creation time.
	WellformednessProof *proofs.OpaqueWellformednessProof
}

// JustifiedAssetTx is a mediator-signed issuance: a ciphertext of the
// issued amount under the issuer's key, plus a correctness proof binding it
// to the value the mediator attested, a range proof, and the mediator's
// signature over the justification.
type JustifiedAssetTx struct {
	ID      TxID
	Issuer  AccountID
	Ticker  AssetID
	State   TxState
	Substate TxSubstate

	// IssuedAmount is the mediator-attested plaintext issuance amount.
	// Asset issuance is publicly declared even though the resulting
	// balance stays encrypted; CorrectnessProof binds EncIssuedAmount to
	// this value under the issuer's public key, and MediatorSignature
	// covers it alongside the rest of the justification.
	IssuedAmount    uint64
	EncIssuedAmount elgamal.Ciphertext

	CorrectnessProof *proofs.Correctness
	RangeProof       *proofs.OpaqueRangeProof

	MediatorSignature *mediator.Signature
}

// JustifiedTransferTx is a sender-initiated, receiver-finalised,
// mediator-justified confidential transfer: a ciphertext of the amount
// under both sender and receiver keys, proofs linking them, a range proof
// on the resulting sender balance, and the mediator's signature.
type JustifiedTransferTx struct {
	ID       TxID
	Sender   AccountID
	Receiver AccountID
	Ticker   AssetID
	State    TxState
	Substate TxSubstate

	// CurrentTxID is this transfer's position in the sender's causal chain
	// of in-flight outgoing transfers (§4.6 pending-balance computation).
	// Counter is this transfer's own sequence number in the sender's
	// per-account chain; by construction Counter = LastProcessedCounter+1,
	// since a client only builds a new transfer once it has observed its
	// predecessor's counter.
	CurrentTxID          TxID
	LastProcessedCounter uint64

	EncAmountUsingSender   elgamal.Ciphertext
	EncAmountUsingReceiver elgamal.Ciphertext

	// KeyEqualityProof shows EncAmountUsingSender and EncAmountUsingReceiver
	// encrypt the same plaintext under the sender's and receiver's
	// respective keys — the one statement that can bind two ciphertexts
	// without revealing the confidential amount, so it stands in for the
	// spec's "correctness proofs linking ciphertexts to the memo" here;
	// a public-plaintext CorrectnessProof (as used for issuance, where the
	// amount is openly declared) does not fit a confidential transfer.
	KeyEqualityProof *proofs.OpaqueKeyEqualityProof
	RangeProof       *proofs.OpaqueRangeProof

	MediatorSignature *mediator.Signature
}

// Counter returns tx's own sequence number in the sender's per-account
// causal chain of outgoing transfers.
func (tx *JustifiedTransferTx) Counter() uint64 {
	return tx.LastProcessedCounter + 1
}

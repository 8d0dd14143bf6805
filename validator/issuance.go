package validator

import (
	"fmt"

	"github.com/shieldledger/settlement/mediator"
	"github.com/shieldledger/settlement/types"
)

// issuanceJustificationPayload is the byte string the mediator's signature
// commits to: enough to uniquely identify the attested amount and its
// destination so a signature cannot be replayed onto a different
// justification.
func issuanceJustificationPayload(tx *types.JustifiedAssetTx) []byte {
	return []byte(fmt.Sprintf("issuance:%d:%s:%s:%d", tx.ID, tx.Issuer, tx.Ticker, tx.IssuedAmount))
}

// validateIssuance verifies a mediator-signed JustifiedAssetTx: the
// mediator's signature over the justification, the correctness proof
// binding EncIssuedAmount to IssuedAmount under the issuer's key, and the
// range proof on the issued amount.
func validateIssuance(tx *types.JustifiedAssetTx, issuer *types.PubAccount) error {
	if tx.MediatorSignature == nil {
		return &LibraryError{Err: fmt.Errorf("issuance %d: missing mediator signature", tx.ID)}
	}
	if err := mediator.Verify(issuanceJustificationPayload(tx), tx.MediatorSignature, issuer.Memo.MediatorKey); err != nil {
		return &LibraryError{Err: fmt.Errorf("issuance %d: mediator signature: %w", tx.ID, err)}
	}

	if tx.CorrectnessProof == nil {
		return &LibraryError{Err: fmt.Errorf("issuance %d: missing correctness proof", tx.ID)}
	}
	if err := tx.CorrectnessProof.Verify(issuer.PublicKey, tx.EncIssuedAmount, tx.IssuedAmount); err != nil {
		return &LibraryError{Err: fmt.Errorf("issuance %d: correctness proof: %w", tx.ID, err)}
	}

	if tx.RangeProof == nil {
		return &LibraryError{Err: fmt.Errorf("issuance %d: missing range proof", tx.ID)}
	}
	if err := tx.RangeProof.Verify(tx.EncIssuedAmount, 64); err != nil {
		return &LibraryError{Err: fmt.Errorf("issuance %d: range proof: %w", tx.ID, err)}
	}

	return nil
}

package validator

import (
	"fmt"

	"github.com/shieldledger/settlement/crypto/proofs"
	"github.com/shieldledger/settlement/types"
)

// validateAccount verifies a PubAccountTx against the ledger's current set
// of valid asset ids: the membership proof that EncAssetID encrypts a
// member of that set, the key-correctness proof binding the account's
// public key to its starting (zero) balance, and the wellformedness proof
// that EncBalance is a validly-formed ciphertext at creation time.
func validateAccount(tx *types.PubAccountTx, validAssetIDs []proofs.AssetID) error {
	acc := &tx.Account

	if tx.MembershipProof == nil {
		return &LibraryError{Err: fmt.Errorf("account %s: missing membership proof", acc.ID)}
	}
	if err := tx.MembershipProof.Verify(acc.EncAssetID, validAssetIDs); err != nil {
		return &LibraryError{Err: fmt.Errorf("account %s: membership proof: %w", acc.ID, err)}
	}

	if tx.KeyCorrectnessProof == nil {
		return &LibraryError{Err: fmt.Errorf("account %s: missing key-correctness proof", acc.ID)}
	}
	// A fresh account starts at a zero balance, so the claimed plaintext
	// the correctness proof binds PublicKey/EncBalance to is fixed at 0.
	if err := tx.KeyCorrectnessProof.Verify(acc.PublicKey, acc.EncBalance, 0); err != nil {
		return &LibraryError{Err: fmt.Errorf("account %s: key-correctness proof: %w", acc.ID, err)}
	}

	if tx.WellformednessProof == nil {
		return &LibraryError{Err: fmt.Errorf("account %s: missing wellformedness proof", acc.ID)}
	}
	if err := tx.WellformednessProof.Verify(acc.EncBalance); err != nil {
		return &LibraryError{Err: fmt.Errorf("account %s: wellformedness proof: %w", acc.ID, err)}
	}

	return nil
}

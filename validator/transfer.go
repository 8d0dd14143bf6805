package validator

import (
	"fmt"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/mediator"
	"github.com/shieldledger/settlement/storage"
	"github.com/shieldledger/settlement/types"
)

// transferJustificationPayload is the byte string the mediator's signature
// commits to for a transfer.
func transferJustificationPayload(tx *types.JustifiedTransferTx) []byte {
	return []byte(fmt.Sprintf("transfer:%d:%s:%s:%s", tx.ID, tx.Sender, tx.Receiver, tx.Ticker))
}

// pendingBalance recomputes the sender's encrypted balance as of tx,
// folding in every other in-flight outgoing transfer whose own causal
// position (current_tx_id) precedes tx's and whose counter is strictly
// past what tx's author had already observed (last_processed_tx_counter):
// exactly the set last_ordering_state_before identifies (§4.6 step a-b).
// Pure ciphertext subtraction throughout — no plaintext ever touches this
// path.
func pendingBalance(ledger *storage.Ledger, sender *types.PubAccount, tx *types.JustifiedTransferTx) (elgamal.Ciphertext, error) {
	inFlight, err := ledger.InFlightTransferFilesForSender(sender.ID)
	if err != nil {
		return elgamal.Ciphertext{}, fmt.Errorf("transfer %d: listing in-flight transfers: %w", tx.ID, err)
	}

	balance := sender.EncBalance
	for _, ref := range inFlight {
		if ref.TxID == tx.ID {
			continue
		}
		var other types.JustifiedTransferTx
		if err := ledger.LoadTxFile(ref.Filename, &other); err != nil {
			return elgamal.Ciphertext{}, fmt.Errorf("transfer %d: loading in-flight transfer %d: %w", tx.ID, ref.TxID, err)
		}
		if other.CurrentTxID >= tx.CurrentTxID || other.Counter() <= tx.LastProcessedCounter {
			continue
		}
		balance = elgamal.Sub(balance, other.EncAmountUsingSender)
	}
	return balance, nil
}

// validateTransfer verifies a JustifiedTransferTx: the mediator signature,
// the key-equality proof binding the sender-side and receiver-side
// ciphertexts to the same confidential amount, and the range proof that the
// sender's resulting balance (pending balance minus this transfer's
// amount) stays non-negative and within the plaintext window.
func validateTransfer(ledger *storage.Ledger, tx *types.JustifiedTransferTx, sender, receiver *types.PubAccount) error {
	if sender.Memo.MediatorKey != receiver.Memo.MediatorKey {
		return &LibraryError{Err: fmt.Errorf("transfer %d: sender and receiver are governed by different mediators", tx.ID)}
	}
	if tx.MediatorSignature == nil {
		return &LibraryError{Err: fmt.Errorf("transfer %d: missing mediator signature", tx.ID)}
	}
	if err := mediator.Verify(transferJustificationPayload(tx), tx.MediatorSignature, sender.Memo.MediatorKey); err != nil {
		return &LibraryError{Err: fmt.Errorf("transfer %d: mediator signature: %w", tx.ID, err)}
	}

	if tx.KeyEqualityProof == nil {
		return &LibraryError{Err: fmt.Errorf("transfer %d: missing key-equality proof", tx.ID)}
	}
	if err := tx.KeyEqualityProof.Verify(tx.EncAmountUsingSender, tx.EncAmountUsingReceiver, sender.PublicKey, receiver.PublicKey); err != nil {
		return &LibraryError{Err: fmt.Errorf("transfer %d: key-equality proof: %w", tx.ID, err)}
	}

	pending, err := pendingBalance(ledger, sender, tx)
	if err != nil {
		return err
	}
	resultingBalance := elgamal.Sub(pending, tx.EncAmountUsingSender)

	if tx.RangeProof == nil {
		return &LibraryError{Err: fmt.Errorf("transfer %d: missing range proof", tx.ID)}
	}
	if err := tx.RangeProof.Verify(resultingBalance, 64); err != nil {
		return &LibraryError{Err: fmt.Errorf("transfer %d: range proof: %w", tx.ID, err)}
	}

	return nil
}

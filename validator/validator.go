// Package validator implements the orchestrator of §4.6: the state
// machine that loads justified transaction files, verifies their proofs,
// and folds the resulting encrypted balance deltas into the ledger. Its
// worker-pool fan-out is grounded on the teacher's finalizer/sequencer
// channel-and-ticker idiom, adapted from a long-running background service
// into a single bounded pass suited to this batch-oriented workload.
package validator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/proofs"
	"github.com/shieldledger/settlement/log"
	"github.com/shieldledger/settlement/storage"
	"github.com/shieldledger/settlement/types"
)

// Orchestrator is the validator state machine: it loads every
// ready-for-validation transaction file, verifies its proofs, and folds
// the resulting encrypted balance deltas into the ledger.
type Orchestrator struct {
	ledger *storage.Ledger
}

// New returns an Orchestrator reading from and writing to ledger.
func New(ledger *storage.Ledger) *Orchestrator {
	return &Orchestrator{ledger: ledger}
}

// txOutcome is the per-transaction output of the verification phase: the
// balance deltas to fold, keyed by tx_id for the deterministic
// re-sequencing step §5 requires ahead of the balance fold.
type txOutcome struct {
	txID    types.TxID
	results []types.ValidationResult
}

// ValidateAllPending runs one pass of the main loop: enumerate every ready
// transaction file, verify each — fanned out across a worker pool bounded
// by GOMAXPROCS, since proof verification is CPU-bound and independent
// (§5) — then, once every verification has finished, re-sequence by tx_id
// and fold the resulting balance deltas before persisting
// LAST_VALIDATED_TX_ID. A proof failure in one transaction is logged and
// produces no balance delta; it never aborts the batch, and neither does a
// load or save failure inside one transaction's dispatch. Returns an error
// for the fatal conditions of §7 (an unparseable ready file, or a ready
// file of no known kind), for an object-store failure while enumerating
// files, loading the asset-id set, folding balances or persisting
// LAST_VALIDATED_TX_ID, and when ctx is cancelled.
func (o *Orchestrator) ValidateAllPending(ctx context.Context) error {
	refs, err := o.ledger.AllUnverifiedTxFiles()
	if err != nil {
		return fmt.Errorf("validator: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}

	validAssetIDs, err := o.ledger.ValidAssetIDs()
	if err != nil {
		return fmt.Errorf("validator: loading valid asset ids: %w", err)
	}

	outcomes := make([]txOutcome, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results, err := o.dispatch(ref, validAssetIDs)
			if err != nil {
				var notReady *TransactionIsNotReadyForValidation
				if errors.As(err, &notReady) {
					return err
				}
				log.Errorw(err, fmt.Sprintf("validating transaction %d", ref.TxID))
			}
			outcomes[i] = txOutcome{txID: ref.TxID, results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("validator: %w", err)
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].txID < outcomes[j].txID })

	if err := o.foldBalances(outcomes); err != nil {
		return fmt.Errorf("validator: %w", err)
	}

	maxTxID := refs[0].TxID
	for _, ref := range refs[1:] {
		if ref.TxID > maxTxID {
			maxTxID = ref.TxID
		}
	}
	if err := o.ledger.SetLastValidatedTxID(maxTxID); err != nil {
		return fmt.Errorf("validator: persisting last validated tx id: %w", err)
	}
	return nil
}

// dispatch classifies ref by its kind and runs the matching validation
// routine, returning the balance-fold deltas a successful (or, for
// transfers, a failed) validation produces.
func (o *Orchestrator) dispatch(ref storage.TxFileRef, validAssetIDs []proofs.AssetID) ([]types.ValidationResult, error) {
	switch ref.Kind {
	case types.TxKindAccount:
		return o.dispatchAccount(ref, validAssetIDs)
	case types.TxKindIssuance:
		return o.dispatchIssuance(ref)
	case types.TxKindTransfer:
		return o.dispatchTransfer(ref)
	default:
		return nil, &TransactionIsNotReadyForValidation{TxID: uint64(ref.TxID)}
	}
}

func (o *Orchestrator) dispatchAccount(ref storage.TxFileRef, validAssetIDs []proofs.AssetID) ([]types.ValidationResult, error) {
	var tx types.PubAccountTx
	if err := o.ledger.LoadTxFile(ref.Filename, &tx); err != nil {
		return nil, fmt.Errorf("loading account tx %d: %w", ref.TxID, err)
	}
	if err := validateAccount(&tx, validAssetIDs); err != nil {
		return nil, err
	}
	if err := o.ledger.SaveObject(&tx.Account); err != nil {
		return nil, fmt.Errorf("persisting account %s: %w", tx.Account.ID, err)
	}
	if err := o.ledger.SaveToFile(types.TxKindAccount, tx.ID, ref.Actor, ref.State, types.TxSubstateValidated, &tx); err != nil {
		return nil, fmt.Errorf("marking account tx %d validated: %w", ref.TxID, err)
	}
	// Account creation has no prior balance to credit or debit: the new
	// PubAccount is already persisted above, so it produces no fold delta.
	return nil, nil
}

func (o *Orchestrator) dispatchIssuance(ref storage.TxFileRef) ([]types.ValidationResult, error) {
	var tx types.JustifiedAssetTx
	if err := o.ledger.LoadTxFile(ref.Filename, &tx); err != nil {
		return nil, fmt.Errorf("loading issuance tx %d: %w", ref.TxID, err)
	}
	issuer, err := o.ledger.LoadObject(tx.Issuer)
	if err != nil {
		return nil, fmt.Errorf("loading issuer %s: %w", tx.Issuer, err)
	}
	if err := validateIssuance(&tx, issuer); err != nil {
		return nil, err
	}
	if err := o.ledger.SaveToFile(types.TxKindIssuance, tx.ID, ref.Actor, ref.State, types.TxSubstateValidated, &tx); err != nil {
		return nil, fmt.Errorf("marking issuance tx %d validated: %w", ref.TxID, err)
	}
	return []types.ValidationResult{{
		TxID:      tx.ID,
		Account:   tx.Issuer,
		Ticker:    tx.Ticker,
		Direction: types.Incoming,
		Amount:    tx.EncIssuedAmount,
	}}, nil
}

func (o *Orchestrator) dispatchTransfer(ref storage.TxFileRef) ([]types.ValidationResult, error) {
	var tx types.JustifiedTransferTx
	if err := o.ledger.LoadTxFile(ref.Filename, &tx); err != nil {
		return nil, fmt.Errorf("loading transfer tx %d: %w", ref.TxID, err)
	}
	sender, err := o.ledger.LoadObject(tx.Sender)
	if err != nil {
		return nil, fmt.Errorf("loading sender %s: %w", tx.Sender, err)
	}
	receiver, err := o.ledger.LoadObject(tx.Receiver)
	if err != nil {
		return nil, fmt.Errorf("loading receiver %s: %w", tx.Receiver, err)
	}

	if err := validateTransfer(o.ledger, &tx, sender, receiver); err != nil {
		// Both legs fail together: no balance is mutated for this transfer.
		return []types.ValidationResult{
			{TxID: tx.ID, Account: tx.Sender, Ticker: tx.Ticker, Direction: types.Outgoing, Failed: true},
			{TxID: tx.ID, Account: tx.Receiver, Ticker: tx.Ticker, Direction: types.Incoming, Failed: true},
		}, err
	}

	if err := o.ledger.SaveToFile(types.TxKindTransfer, tx.ID, ref.Actor, ref.State, types.TxSubstateValidated, &tx); err != nil {
		return nil, fmt.Errorf("marking transfer tx %d validated: %w", ref.TxID, err)
	}

	return []types.ValidationResult{
		{TxID: tx.ID, Account: tx.Sender, Ticker: tx.Ticker, Direction: types.Outgoing, Amount: tx.EncAmountUsingSender},
		{TxID: tx.ID, Account: tx.Receiver, Ticker: tx.Ticker, Direction: types.Incoming, Amount: tx.EncAmountUsingReceiver},
	}, nil
}

// foldBalances groups every non-failed result by (account, ticker) and
// applies its deltas to that account's current enc_balance in one
// load-modify-save step, in the tx_id-sorted order outcomes already
// carries (§4.6 balance folding). Failed results are skipped: they must
// never perturb a balance.
func (o *Orchestrator) foldBalances(outcomes []txOutcome) error {
	type acctKey struct {
		account types.AccountID
		ticker  proofs.AssetID
	}
	deltas := make(map[acctKey][]types.ValidationResult)
	var order []acctKey
	for _, oc := range outcomes {
		for _, r := range oc.results {
			if r.Failed {
				continue
			}
			key := acctKey{account: r.Account, ticker: r.Ticker}
			if _, seen := deltas[key]; !seen {
				order = append(order, key)
			}
			deltas[key] = append(deltas[key], r)
		}
	}

	for _, key := range order {
		acc, err := o.ledger.LoadObject(key.account)
		if err != nil {
			return fmt.Errorf("loading account %s for balance fold: %w", key.account, err)
		}
		balance := acc.EncBalance
		for _, r := range deltas[key] {
			switch r.Direction {
			case types.Incoming:
				balance = elgamal.Add(balance, r.Amount)
			case types.Outgoing:
				balance = elgamal.Sub(balance, r.Amount)
			}
		}
		acc.EncBalance = balance
		if err := o.ledger.SaveObject(acc); err != nil {
			return fmt.Errorf("saving account %s after balance fold: %w", key.account, err)
		}
	}
	return nil
}

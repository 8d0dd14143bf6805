// Package storage implements the ledger object store §6.1 describes as an
// external collaborator: a path-addressed tree rooted at a db.Database,
// namespaced into on-chain account state, off-chain transaction files,
// per-user scratch space, and a common area for ledger-wide markers.
package storage

import (
	"errors"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shieldledger/settlement/crypto/proofs"
	"github.com/shieldledger/settlement/db"
	"github.com/shieldledger/settlement/db/prefixeddb"
	"github.com/shieldledger/settlement/log"
	"github.com/shieldledger/settlement/types"
)

// accountCacheSize bounds the in-memory LRU cache of recently touched
// PubAccounts: validation runs repeatedly re-read the same handful of
// accounts within a batch (sender, receiver, issuer, mediator).
const accountCacheSize = 1024

// Ledger is the object store the validator orchestrator reads from and
// writes to. It assumes read-after-write consistency within a single run,
// per §6.1.
type Ledger struct {
	onChain  db.Database
	offChain db.Database
	users    db.Database
	common   db.Database

	accountCache *lru.Cache[types.AccountID, *types.PubAccount]
}

// New wraps backend in the four namespaces the ledger needs.
func New(backend db.Database) *Ledger {
	cache, err := lru.New[types.AccountID, *types.PubAccount](accountCacheSize)
	if err != nil {
		log.Fatalf("storage: failed to create account cache: %v", err)
	}
	return &Ledger{
		onChain:      prefixeddb.NewPrefixedDatabase(backend, onChainPrefix),
		offChain:     prefixeddb.NewPrefixedDatabase(backend, offChainPrefix),
		users:        prefixeddb.NewPrefixedDatabase(backend, userPrefix),
		common:       prefixeddb.NewPrefixedDatabase(backend, commonPrefix),
		accountCache: cache,
	}
}

// SaveObject persists obj under key in the on-chain namespace, invalidating
// any cached copy. It is the general save_object operation of §6.1,
// specialised to PubAccount since that is the only on-chain artifact kind.
func (l *Ledger) SaveObject(acc *types.PubAccount) error {
	data, err := EncodeArtifact(acc)
	if err != nil {
		return fmt.Errorf("storage: encoding account %s: %w", acc.ID, err)
	}
	tx := l.onChain.WriteTx()
	defer tx.Discard()
	if err := tx.Set(acc.ID[:], data); err != nil {
		return fmt.Errorf("storage: saving account %s: %w", acc.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: committing account %s: %w", acc.ID, err)
	}
	l.accountCache.Add(acc.ID, acc.Clone())
	return nil
}

// LoadObject retrieves the PubAccount persisted under id (load_object).
func (l *Ledger) LoadObject(id types.AccountID) (*types.PubAccount, error) {
	if cached, ok := l.accountCache.Get(id); ok {
		return cached.Clone(), nil
	}
	data, err := l.onChain.Get(id[:])
	if err != nil {
		return nil, fmt.Errorf("storage: loading account %s: %w", id, err)
	}
	acc := new(types.PubAccount)
	if err := DecodeArtifact(data, acc); err != nil {
		return nil, fmt.Errorf("storage: decoding account %s: %w", id, err)
	}
	l.accountCache.Add(id, acc.Clone())
	return acc, nil
}

// TxFileRef identifies a transaction file by the fields its filename
// encodes, without the deserialised payload (AllUnverifiedTxFiles returns
// these; LoadTxFile loads the actual bundle).
type TxFileRef struct {
	Filename string
	Kind     types.TxKind
	TxID     types.TxID
	Actor    types.AccountID
	State    types.TxState
	Substate types.TxSubstate
}

// SaveToFile persists obj (a PubAccountTx, JustifiedAssetTx or
// JustifiedTransferTx) under the filename (tx_id, actor, state, substate)
// encodes, in the off-chain namespace (§6.1 save_to_file). Saving in
// substate Validated also removes the Started file of the same (kind,
// tx_id, actor, state) in the same write, so the transaction leaves the
// ready set.
func (l *Ledger) SaveToFile(kind types.TxKind, txID types.TxID, actor types.AccountID, state types.TxState, substate types.TxSubstate, obj any) error {
	name := FormatTxFilename(kind, txID, actor, state, substate)
	data, err := EncodeArtifact(obj)
	if err != nil {
		return fmt.Errorf("storage: encoding tx file %s: %w", name, err)
	}
	tx := l.offChain.WriteTx()
	defer tx.Discard()
	if err := tx.Set([]byte(name), data); err != nil {
		return fmt.Errorf("storage: saving tx file %s: %w", name, err)
	}
	if substate == types.TxSubstateValidated {
		started := FormatTxFilename(kind, txID, actor, state, types.TxSubstateStarted)
		if err := tx.Delete([]byte(started)); err != nil {
			return fmt.Errorf("storage: removing tx file %s: %w", started, err)
		}
	}
	return tx.Commit()
}

// LoadTxFile deserialises the artifact stored under filename into out.
func (l *Ledger) LoadTxFile(filename string, out any) error {
	data, err := l.offChain.Get([]byte(filename))
	if err != nil {
		return fmt.Errorf("storage: loading tx file %s: %w", filename, err)
	}
	if err := DecodeArtifact(data, out); err != nil {
		return fmt.Errorf("storage: decoding tx file %s: %w", filename, err)
	}
	return nil
}

// AllUnverifiedTxFiles enumerates every off-chain file whose (state,
// substate) is ready for validation (§4.6 main loop, step 1-2), sorted by
// tx_id ascending. Files that fail to parse are reported as errors; per
// §7 this is the one condition that aborts a whole validation run.
func (l *Ledger) AllUnverifiedTxFiles() ([]TxFileRef, error) {
	var refs []TxFileRef
	var parseErr error
	if err := l.offChain.Iterate(nil, func(k, _ []byte) bool {
		kind, txID, actor, state, substate, err := ParseTxFilename(string(k))
		if err != nil {
			parseErr = err
			return false
		}
		if !types.IsReadyForValidation(state, substate) {
			return true
		}
		refs = append(refs, TxFileRef{
			Filename: string(k),
			Kind:     kind,
			TxID:     txID,
			Actor:    actor,
			State:    state,
			Substate: substate,
		})
		return true
	}); err != nil {
		return nil, fmt.Errorf("storage: enumerating off-chain files: %w", err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("storage: unparseable tx file: %w", parseErr)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].TxID < refs[j].TxID })
	return refs, nil
}

// InFlightTransferFilesForSender enumerates every off-chain transfer file
// authored by sender that has not yet reached substate Validated,
// regardless of its TxState — the pool last_ordering_state_before searches
// for the sender's pending-balance computation (§4.6).
func (l *Ledger) InFlightTransferFilesForSender(sender types.AccountID) ([]TxFileRef, error) {
	var refs []TxFileRef
	var parseErr error
	if err := l.offChain.Iterate(nil, func(k, _ []byte) bool {
		kind, txID, actor, state, substate, err := ParseTxFilename(string(k))
		if err != nil {
			parseErr = err
			return false
		}
		if kind != types.TxKindTransfer || actor != sender || substate != types.TxSubstateStarted {
			return true
		}
		refs = append(refs, TxFileRef{
			Filename: string(k),
			Kind:     kind,
			TxID:     txID,
			Actor:    actor,
			State:    state,
			Substate: substate,
		})
		return true
	}); err != nil {
		return nil, fmt.Errorf("storage: enumerating in-flight transfers for %s: %w", sender, err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("storage: unparseable tx file: %w", parseErr)
	}
	return refs, nil
}

// LastValidatedTxID returns the largest tx_id the validator has ever
// committed, or 0 if the ledger has never run a validation pass.
func (l *Ledger) LastValidatedTxID() (types.TxID, error) {
	data, err := l.common.Get(commonKeyLastValidatedTxID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("storage: loading last validated tx id: %w", err)
	}
	var id uint64
	if err := DecodeArtifact(data, &id); err != nil {
		return 0, fmt.Errorf("storage: decoding last validated tx id: %w", err)
	}
	return types.TxID(id), nil
}

// SetLastValidatedTxID persists LAST_VALIDATED_TX_ID (§6.5 item iii). The
// validator calls this only after every other write of a batch commits, so
// a crash mid-batch is recoverable by re-running validation.
func (l *Ledger) SetLastValidatedTxID(id types.TxID) error {
	data, err := EncodeArtifact(uint64(id))
	if err != nil {
		return fmt.Errorf("storage: encoding last validated tx id: %w", err)
	}
	tx := l.common.WriteTx()
	defer tx.Discard()
	if err := tx.Set(commonKeyLastValidatedTxID, data); err != nil {
		return fmt.Errorf("storage: saving last validated tx id: %w", err)
	}
	return tx.Commit()
}

// ValidAssetIDs returns the ledger-wide set of asset ids account-creation
// membership proofs are checked against.
func (l *Ledger) ValidAssetIDs() ([]proofs.AssetID, error) {
	data, err := l.common.Get(commonKeyValidAssetIDs)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: loading valid asset ids: %w", err)
	}
	var ids []proofs.AssetID
	if err := DecodeArtifact(data, &ids); err != nil {
		return nil, fmt.Errorf("storage: decoding valid asset ids: %w", err)
	}
	return ids, nil
}

// SetValidAssetIDs replaces the ledger-wide set of valid asset ids.
func (l *Ledger) SetValidAssetIDs(ids []proofs.AssetID) error {
	data, err := EncodeArtifact(ids)
	if err != nil {
		return fmt.Errorf("storage: encoding valid asset ids: %w", err)
	}
	tx := l.common.WriteTx()
	defer tx.Discard()
	if err := tx.Set(commonKeyValidAssetIDs, data); err != nil {
		return fmt.Errorf("storage: saving valid asset ids: %w", err)
	}
	return tx.Commit()
}

// UserWriteTx opens a write transaction scoped to user's per-user
// namespace, for operator/mediator tooling that stages justification
// material outside the off-chain pipeline.
func (l *Ledger) UserWriteTx(user types.AccountID) db.WriteTx {
	return prefixeddb.NewPrefixedDatabase(l.users, user[:]).WriteTx()
}

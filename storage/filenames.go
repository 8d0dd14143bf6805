package storage

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/shieldledger/settlement/types"
)

// txFilenameFields is the number of underscore-separated fields a
// tx filename carries: tx_id, kind, actor, state, substate (§6.3).
const txFilenameFields = 5

// FormatTxFilename encodes (tx_id, actor, state) — plus the kind needed to
// deserialise the right Go type and the substate the validator transitions
// through — into the filename template each transaction kind uses under
// the off-chain namespace. The zero-padded tx_id keeps filenames in
// ascending tx_id order under db.Database.Iterate.
func FormatTxFilename(kind types.TxKind, txID types.TxID, actor types.AccountID, state types.TxState, substate types.TxSubstate) string {
	return fmt.Sprintf("%020d_%s_%s_%s_%s",
		uint64(txID), kind, hex.EncodeToString(actor[:]), state, substate)
}

// ParseTxFilename is the sole producer of (tx_id, user, state, path)
// tuples from a raw off-chain filename (§6.3).
func ParseTxFilename(name string) (kind types.TxKind, txID types.TxID, actor types.AccountID, state types.TxState, substate types.TxSubstate, err error) {
	fields := strings.Split(name, "_")
	if len(fields) != txFilenameFields {
		err = fmt.Errorf("storage: malformed tx filename %q: expected %d fields, got %d", name, txFilenameFields, len(fields))
		return
	}

	id, perr := strconv.ParseUint(fields[0], 10, 64)
	if perr != nil {
		err = fmt.Errorf("storage: malformed tx filename %q: bad tx id: %w", name, perr)
		return
	}
	txID = types.TxID(id)

	if kind, err = parseTxKind(fields[1]); err != nil {
		err = fmt.Errorf("storage: malformed tx filename %q: %w", name, err)
		return
	}

	actorBytes, perr := hex.DecodeString(fields[2])
	if perr != nil || len(actorBytes) != len(actor) {
		err = fmt.Errorf("storage: malformed tx filename %q: bad actor", name)
		return
	}
	copy(actor[:], actorBytes)

	if state, err = parseTxState(fields[3]); err != nil {
		err = fmt.Errorf("storage: malformed tx filename %q: %w", name, err)
		return
	}
	if substate, err = parseTxSubstate(fields[4]); err != nil {
		err = fmt.Errorf("storage: malformed tx filename %q: %w", name, err)
		return
	}
	return
}

func parseTxKind(s string) (types.TxKind, error) {
	switch s {
	case types.TxKindAccount.String():
		return types.TxKindAccount, nil
	case types.TxKindIssuance.String():
		return types.TxKindIssuance, nil
	case types.TxKindTransfer.String():
		return types.TxKindTransfer, nil
	default:
		return 0, fmt.Errorf("unknown tx kind %q", s)
	}
}

func parseTxState(s string) (types.TxState, error) {
	for _, state := range []types.TxState{
		types.TxStateAccountCreation,
		types.TxStateJustification,
		types.TxStateInitialisation,
		types.TxStateFinalisation,
	} {
		if state.String() == s {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown tx state %q", s)
}

func parseTxSubstate(s string) (types.TxSubstate, error) {
	switch s {
	case types.TxSubstateStarted.String():
		return types.TxSubstateStarted, nil
	case types.TxSubstateValidated.String():
		return types.TxSubstateValidated, nil
	default:
		return 0, fmt.Errorf("unknown tx substate %q", s)
	}
}

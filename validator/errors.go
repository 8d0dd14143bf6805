package validator

import "fmt"

// TransactionIsNotReadyForValidation reports that the orchestrator was
// asked to dispatch a transaction file whose (state, substate) is not a
// justified Started substate — a defensive check against storage's own
// readiness filter, since the spec calls this out as a distinct error tag.
type TransactionIsNotReadyForValidation struct {
	TxID uint64
}

func (e *TransactionIsNotReadyForValidation) Error() string {
	return fmt.Sprintf("validator: transaction %d is not ready for validation", e.TxID)
}

// LibraryError wraps an error raised by a cryptographic library (a proof
// verification failure, a mediator signature mismatch) at the validator
// boundary, so callers can distinguish "the proof said no" from an object
// store or I/O failure without inspecting error strings.
type LibraryError struct {
	Err error
}

func (e *LibraryError) Error() string {
	return fmt.Sprintf("validator: %v", e.Err)
}

func (e *LibraryError) Unwrap() error {
	return e.Err
}

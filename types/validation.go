package types

import "github.com/shieldledger/settlement/crypto/elgamal"

// Direction is which side of a validated transfer or issuance an account
// sits on: the amount is added to the account's balance on Incoming, and
// subtracted on Outgoing (§4.6 balance folding).
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// ValidationResult is the ephemeral, per-run output of validating one leg
// of a transaction: which account, which ticker, which direction, and the
// ciphertext amount to fold into that account's balance. Amount is the
// zero value (and Failed is true) iff validation failed for that leg — a
// failed result must never perturb any account's balance.
type ValidationResult struct {
	TxID      TxID
	Account   AccountID
	Ticker    AssetID
	Direction Direction
	Amount    elgamal.Ciphertext
	Failed    bool
}

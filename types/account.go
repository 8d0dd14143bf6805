package types

import (
	"encoding/hex"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/ristretto"
	"github.com/shieldledger/settlement/mediator"
)

// AccountID identifies a ledger account: one per (user, ticker) pair. It is
// the key under which a PubAccount is persisted in the on-chain storage
// namespace (§6.1).
type AccountID [20]byte

// String returns the hexadecimal representation of id.
func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}

// AccountMemo is the off-chain metadata kept alongside a PubAccount: the
// public key of the mediator whose signatures the validator checks on the
// account's issuances and transfers, and the display ticker. It never
// participates in a proof; it is informational sidecar data the validator
// persists unchanged once an account is created.
type AccountMemo struct {
	Ticker      AssetID
	MediatorKey mediator.PublicKey
}

// PubAccount is the public, persisted state of a confidential account: its
// encrypted asset id, its encrypted balance, and its memo. Mutated only by
// the validator's balance-folding step (§4.6).
type PubAccount struct {
	ID         AccountID
	PublicKey  *ristretto.Point
	EncAssetID elgamal.Ciphertext
	EncBalance elgamal.Ciphertext
	Memo       AccountMemo
}

// Clone returns a deep copy of a, safe to mutate independently.
func (a *PubAccount) Clone() *PubAccount {
	clone := *a
	clone.PublicKey = ristretto.NewPoint().Add(a.PublicKey, ristretto.NewPoint())
	clone.EncAssetID = elgamal.Ciphertext{
		X: ristretto.NewPoint().Add(a.EncAssetID.X, ristretto.NewPoint()),
		Y: ristretto.NewPoint().Add(a.EncAssetID.Y, ristretto.NewPoint()),
	}
	clone.EncBalance = elgamal.Ciphertext{
		X: ristretto.NewPoint().Add(a.EncBalance.X, ristretto.NewPoint()),
		Y: ristretto.NewPoint().Add(a.EncBalance.Y, ristretto.NewPoint()),
	}
	return &clone
}

package storage

// Namespace prefixes partition the single underlying db.Database into the
// four top-level areas §6.1 describes: on-chain account state, off-chain
// transaction files awaiting or past validation, per-user scratch space,
// and a common area for ledger-wide markers (the valid asset-id set, the
// last-validated transaction id).
var (
	onChainPrefix  = []byte("on-chain/")
	offChainPrefix = []byte("off-chain/")
	userPrefix     = []byte("user/")
	commonPrefix   = []byte("common/")
)

// commonKeyValidAssetIDs is the fixed key under the common namespace
// holding the ledger-wide set of valid asset ids account-creation
// membership proofs are checked against.
var commonKeyValidAssetIDs = []byte("valid-asset-ids")

// commonKeyLastValidatedTxID is the fixed key under the common namespace
// holding LAST_VALIDATED_TX_ID (§6.5).
var commonKeyLastValidatedTxID = []byte("last-validated-tx-id")

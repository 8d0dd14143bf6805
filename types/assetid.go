package types

import "github.com/shieldledger/settlement/crypto/proofs"

// AssetID identifies a ticker/asset class; see crypto/proofs.AssetID for
// why it's defined there rather than here.
type AssetID = proofs.AssetID

// ContainsAssetID reports whether id appears in set.
func ContainsAssetID(set []AssetID, id AssetID) bool {
	return proofs.ContainsAssetID(set, id)
}

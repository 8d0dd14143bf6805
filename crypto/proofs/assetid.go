package proofs

import "encoding/hex"

// AssetID identifies a ticker/asset class. Membership proofs (§4.6 account
// validation) prove that an account's encrypted asset id is drawn from a
// set of AssetIDs, without revealing which. It lives in crypto/proofs
// rather than types so that MembershipProof's contract has no dependency
// on the domain types package (which in turn depends on crypto/proofs for
// the proof interfaces it embeds).
type AssetID [16]byte

// String returns the hexadecimal representation of id.
func (id AssetID) String() string {
	return hex.EncodeToString(id[:])
}

// ContainsAssetID reports whether id appears in set.
func ContainsAssetID(set []AssetID, id AssetID) bool {
	for _, candidate := range set {
		if candidate == id {
			return true
		}
	}
	return false
}

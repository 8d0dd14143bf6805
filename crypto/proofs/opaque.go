package proofs

import (
	"fmt"
	"sync"

	"github.com/shieldledger/settlement/crypto/elgamal"
	"github.com/shieldledger/settlement/crypto/ristretto"
)

// The four black-box contracts of §2 item 6 (range, membership,
// wellformedness, key-equality) have no concrete construction in this
// toolkit, so a transaction field typed as the bare interface cannot be
// decoded back from storage: CBOR has nothing to tell it which concrete
// Go type to allocate behind the interface. Opaque{Range,Membership,
// Wellformedness,KeyEquality}Proof are the storage envelope used instead —
// a scheme name plus whatever bytes the prover that built it produced —
// with verification dispatched to a handler registered for that scheme,
// the same way curves.New (_examples/.../crypto/ecc/curves/curves.go)
// selects a concrete ecc.Point implementation by a type string. Tests
// register a "stub" scheme; a real deployment would register whatever
// range/membership/wellformedness/key-equality backend it actually runs.

// OpaqueRangeProof is the RangeProof envelope persisted in transactions.
type OpaqueRangeProof struct {
	Scheme  string
	Payload []byte
}

var _ RangeProof = (*OpaqueRangeProof)(nil)

var (
	rangeVerifiersMu sync.RWMutex
	rangeVerifiers   = map[string]func(payload []byte, ciphertext elgamal.Ciphertext, bits int) error{}
)

// RegisterRangeVerifier installs the verification routine run for proofs
// tagged with scheme, overwriting any previous registration.
func RegisterRangeVerifier(scheme string, verify func(payload []byte, ciphertext elgamal.Ciphertext, bits int) error) {
	rangeVerifiersMu.Lock()
	defer rangeVerifiersMu.Unlock()
	rangeVerifiers[scheme] = verify
}

// Verify dispatches to the verifier registered for p.Scheme.
func (p *OpaqueRangeProof) Verify(ciphertext elgamal.Ciphertext, bits int) error {
	rangeVerifiersMu.RLock()
	verify, ok := rangeVerifiers[p.Scheme]
	rangeVerifiersMu.RUnlock()
	if !ok {
		return fmt.Errorf("proofs: no range proof verifier registered for scheme %q", p.Scheme)
	}
	return verify(p.Payload, ciphertext, bits)
}

// OpaqueMembershipProof is the MembershipProof envelope persisted in
// transactions.
type OpaqueMembershipProof struct {
	Scheme  string
	Payload []byte
}

var _ MembershipProof = (*OpaqueMembershipProof)(nil)

var (
	membershipVerifiersMu sync.RWMutex
	membershipVerifiers   = map[string]func(payload []byte, ciphertext elgamal.Ciphertext, validSet []AssetID) error{}
)

// RegisterMembershipVerifier installs the verification routine run for
// proofs tagged with scheme, overwriting any previous registration.
func RegisterMembershipVerifier(scheme string, verify func(payload []byte, ciphertext elgamal.Ciphertext, validSet []AssetID) error) {
	membershipVerifiersMu.Lock()
	defer membershipVerifiersMu.Unlock()
	membershipVerifiers[scheme] = verify
}

// Verify dispatches to the verifier registered for p.Scheme.
func (p *OpaqueMembershipProof) Verify(ciphertext elgamal.Ciphertext, validSet []AssetID) error {
	membershipVerifiersMu.RLock()
	verify, ok := membershipVerifiers[p.Scheme]
	membershipVerifiersMu.RUnlock()
	if !ok {
		return fmt.Errorf("proofs: no membership proof verifier registered for scheme %q", p.Scheme)
	}
	return verify(p.Payload, ciphertext, validSet)
}

// OpaqueWellformednessProof is the WellformednessProof envelope persisted
// in transactions.
type OpaqueWellformednessProof struct {
	Scheme  string
	Payload []byte
}

var _ WellformednessProof = (*OpaqueWellformednessProof)(nil)

var (
	wellformednessVerifiersMu sync.RWMutex
	wellformednessVerifiers   = map[string]func(payload []byte, ciphertext elgamal.Ciphertext) error{}
)

// RegisterWellformednessVerifier installs the verification routine run for
// proofs tagged with scheme, overwriting any previous registration.
func RegisterWellformednessVerifier(scheme string, verify func(payload []byte, ciphertext elgamal.Ciphertext) error) {
	wellformednessVerifiersMu.Lock()
	defer wellformednessVerifiersMu.Unlock()
	wellformednessVerifiers[scheme] = verify
}

// Verify dispatches to the verifier registered for p.Scheme.
func (p *OpaqueWellformednessProof) Verify(ciphertext elgamal.Ciphertext) error {
	wellformednessVerifiersMu.RLock()
	verify, ok := wellformednessVerifiers[p.Scheme]
	wellformednessVerifiersMu.RUnlock()
	if !ok {
		return fmt.Errorf("proofs: no wellformedness proof verifier registered for scheme %q", p.Scheme)
	}
	return verify(p.Payload, ciphertext)
}

// OpaqueKeyEqualityProof is the KeyEqualityProof envelope persisted in
// transactions.
type OpaqueKeyEqualityProof struct {
	Scheme  string
	Payload []byte
}

var _ KeyEqualityProof = (*OpaqueKeyEqualityProof)(nil)

var (
	keyEqualityVerifiersMu sync.RWMutex
	keyEqualityVerifiers   = map[string]func(payload []byte, sender, receiver elgamal.Ciphertext, pubSender, pubReceiver *ristretto.Point) error{}
)

// RegisterKeyEqualityVerifier installs the verification routine run for
// proofs tagged with scheme, overwriting any previous registration.
func RegisterKeyEqualityVerifier(scheme string, verify func(payload []byte, sender, receiver elgamal.Ciphertext, pubSender, pubReceiver *ristretto.Point) error) {
	keyEqualityVerifiersMu.Lock()
	defer keyEqualityVerifiersMu.Unlock()
	keyEqualityVerifiers[scheme] = verify
}

// Verify dispatches to the verifier registered for p.Scheme.
func (p *OpaqueKeyEqualityProof) Verify(sender, receiver elgamal.Ciphertext, pubSender, pubReceiver *ristretto.Point) error {
	keyEqualityVerifiersMu.RLock()
	verify, ok := keyEqualityVerifiers[p.Scheme]
	keyEqualityVerifiersMu.RUnlock()
	if !ok {
		return fmt.Errorf("proofs: no key-equality proof verifier registered for scheme %q", p.Scheme)
	}
	return verify(p.Payload, sender, receiver, pubSender, pubReceiver)
}

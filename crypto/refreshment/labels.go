package refreshment

// Domain-separation labels. These are consensus-critical: changing any one
// of them invalidates every proof produced under the old label.
const (
	// ProtocolLabel seeds the top-level transcript for this proof type.
	ProtocolLabel = "shieldledger-settlement/CiphertextRefreshment/v1"
	// DomainSeparatorLabel is absorbed before the initial message, as
	// required by the protocol description in §4.5.
	DomainSeparatorLabel = "CipherTextRefreshmentChallenge"
	// LabelA and LabelB name the two commitment points of the initial
	// message.
	LabelA = "A"
	LabelB = "B"
	// ChallengeLabel names the squeezed challenge scalar.
	ChallengeLabel = "c"
	// WitnessLabel rekeys the transcript-derived nonce RNG with the
	// witness scalar s.
	WitnessLabel = "witness-s"
)

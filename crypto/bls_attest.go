// BLS attestation backends for sequencer batch submissions.
//
// AttestationBackend abstracts signature verification so the sequencer core
// can require a BLS attestation from the submitting sequencer without caring
// about the curve library. The default backend is a deterministic pure-Go
// placeholder whose attestations can be constructed in tests; the production
// backend wraps supranational/blst and is selected with the `blst` build tag.
package crypto

import "errors"

// Attestation sizes for the MinPk scheme (public keys in G1, signatures in G2).
const (
	AttestPubkeySize = 48
	AttestSigSize    = 96
)

// Attestation errors.
var (
	ErrAttestBadPubkeySize = errors.New("bls_attest: public key must be 48 bytes")
	ErrAttestBadSigSize    = errors.New("bls_attest: signature has wrong length")
	ErrAttestEmptyMessage  = errors.New("bls_attest: message is empty")
)

// AttestationBackend verifies an attestation signature over a message.
type AttestationBackend interface {
	// Name returns a human-readable identifier for the backend.
	Name() string

	// VerifyAttestation reports whether sig is a valid attestation over msg
	// by the holder of pubkey. Malformed inputs return an error; a
	// well-formed but wrong signature returns (false, nil).
	VerifyAttestation(pubkey, msg, sig []byte) (bool, error)
}

// HashAttestationBackend is the pure-Go placeholder backend. An attestation
// is valid when sig == Keccak256(pubkey || msg), letting tests construct
// valid attestations without key material. Not a real signature scheme.
type HashAttestationBackend struct{}

// Name returns the backend identifier.
func (HashAttestationBackend) Name() string { return "hash-placeholder" }

// VerifyAttestation checks the deterministic placeholder attestation.
func (HashAttestationBackend) VerifyAttestation(pubkey, msg, sig []byte) (bool, error) {
	if len(pubkey) != AttestPubkeySize {
		return false, ErrAttestBadPubkeySize
	}
	if len(msg) == 0 {
		return false, ErrAttestEmptyMessage
	}
	if len(sig) != 32 {
		return false, ErrAttestBadSigSize
	}
	expected := Keccak256(pubkey, msg)
	for i := range sig {
		if sig[i] != expected[i] {
			return false, nil
		}
	}
	return true, nil
}

// HashAttestation produces the placeholder attestation for pubkey and msg.
// Only meaningful with HashAttestationBackend.
func HashAttestation(pubkey, msg []byte) []byte {
	return Keccak256(pubkey, msg)
}

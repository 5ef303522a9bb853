// attest.go adds optional BLS attestation of batch submissions: when a
// registry is configured, every submission must carry a signature by the
// submitter's registered key over the batch commitment.
package sequencer

import (
	"sync"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// AttestationRegistry maps sequencer addresses to their attestation public
// keys and verifies submission attestations through a pluggable backend.
type AttestationRegistry struct {
	mu      sync.RWMutex
	backend crypto.AttestationBackend
	keys    map[types.Address][]byte
}

// NewAttestationRegistry creates a registry over the given backend.
func NewAttestationRegistry(backend crypto.AttestationBackend) *AttestationRegistry {
	return &AttestationRegistry{
		backend: backend,
		keys:    make(map[types.Address][]byte),
	}
}

// RegisterKey associates an attestation public key with a sequencer address,
// replacing any previous key.
func (r *AttestationRegistry) RegisterKey(addr types.Address, pubkey []byte) error {
	if len(pubkey) != crypto.AttestPubkeySize {
		return crypto.ErrAttestBadPubkeySize
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[addr] = append([]byte(nil), pubkey...)
	return nil
}

// KeyOf returns the registered public key for the address, if any.
func (r *AttestationRegistry) KeyOf(addr types.Address) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[addr]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), key...), true
}

// VerifySubmission checks an attestation over a batch commitment by the
// submitter's registered key.
func (r *AttestationRegistry) VerifySubmission(submitter types.Address, msg, sig []byte) error {
	r.mu.RLock()
	key, ok := r.keys[submitter]
	r.mu.RUnlock()

	if !ok {
		return ErrNoAttestationKey
	}
	if len(sig) == 0 {
		return ErrAttestationMissing
	}

	valid, err := r.backend.VerifyAttestation(key, msg, sig)
	if err != nil || !valid {
		return ErrInvalidAttestation
	}
	return nil
}

// AttestationMessage is the commitment a sequencer attests when submitting a
// batch: Keccak256(txSetHash || newStateRoot).
func AttestationMessage(txSetHash, newStateRoot types.Hash) []byte {
	return crypto.Keccak256(txSetHash[:], newStateRoot[:])
}

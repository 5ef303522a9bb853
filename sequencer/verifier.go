// verifier.go defines the proof verifier capability for validity-mode
// batches. The sequencer core has no opinion on the proving scheme; it
// requires a fixed proof size, a boolean verdict, and fail-closed behaviour.
package sequencer

import (
	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// ProofVerifier decides whether a proof attests the transition
// (prevRoot -> newRoot, withdrawalRoot). Implementations must fail closed:
// any verifier error rejects the submission, never default-accepts.
type ProofVerifier interface {
	// Name returns a human-readable identifier for the verifier.
	Name() string

	// ProofSize returns the exact proof byte length this verifier accepts,
	// used for cheap rejection of malformed proofs before verification.
	ProofSize() int

	// Verify reports whether the proof is valid for the transition.
	Verify(proof []byte, prevRoot, newRoot, withdrawalRoot types.Hash) (bool, error)
}

// CommitmentProofSize is the proof length accepted by CommitmentVerifier.
const CommitmentProofSize = 64

// CommitmentVerifier is the default verifier. It checks a deterministic
// Keccak256 commitment binding the transition, allowing valid proofs to be
// constructed in tests. In production a zero-knowledge verifier replaces it
// through the admin capability.
type CommitmentVerifier struct{}

// Name returns the verifier identifier.
func (CommitmentVerifier) Name() string { return "keccak-commitment" }

// ProofSize returns the fixed commitment proof length.
func (CommitmentVerifier) ProofSize() int { return CommitmentProofSize }

// Verify checks the two-stage commitment: the first half must bind the
// transition, the second half must bind the first.
func (CommitmentVerifier) Verify(proof []byte, prevRoot, newRoot, withdrawalRoot types.Hash) (bool, error) {
	if len(proof) != CommitmentProofSize {
		return false, ErrInvalidProofSize
	}

	binding := crypto.Keccak256(prevRoot[:], newRoot[:], withdrawalRoot[:])
	chain := crypto.Keccak256(binding)

	for i := 0; i < 32; i++ {
		if proof[i] != binding[i] || proof[32+i] != chain[i] {
			return false, nil
		}
	}
	return true, nil
}

// BuildCommitmentProof constructs the proof CommitmentVerifier accepts for a
// transition. Used by honest provers and tests.
func BuildCommitmentProof(prevRoot, newRoot, withdrawalRoot types.Hash) []byte {
	binding := crypto.Keccak256(prevRoot[:], newRoot[:], withdrawalRoot[:])
	chain := crypto.Keccak256(binding)

	proof := make([]byte, 0, CommitmentProofSize)
	proof = append(proof, binding...)
	proof = append(proof, chain...)
	return proof
}

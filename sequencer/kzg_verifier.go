//go:build goethkzg

// Real KZG-backed proof verifier wrapping crate-crypto/go-eth-kzg.
//
// The proof encodes a KZG commitment, a claimed evaluation, and an opening
// proof: [commitment(48)] [y(32)] [opening(48)]. The evaluation point z is
// derived from the transition so the opening binds the proof to the exact
// (prevRoot -> newRoot, withdrawalRoot) triple being attested.
//
// Build with: go build -tags goethkzg ./...
// Test with:  go test -tags goethkzg ./sequencer/ -run KZG
package sequencer

import (
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// KZG proof layout.
const (
	kzgCommitmentSize = 48
	kzgScalarSize     = 32
	kzgOpeningSize    = 48

	// KZGProofSize is the total proof length accepted by KZGVerifier.
	KZGProofSize = kzgCommitmentSize + kzgScalarSize + kzgOpeningSize
)

// KZGVerifier verifies validity proofs as KZG point openings using the
// Ethereum ceremony trusted setup.
type KZGVerifier struct {
	ctx *goethkzg.Context
}

// Compile-time interface check.
var _ ProofVerifier = (*KZGVerifier)(nil)

// NewKZGVerifier initializes a verifier with the embedded Ethereum KZG
// ceremony trusted setup. Initialization processes the SRS points and takes
// a few seconds.
func NewKZGVerifier() (*KZGVerifier, error) {
	ctx, err := goethkzg.NewContext4096Secure()
	if err != nil {
		return nil, fmt.Errorf("kzg verifier: context init failed: %w", err)
	}
	return &KZGVerifier{ctx: ctx}, nil
}

// Name returns the verifier identifier.
func (v *KZGVerifier) Name() string { return "go-eth-kzg" }

// ProofSize returns the fixed KZG proof length.
func (v *KZGVerifier) ProofSize() int { return KZGProofSize }

// Verify checks the KZG opening at the transition-derived evaluation point.
func (v *KZGVerifier) Verify(proof []byte, prevRoot, newRoot, withdrawalRoot types.Hash) (bool, error) {
	if len(proof) != KZGProofSize {
		return false, ErrInvalidProofSize
	}

	var commitment goethkzg.KZGCommitment
	copy(commitment[:], proof[:kzgCommitmentSize])

	var y goethkzg.Scalar
	copy(y[:], proof[kzgCommitmentSize:kzgCommitmentSize+kzgScalarSize])

	var opening goethkzg.KZGProof
	copy(opening[:], proof[kzgCommitmentSize+kzgScalarSize:])

	z := kzgEvaluationPoint(prevRoot, newRoot, withdrawalRoot)

	if err := v.ctx.VerifyKZGProof(commitment, z, y, opening); err != nil {
		return false, nil
	}
	return true, nil
}

// kzgEvaluationPoint derives the evaluation point from the transition. The
// top byte is cleared so the scalar is canonical (below the BLS modulus).
func kzgEvaluationPoint(prevRoot, newRoot, withdrawalRoot types.Hash) goethkzg.Scalar {
	digest := crypto.Keccak256(prevRoot[:], newRoot[:], withdrawalRoot[:])

	var z goethkzg.Scalar
	copy(z[:], digest)
	z[0] = 0
	return z
}

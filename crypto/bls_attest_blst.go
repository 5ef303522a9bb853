//go:build blst

// Real BLS12-381 attestation backend using the supranational/blst library.
//
// Implements the MinPk scheme used by Ethereum: public keys are 48-byte
// compressed G1 points, signatures are 96-byte compressed G2 points, with
// the standard proof-of-possession DST.
//
// Build with: go build -tags blst
// Test with:  go test -tags blst ./crypto/ -run Blst
package crypto

import (
	blst "github.com/supranational/blst/bindings/go"
)

// blstAttestDST is the domain separation tag for attestation signatures.
var blstAttestDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// BlstAttestationBackend verifies attestations with supranational/blst.
type BlstAttestationBackend struct{}

// Compile-time interface check.
var _ AttestationBackend = BlstAttestationBackend{}

// Name returns the backend identifier.
func (BlstAttestationBackend) Name() string { return "blst" }

// VerifyAttestation verifies a MinPk BLS signature over msg.
func (BlstAttestationBackend) VerifyAttestation(pubkey, msg, sig []byte) (bool, error) {
	if len(pubkey) != AttestPubkeySize {
		return false, ErrAttestBadPubkeySize
	}
	if len(msg) == 0 {
		return false, ErrAttestEmptyMessage
	}
	if len(sig) != AttestSigSize {
		return false, ErrAttestBadSigSize
	}

	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil || !pk.KeyValidate() {
		return false, nil
	}
	signature := new(blst.P2Affine).Uncompress(sig)
	if signature == nil {
		return false, nil
	}

	return signature.Verify(true, pk, false, blst.Message(msg), blstAttestDST), nil
}

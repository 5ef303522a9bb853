package sequencer

import (
	"bytes"
	"testing"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

func testAttestKey() []byte {
	key := make([]byte, crypto.AttestPubkeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func TestAttestationRegistry(t *testing.T) {
	reg := NewAttestationRegistry(crypto.HashAttestationBackend{})
	key := testAttestKey()

	if err := reg.RegisterKey(sequencerAddr, key); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := reg.KeyOf(sequencerAddr)
	if !ok || !bytes.Equal(got, key) {
		t.Fatal("registered key not returned")
	}

	msg := AttestationMessage(crypto.Keccak256Hash([]byte("txs")), crypto.Keccak256Hash([]byte("root")))
	sig := crypto.HashAttestation(key, msg)
	if err := reg.VerifySubmission(sequencerAddr, msg, sig); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestAttestationRejections(t *testing.T) {
	reg := NewAttestationRegistry(crypto.HashAttestationBackend{})
	key := testAttestKey()
	reg.RegisterKey(sequencerAddr, key)

	msg := AttestationMessage(types.Hash{}, types.Hash{})
	sig := crypto.HashAttestation(key, msg)

	if err := reg.VerifySubmission(challengerAdr, msg, sig); err != ErrNoAttestationKey {
		t.Fatalf("expected ErrNoAttestationKey, got %v", err)
	}
	if err := reg.VerifySubmission(sequencerAddr, msg, nil); err != ErrAttestationMissing {
		t.Fatalf("expected ErrAttestationMissing, got %v", err)
	}

	bad := append([]byte(nil), sig...)
	bad[0] ^= 0x01
	if err := reg.VerifySubmission(sequencerAddr, msg, bad); err != ErrInvalidAttestation {
		t.Fatalf("expected ErrInvalidAttestation, got %v", err)
	}

	// A backend error (malformed signature length) also rejects.
	if err := reg.VerifySubmission(sequencerAddr, msg, []byte{0x01}); err != ErrInvalidAttestation {
		t.Fatalf("expected ErrInvalidAttestation, got %v", err)
	}
}

func TestAttestationRegisterBadKey(t *testing.T) {
	reg := NewAttestationRegistry(crypto.HashAttestationBackend{})

	if err := reg.RegisterKey(sequencerAddr, []byte{0x01}); err != crypto.ErrAttestBadPubkeySize {
		t.Fatalf("expected ErrAttestBadPubkeySize, got %v", err)
	}
	if _, ok := reg.KeyOf(sequencerAddr); ok {
		t.Fatal("rejected key must not be stored")
	}
}

func TestAttestationKeyReplacement(t *testing.T) {
	reg := NewAttestationRegistry(crypto.HashAttestationBackend{})
	key1 := testAttestKey()
	key2 := append([]byte(nil), key1...)
	key2[0] = 0xff

	reg.RegisterKey(sequencerAddr, key1)
	reg.RegisterKey(sequencerAddr, key2)

	msg := AttestationMessage(types.Hash{}, types.Hash{})
	if err := reg.VerifySubmission(sequencerAddr, msg, crypto.HashAttestation(key1, msg)); err != ErrInvalidAttestation {
		t.Fatalf("old key must stop verifying, got %v", err)
	}
	if err := reg.VerifySubmission(sequencerAddr, msg, crypto.HashAttestation(key2, msg)); err != nil {
		t.Fatalf("new key must verify: %v", err)
	}
}

package crypto

import (
	"encoding/hex"
	"testing"
)

func TestKeccak256KnownVector(t *testing.T) {
	// Keccak256 of the empty input.
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := hex.EncodeToString(Keccak256()); got != want {
		t.Fatalf("empty input: got %s", got)
	}

	// Keccak256("abc").
	want = "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"
	if got := hex.EncodeToString(Keccak256([]byte("abc"))); got != want {
		t.Fatalf("abc: got %s", got)
	}
}

func TestKeccak256Concatenates(t *testing.T) {
	whole := Keccak256([]byte("hello world"))
	split := Keccak256([]byte("hello "), []byte("world"))

	for i := range whole {
		if whole[i] != split[i] {
			t.Fatal("split input must hash like the concatenation")
		}
	}

	h := Keccak256Hash([]byte("hello "), []byte("world"))
	if hex.EncodeToString(h[:]) != hex.EncodeToString(whole) {
		t.Fatal("Keccak256Hash must agree with Keccak256")
	}
}

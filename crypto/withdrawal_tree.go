// withdrawal_tree.go implements the Merkle commitment over withdrawal leaves
// that a batch publishes as its withdrawal root, together with inclusion
// proof generation and verification.
//
// Sibling pairing uses canonical ordering: at every level the byte-wise
// smaller node is hashed first. A proof is therefore just the list of sibling
// hashes with no direction bits, and verification is a deterministic fold.
package crypto

import (
	"bytes"
	"errors"

	"github.com/l2seq/l2seq/core/types"
)

// Withdrawal tree errors.
var (
	ErrWithdrawalTreeEmpty    = errors.New("withdrawal_tree: no leaves")
	ErrWithdrawalTreeBadIndex = errors.New("withdrawal_tree: leaf index out of range")
)

// WithdrawalTree is an immutable Merkle tree over withdrawal leaf hashes.
// levels[0] holds the leaves; levels[len-1] holds the single root.
type WithdrawalTree struct {
	levels [][]types.Hash
}

// NewWithdrawalTree builds a tree over the given leaf hashes. A level with an
// odd node count promotes its last node unchanged to the next level.
func NewWithdrawalTree(leaves []types.Hash) (*WithdrawalTree, error) {
	if len(leaves) == 0 {
		return nil, ErrWithdrawalTreeEmpty
	}

	level := make([]types.Hash, len(leaves))
	copy(level, leaves)

	levels := [][]types.Hash{level}
	for len(level) > 1 {
		next := make([]types.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, HashSiblings(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &WithdrawalTree{levels: levels}, nil
}

// Root returns the Merkle root of the tree.
func (t *WithdrawalTree) Root() types.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// LeafCount returns the number of leaves in the tree.
func (t *WithdrawalTree) LeafCount() int {
	return len(t.levels[0])
}

// Prove returns the inclusion proof for the leaf at the given index: the
// sibling hashes from the leaf level up to (but excluding) the root. Levels
// where the node has no sibling contribute nothing to the proof.
func (t *WithdrawalTree) Prove(index int) ([]types.Hash, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, ErrWithdrawalTreeBadIndex
	}

	var proof []types.Hash
	pos := index
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, nil
}

// VerifyInclusion folds the proof against the leaf hash and reports whether
// the result equals the expected root.
func VerifyInclusion(leaf types.Hash, proof []types.Hash, root types.Hash) bool {
	return FoldProof(leaf, proof) == root
}

// FoldProof recomputes a Merkle root from a leaf and its sibling path using
// canonical min-first ordering at each step.
func FoldProof(leaf types.Hash, proof []types.Hash) types.Hash {
	cur := leaf
	for _, sibling := range proof {
		cur = HashSiblings(cur, sibling)
	}
	return cur
}

// HashSiblings hashes two sibling nodes with the byte-wise smaller one first.
func HashSiblings(a, b types.Hash) types.Hash {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return Keccak256Hash(a[:], b[:])
	}
	return Keccak256Hash(b[:], a[:])
}

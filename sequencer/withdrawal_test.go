package sequencer

import (
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// withdrawalFixture finalizes an optimistic batch carrying a withdrawal root
// over the given leaves and returns the tree for proof generation.
func (tc *testCore) withdrawalFixture(t *testing.T, leaves []types.Hash) *crypto.WithdrawalTree {
	t.Helper()

	tree, err := crypto.NewWithdrawalTree(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	txs := makeTxHashes(1)
	parent := tc.store.CanonicalRoot()
	newRoot := ReplayTransition(parent, txs)
	seq, err := tc.store.SubmitBatch(sequencerAddr, ModeOptimistic, txs, parent, newRoot, tree.Root(), nil)
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	tc.clock.advance(tc.cfg.ChallengePeriod + time.Second)
	if err := tc.store.FinalizeBatch(seq); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return tree
}

// Two recipients exit against the same finalized withdrawal root; each leaf
// pays out once and a replay is rejected.
func TestProcessWithdrawal(t *testing.T) {
	tc := newTestCore(t)

	other := types.HexToAddress("0xd2")
	amount1 := uint256.NewInt(500)
	amount2 := uint256.NewInt(750)
	leaves := []types.Hash{
		ComputeWithdrawalLeaf(recipientAddr, amount1),
		ComputeWithdrawalLeaf(other, amount2),
	}
	tree := tc.withdrawalFixture(t, leaves)

	p, err := NewWithdrawalProcessor(tc.store, tc.assets)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	proof0, _ := tree.Prove(0)
	if err := p.ProcessWithdrawal(leaves[0], recipientAddr, amount1, proof0); err != nil {
		t.Fatalf("first withdrawal: %v", err)
	}
	proof1, _ := tree.Prove(1)
	if err := p.ProcessWithdrawal(leaves[1], other, amount2, proof1); err != nil {
		t.Fatalf("second withdrawal: %v", err)
	}

	if got := tc.assets.BalanceOf(recipientAddr).Uint64(); got != 500 {
		t.Fatalf("expected 500 released, got %d", got)
	}
	if got := tc.assets.BalanceOf(other).Uint64(); got != 750 {
		t.Fatalf("expected 750 released, got %d", got)
	}

	// Replaying a consumed leaf fails and releases nothing more.
	if err := p.ProcessWithdrawal(leaves[0], recipientAddr, amount1, proof0); err != ErrAlreadyProcessed {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if got := tc.assets.BalanceOf(recipientAddr).Uint64(); got != 500 {
		t.Fatalf("replay must not release funds, got %d", got)
	}

	leaf, ok := p.Processed(leaves[0])
	if !ok || !leaf.Consumed || leaf.Recipient != recipientAddr {
		t.Fatal("consumed leaf record missing or wrong")
	}
}

func TestProcessWithdrawalLeafMismatch(t *testing.T) {
	tc := newTestCore(t)

	amount := uint256.NewInt(100)
	leaf := ComputeWithdrawalLeaf(recipientAddr, amount)
	tree := tc.withdrawalFixture(t, []types.Hash{leaf})

	p, _ := NewWithdrawalProcessor(tc.store, tc.assets)
	proof, _ := tree.Prove(0)

	// The leaf commits to recipient and amount; claiming different values
	// under the same leaf hash is rejected.
	if err := p.ProcessWithdrawal(leaf, recipientAddr, uint256.NewInt(999), proof); err != ErrLeafMismatch {
		t.Fatalf("expected ErrLeafMismatch, got %v", err)
	}
	if err := p.ProcessWithdrawal(leaf, types.HexToAddress("0xbe"), amount, proof); err != ErrLeafMismatch {
		t.Fatalf("expected ErrLeafMismatch, got %v", err)
	}
}

func TestProcessWithdrawalBadProof(t *testing.T) {
	tc := newTestCore(t)

	amount := uint256.NewInt(100)
	leaf := ComputeWithdrawalLeaf(recipientAddr, amount)
	other := ComputeWithdrawalLeaf(types.HexToAddress("0xd2"), amount)
	tree := tc.withdrawalFixture(t, []types.Hash{leaf, other})

	p, _ := NewWithdrawalProcessor(tc.store, tc.assets)

	// Proof for the wrong leaf does not fold to the root.
	wrongProof, _ := tree.Prove(1)
	wrongProof[0] = crypto.Keccak256Hash([]byte("junk"))
	if err := p.ProcessWithdrawal(leaf, recipientAddr, amount, wrongProof); err != ErrInvalidMerkleProof {
		t.Fatalf("expected ErrInvalidMerkleProof, got %v", err)
	}
	if got := tc.assets.BalanceOf(recipientAddr).Uint64(); got != 0 {
		t.Fatalf("rejected withdrawal must release nothing, got %d", got)
	}
}

func TestProcessWithdrawalNoFinalizedRoot(t *testing.T) {
	tc := newTestCore(t)

	amount := uint256.NewInt(100)
	leaf := ComputeWithdrawalLeaf(recipientAddr, amount)

	p, _ := NewWithdrawalProcessor(tc.store, tc.assets)
	if err := p.ProcessWithdrawal(leaf, recipientAddr, amount, nil); err != ErrNoWithdrawalRoot {
		t.Fatalf("expected ErrNoWithdrawalRoot, got %v", err)
	}
}

func TestProcessWithdrawalArgumentChecks(t *testing.T) {
	tc := newTestCore(t)
	p, _ := NewWithdrawalProcessor(tc.store, tc.assets)

	amount := uint256.NewInt(1)
	leaf := ComputeWithdrawalLeaf(recipientAddr, amount)

	if err := p.ProcessWithdrawal(leaf, types.Address{}, amount, nil); err != ErrRecipientZero {
		t.Fatalf("expected ErrRecipientZero, got %v", err)
	}
	if err := p.ProcessWithdrawal(leaf, recipientAddr, nil, nil); err != ErrWithdrawAmountNil {
		t.Fatalf("expected ErrWithdrawAmountNil, got %v", err)
	}
	if err := p.ProcessWithdrawal(leaf, recipientAddr, uint256.NewInt(0), nil); err != ErrWithdrawAmountNil {
		t.Fatalf("expected ErrWithdrawAmountNil, got %v", err)
	}
}

func TestNewWithdrawalProcessorNilAssets(t *testing.T) {
	tc := newTestCore(t)

	if _, err := NewWithdrawalProcessor(tc.store, nil); err != ErrNilAssetTransfer {
		t.Fatalf("expected ErrNilAssetTransfer, got %v", err)
	}
}

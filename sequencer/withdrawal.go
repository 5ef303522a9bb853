// withdrawal.go implements exit processing: a withdrawal leaf is paid out
// once its inclusion proof reaches the withdrawal root of a finalized batch.
// Each leaf is consumed exactly once.
package sequencer

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// AssetTransfer moves value out of the system on successful withdrawal. The
// concrete transfer mechanism lives outside the sequencer core.
type AssetTransfer interface {
	Release(to types.Address, amount *uint256.Int) error
}

// WithdrawalLeaf records a processed exit claim.
type WithdrawalLeaf struct {
	// LeafHash is the commitment to recipient and amount.
	LeafHash types.Hash

	// Recipient received the funds.
	Recipient types.Address

	// Amount is the released value.
	Amount *uint256.Int

	// Consumed is set once the leaf has been paid out.
	Consumed bool
}

// WithdrawalProcessor verifies inclusion proofs of withdrawal leaves against
// the finalized withdrawal root and consumes each leaf exactly once.
type WithdrawalProcessor struct {
	mu       sync.Mutex
	store    *BatchStore
	assets   AssetTransfer
	consumed map[types.Hash]*WithdrawalLeaf
}

// NewWithdrawalProcessor creates a processor over the given batch store and
// asset transfer capability.
func NewWithdrawalProcessor(store *BatchStore, assets AssetTransfer) (*WithdrawalProcessor, error) {
	if assets == nil {
		return nil, ErrNilAssetTransfer
	}
	return &WithdrawalProcessor{
		store:    store,
		assets:   assets,
		consumed: make(map[types.Hash]*WithdrawalLeaf),
	}, nil
}

// ProcessWithdrawal pays out a withdrawal leaf. The leaf hash must commit to
// recipient and amount, the proof must fold to the withdrawal root of the
// most recently finalized batch carrying one, and the leaf must not have been
// consumed before. A rejected call leaves all state unchanged.
func (p *WithdrawalProcessor) ProcessWithdrawal(
	leafHash types.Hash,
	recipient types.Address,
	amount *uint256.Int,
	proof []types.Hash,
) error {
	if recipient.IsZero() {
		return ErrRecipientZero
	}
	if amount == nil || amount.IsZero() {
		return ErrWithdrawAmountNil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if leaf, ok := p.consumed[leafHash]; ok && leaf.Consumed {
		return ErrAlreadyProcessed
	}
	if leafHash != ComputeWithdrawalLeaf(recipient, amount) {
		return ErrLeafMismatch
	}

	root, ok := p.store.FinalizedWithdrawalRoot()
	if !ok {
		return ErrNoWithdrawalRoot
	}
	if !crypto.VerifyInclusion(leafHash, proof, root) {
		return ErrInvalidMerkleProof
	}

	if err := p.assets.Release(recipient, amount); err != nil {
		return err
	}

	p.consumed[leafHash] = &WithdrawalLeaf{
		LeafHash:  leafHash,
		Recipient: recipient,
		Amount:    amount.Clone(),
		Consumed:  true,
	}
	return nil
}

// Processed returns the consumed leaf record for the given hash, if any.
func (p *WithdrawalProcessor) Processed(leafHash types.Hash) (*WithdrawalLeaf, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	leaf, ok := p.consumed[leafHash]
	if !ok {
		return nil, false
	}
	cp := *leaf
	cp.Amount = leaf.Amount.Clone()
	return &cp, true
}

// ComputeWithdrawalLeaf derives the leaf hash committing to a withdrawal:
// Keccak256(recipient || amount).
func ComputeWithdrawalLeaf(recipient types.Address, amount *uint256.Int) types.Hash {
	amountBytes := amount.Bytes32()
	return crypto.Keccak256Hash(recipient[:], amountBytes[:])
}

// MemoryVault is an in-memory AssetTransfer used by tests and tooling. It
// credits released funds to per-recipient balances.
type MemoryVault struct {
	mu       sync.Mutex
	balances map[types.Address]*uint256.Int
}

// NewMemoryVault creates an empty MemoryVault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{balances: make(map[types.Address]*uint256.Int)}
}

// Release credits the recipient's balance.
func (v *MemoryVault) Release(to types.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal, ok := v.balances[to]
	if !ok {
		bal = new(uint256.Int)
		v.balances[to] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// BalanceOf returns a copy of the recipient's credited balance.
func (v *MemoryVault) BalanceOf(to types.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal, ok := v.balances[to]
	if !ok {
		return new(uint256.Int)
	}
	return bal.Clone()
}

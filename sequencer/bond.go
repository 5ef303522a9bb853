// bond.go implements the bond ledger: staked collateral per participant,
// gating sequencing and challenging on sufficient stake. Stake is mutated
// only through Deposit, Withdraw, and resolution slashing; no other component
// writes balances directly.
package sequencer

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
)

// BondLedger tracks staked collateral per participant.
type BondLedger struct {
	mu     sync.Mutex
	stakes map[types.Address]*uint256.Int

	// disputes counts unresolved challenges per participant, on either side
	// of a dispute. Withdrawals are rejected while the count is non-zero.
	disputes map[types.Address]int
}

// NewBondLedger creates an empty BondLedger.
func NewBondLedger() *BondLedger {
	return &BondLedger{
		stakes:   make(map[types.Address]*uint256.Int),
		disputes: make(map[types.Address]int),
	}
}

// Deposit increases the owner's stake.
func (l *BondLedger) Deposit(owner types.Address, amount *uint256.Int) error {
	if owner.IsZero() {
		return ErrOwnerZero
	}
	if amount == nil {
		return ErrBondAmountNil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stake, ok := l.stakes[owner]
	if !ok {
		stake = new(uint256.Int)
		l.stakes[owner] = stake
	}
	stake.Add(stake, amount)
	return nil
}

// Withdraw decreases the owner's stake and releases funds. It fails while the
// owner has any unresolved challenge, as submitter of a disputed batch or as
// challenger, so stake cannot exit mid-dispute.
func (l *BondLedger) Withdraw(owner types.Address, amount *uint256.Int) error {
	if owner.IsZero() {
		return ErrOwnerZero
	}
	if amount == nil {
		return ErrBondAmountNil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disputes[owner] > 0 {
		return ErrBondLocked
	}
	stake, ok := l.stakes[owner]
	if !ok || stake.Lt(amount) {
		return ErrInsufficientStake
	}
	stake.Sub(stake, amount)
	return nil
}

// BalanceOf returns a copy of the owner's current stake.
func (l *BondLedger) BalanceOf(owner types.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	stake, ok := l.stakes[owner]
	if !ok {
		return new(uint256.Int)
	}
	return stake.Clone()
}

// HasOpenDispute reports whether the owner is party to an unresolved challenge.
func (l *BondLedger) HasOpenDispute(owner types.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disputes[owner] > 0
}

// slash moves stake from the slashed party to the recipient. Invoked only by
// challenge resolution. Insufficient stake is a hard failure; the protocol's
// minimum-bond gating keeps it unreachable in normal operation.
func (l *BondLedger) slash(from types.Address, amount *uint256.Int, to types.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stake, ok := l.stakes[from]
	if !ok || stake.Lt(amount) {
		return ErrInsufficientStake
	}
	stake.Sub(stake, amount)

	dst, ok := l.stakes[to]
	if !ok {
		dst = new(uint256.Int)
		l.stakes[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

// lockDispute marks the owner as party to an unresolved challenge.
func (l *BondLedger) lockDispute(owner types.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disputes[owner]++
}

// releaseDispute clears one unresolved challenge for the owner.
func (l *BondLedger) releaseDispute(owner types.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disputes[owner] > 0 {
		l.disputes[owner]--
	}
}

// meetsMinimum reports whether the owner's stake is at least min.
func (l *BondLedger) meetsMinimum(owner types.Address, min *uint256.Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	stake, ok := l.stakes[owner]
	return ok && !stake.Lt(min)
}

// Package sequencer implements the l2seq batch sequencing core: transaction
// intake, the append-only batch chain, the optimistic fraud-challenge
// protocol, economic bonding, validity-proof verification, and withdrawal
// processing against finalized batches.
package sequencer

import (
	"errors"
	"time"

	"github.com/holiman/uint256"
)

// Mode selects the finality strategy of a submitted batch.
type Mode uint8

const (
	// ModeOptimistic batches are presumed valid unless successfully
	// challenged within the challenge period.
	ModeOptimistic Mode = iota + 1

	// ModeValidityProof batches carry a proof that is verified synchronously
	// at submission; acceptance is immediate finality.
	ModeValidityProof
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeOptimistic:
		return "optimistic"
	case ModeValidityProof:
		return "validity-proof"
	default:
		return "unknown"
	}
}

// valid reports whether m is a known mode.
func (m Mode) valid() bool {
	return m == ModeOptimistic || m == ModeValidityProof
}

// Config holds the protocol parameters of the sequencing core.
type Config struct {
	// ChallengePeriod is the window during which a pending optimistic batch
	// may be disputed.
	ChallengePeriod time.Duration

	// MinBatchSize and MaxBatchSize bound the transaction count per batch.
	MinBatchSize int
	MaxBatchSize int

	// SequencerMinBond is the stake required to submit batches.
	SequencerMinBond *uint256.Int

	// ChallengerMinBond is the stake required to open a challenge.
	ChallengerMinBond *uint256.Int

	// SequencerBond is the amount slashed from a submitter on proven fraud.
	SequencerBond *uint256.Int

	// ChallengerBond is the amount slashed from a challenger whose challenge
	// fails.
	ChallengerBond *uint256.Int
}

// DefaultConfig returns a Config with the standard protocol parameters.
func DefaultConfig() Config {
	return Config{
		ChallengePeriod:   7 * 24 * time.Hour,
		MinBatchSize:      1,
		MaxBatchSize:      1024,
		SequencerMinBond:  uint256.NewInt(1_000_000),
		ChallengerMinBond: uint256.NewInt(250_000),
		SequencerBond:     uint256.NewInt(1_000_000),
		ChallengerBond:    uint256.NewInt(250_000),
	}
}

// Validate checks the internal consistency of the configuration. The minimum
// bonds must cover the slash amounts so that resolution slashing cannot fail
// on a participant who met the entry requirement.
func (c Config) Validate() error {
	if c.ChallengePeriod <= 0 {
		return errors.New("config: challenge period must be positive")
	}
	if c.MinBatchSize < 1 || c.MaxBatchSize < c.MinBatchSize {
		return errors.New("config: invalid batch size bounds")
	}
	if c.SequencerMinBond == nil || c.ChallengerMinBond == nil ||
		c.SequencerBond == nil || c.ChallengerBond == nil {
		return errors.New("config: bond amounts must be non-nil")
	}
	if c.SequencerMinBond.Lt(c.SequencerBond) {
		return errors.New("config: sequencer minimum bond below slash amount")
	}
	if c.ChallengerMinBond.Lt(c.ChallengerBond) {
		return errors.New("config: challenger minimum bond below slash amount")
	}
	return nil
}

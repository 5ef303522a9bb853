// challenge.go implements the optimistic fraud-proof protocol. A challenge
// against a pending batch is submitted and adjudicated in one atomic call:
// the disputed transition is replayed deterministically against the supplied
// evidence, and the outcome (slashing, rollback) is applied immediately.
package sequencer

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
)

// ChallengeState is the per-batch dispute state.
type ChallengeState uint8

const (
	// NoChallenge means the batch has never been disputed.
	NoChallenge ChallengeState = iota

	// Challenged means a dispute is open. With atomic adjudication this
	// state is never observable from outside the resolving call.
	Challenged

	// ResolvedFraud means fraud was proven and the batch rolled back.
	ResolvedFraud

	// ResolvedNoFraud means the challenge failed; the batch remains eligible
	// for ordinary finalization.
	ResolvedNoFraud
)

// String implements fmt.Stringer.
func (s ChallengeState) String() string {
	switch s {
	case NoChallenge:
		return "no-challenge"
	case Challenged:
		return "challenged"
	case ResolvedFraud:
		return "resolved-fraud"
	case ResolvedNoFraud:
		return "resolved-no-fraud"
	default:
		return "unknown"
	}
}

// Challenge is a dispute raised against a pending optimistic batch. At most
// one challenge exists per batch; it is terminal once resolved.
type Challenge struct {
	// BatchSequenceNumber identifies the disputed batch.
	BatchSequenceNumber uint64

	// Challenger is the disputing participant.
	Challenger types.Address

	// AssertedStateRoot is the root the challenger claims is correct.
	AssertedStateRoot types.Hash

	// BondAmount is the challenger stake at risk in the dispute.
	BondAmount *uint256.Int

	// CreatedAt records when the challenge was raised.
	CreatedAt time.Time

	// Resolved is set once adjudication has run.
	Resolved bool

	// FraudProven records the adjudication verdict.
	FraudProven bool
}

// State returns the dispute state of the challenge record.
func (c *Challenge) State() ChallengeState {
	if !c.Resolved {
		return Challenged
	}
	if c.FraudProven {
		return ResolvedFraud
	}
	return ResolvedNoFraud
}

// ReplayEvidence carries the data needed to re-execute a disputed transition:
// the ordered transaction hashes the batch committed to. The evidence must
// hash to the batch's TxSetHash to be admissible.
type ReplayEvidence struct {
	TxHashes []types.Hash
}

// ChallengeManager runs the fraud-proof protocol. It owns challenge records
// exclusively; it reads the batch store for the disputed batch and settles
// stakes through the bond ledger.
type ChallengeManager struct {
	mu         sync.Mutex
	cfg        Config
	store      *BatchStore
	bonds      *BondLedger
	challenges map[uint64]*Challenge

	now func() time.Time
}

// NewChallengeManager creates a ChallengeManager over the given store and
// bond ledger.
func NewChallengeManager(cfg Config, store *BatchStore, bonds *BondLedger) *ChallengeManager {
	return &ChallengeManager{
		cfg:        cfg,
		store:      store,
		bonds:      bonds,
		challenges: make(map[uint64]*Challenge),
		now:        time.Now,
	}
}

// Challenge disputes a pending batch and adjudicates the dispute in the same
// call. On proven fraud the submitter is slashed in favour of the challenger
// and the canonical root rolls back; on a failed challenge the challenger is
// slashed in favour of the submitter. A rejected challenge leaves all state
// unchanged.
func (m *ChallengeManager) Challenge(
	challenger types.Address,
	sequenceNumber uint64,
	assertedStateRoot types.Hash,
	evidence *ReplayEvidence,
) (*Challenge, error) {
	batch, err := m.store.GetBatch(sequenceNumber)
	if err != nil {
		return nil, err
	}
	switch batch.Status {
	case BatchFinalized:
		return nil, ErrAlreadyFinalized
	case BatchRolledBack:
		return nil, ErrBatchNotPending
	}
	if batch.Mode != ModeOptimistic {
		return nil, ErrBatchNotPending
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.After(batch.ChallengeDeadline) {
		return nil, ErrChallengeWindowClosed
	}
	if _, exists := m.challenges[sequenceNumber]; exists {
		return nil, ErrAlreadyChallenged
	}
	if !m.bonds.meetsMinimum(challenger, m.cfg.ChallengerMinBond) {
		return nil, ErrInsufficientBond
	}
	if evidence == nil || len(evidence.TxHashes) != batch.TxCount ||
		ComputeTxSetHash(evidence.TxHashes) != batch.TxSetHash {
		return nil, ErrInvalidEvidence
	}

	ch := &Challenge{
		BatchSequenceNumber: sequenceNumber,
		Challenger:          challenger,
		AssertedStateRoot:   assertedStateRoot,
		BondAmount:          m.cfg.ChallengerBond.Clone(),
		CreatedAt:           now,
	}
	m.challenges[sequenceNumber] = ch

	// Lock both parties' stake for the duration of the dispute.
	m.bonds.lockDispute(challenger)
	m.bonds.lockDispute(batch.Submitter)
	defer m.bonds.releaseDispute(challenger)
	defer m.bonds.releaseDispute(batch.Submitter)

	// Adjudicate: replay the disputed transition from the parent's claimed
	// root and compare with the submitter's claim.
	expected := ReplayTransition(batch.ParentClaimedRoot, evidence.TxHashes)
	fraudProven := expected != batch.ClaimedStateRoot

	if fraudProven {
		if err := m.bonds.slash(batch.Submitter, m.cfg.SequencerBond, challenger); err != nil {
			delete(m.challenges, sequenceNumber)
			return nil, err
		}
		if err := m.store.rollback(sequenceNumber); err != nil {
			delete(m.challenges, sequenceNumber)
			return nil, err
		}
	} else {
		if err := m.bonds.slash(challenger, m.cfg.ChallengerBond, batch.Submitter); err != nil {
			delete(m.challenges, sequenceNumber)
			return nil, err
		}
	}

	ch.Resolved = true
	ch.FraudProven = fraudProven

	cp := *ch
	cp.BondAmount = ch.BondAmount.Clone()
	return &cp, nil
}

// ChallengeFor returns the challenge raised against the given batch, if any.
// Implements ChallengeReader for the batch store.
func (m *ChallengeManager) ChallengeFor(sequenceNumber uint64) (*Challenge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.challenges[sequenceNumber]
	if !ok {
		return nil, false
	}
	cp := *ch
	cp.BondAmount = ch.BondAmount.Clone()
	return &cp, true
}

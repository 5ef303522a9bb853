// finality.go implements the finality gate: the coordinating state machine
// that wires intake, batch store, challenge manager, bond ledger, and
// withdrawal processor together, decides when a batch becomes irreversible,
// and exposes the external operations of the sequencing core.
package sequencer

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/log"
	"github.com/l2seq/l2seq/metrics"
)

// SystemMode is the operational state of the gate.
type SystemMode uint8

const (
	// SystemActive accepts all operations.
	SystemActive SystemMode = iota

	// SystemPaused rejects every state-mutating operation.
	SystemPaused
)

// AdminToken authorizes administrative operations (pause, resume, verifier
// swap). The holder of the token chosen at construction is the administrator.
type AdminToken [32]byte

// GateMetrics counts protocol events for monitoring consumers.
type GateMetrics struct {
	BatchesSubmitted     *metrics.Counter
	BatchesFinalized     *metrics.Counter
	BatchesRolledBack    *metrics.Counter
	ChallengesResolved   *metrics.Counter
	FraudProven          *metrics.Counter
	WithdrawalsProcessed *metrics.Counter
	PendingBatches       *metrics.Gauge
}

func newGateMetrics() *GateMetrics {
	return &GateMetrics{
		BatchesSubmitted:     metrics.NewCounter("sequencer_batches_submitted"),
		BatchesFinalized:     metrics.NewCounter("sequencer_batches_finalized"),
		BatchesRolledBack:    metrics.NewCounter("sequencer_batches_rolled_back"),
		ChallengesResolved:   metrics.NewCounter("sequencer_challenges_resolved"),
		FraudProven:          metrics.NewCounter("sequencer_fraud_proven"),
		WithdrawalsProcessed: metrics.NewCounter("sequencer_withdrawals_processed"),
		PendingBatches:       metrics.NewGauge("sequencer_pending_batches"),
	}
}

// FinalityGate coordinates the sequencing core.
type FinalityGate struct {
	cfg   Config
	admin AdminToken

	mu   sync.Mutex
	mode SystemMode

	intake      *Intake
	store       *BatchStore
	challenges  *ChallengeManager
	bonds       *BondLedger
	withdrawals *WithdrawalProcessor
	attest      *AttestationRegistry

	logger *log.Logger
	m      *GateMetrics
}

// NewFinalityGate wires a complete sequencing core anchored at genesisRoot.
// The verifier handles validity-mode proofs and may be swapped later through
// the admin token. The attestation registry is optional; when non-nil every
// batch submission must carry a valid attestation.
func NewFinalityGate(
	cfg Config,
	genesisRoot types.Hash,
	admin AdminToken,
	assets AssetTransfer,
	verifier ProofVerifier,
	attest *AttestationRegistry,
) (*FinalityGate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bonds := NewBondLedger()
	store := NewBatchStore(cfg, genesisRoot, bonds)
	store.SetVerifier(verifier)
	challenges := NewChallengeManager(cfg, store, bonds)
	store.SetChallengeReader(challenges)

	withdrawals, err := NewWithdrawalProcessor(store, assets)
	if err != nil {
		return nil, err
	}

	return &FinalityGate{
		cfg:         cfg,
		admin:       admin,
		intake:      NewIntake(),
		store:       store,
		challenges:  challenges,
		bonds:       bonds,
		withdrawals: withdrawals,
		attest:      attest,
		logger:      log.Default().Module("sequencer"),
		m:           newGateMetrics(),
	}, nil
}

// SubmitTransaction accepts a transaction into the intake and returns its
// content hash.
func (g *FinalityGate) SubmitTransaction(sender, recipient types.Address, amount *uint256.Int, payload []byte) (types.Hash, error) {
	if err := g.active(); err != nil {
		return types.Hash{}, err
	}
	return g.intake.Submit(sender, recipient, amount, payload)
}

// SubmitBatch submits a batch of transaction hashes with a claimed post-state
// root. attestation is required only when an attestation registry is
// configured; pass nil otherwise.
func (g *FinalityGate) SubmitBatch(
	submitter types.Address,
	mode Mode,
	txHashes []types.Hash,
	parentRoot, newStateRoot, withdrawalRoot types.Hash,
	proof, attestation []byte,
) (uint64, error) {
	if err := g.active(); err != nil {
		return 0, err
	}

	if g.attest != nil {
		msg := AttestationMessage(ComputeTxSetHash(txHashes), newStateRoot)
		if err := g.attest.VerifySubmission(submitter, msg, attestation); err != nil {
			return 0, err
		}
	}

	seq, err := g.store.SubmitBatch(submitter, mode, txHashes, parentRoot, newStateRoot, withdrawalRoot, proof)
	if err != nil {
		return 0, err
	}

	g.m.BatchesSubmitted.Inc()
	if mode == ModeOptimistic {
		g.m.PendingBatches.Inc()
	} else {
		g.m.BatchesFinalized.Inc()
	}
	g.logger.Info("batch submitted",
		"sequence", seq,
		"mode", mode.String(),
		"submitter", submitter.Hex(),
		"txs", len(txHashes),
		"root", newStateRoot.Hex(),
	)
	return seq, nil
}

// ChallengeBatch disputes a pending optimistic batch. Submission and
// adjudication are one atomic call; the returned challenge is resolved.
func (g *FinalityGate) ChallengeBatch(
	challenger types.Address,
	sequenceNumber uint64,
	assertedStateRoot types.Hash,
	evidence *ReplayEvidence,
) (*Challenge, error) {
	if err := g.active(); err != nil {
		return nil, err
	}

	ch, err := g.challenges.Challenge(challenger, sequenceNumber, assertedStateRoot, evidence)
	if err != nil {
		return nil, err
	}

	g.m.ChallengesResolved.Inc()
	if ch.FraudProven {
		g.m.FraudProven.Inc()
		g.m.BatchesRolledBack.Inc()
		g.m.PendingBatches.Dec()
	}
	g.logger.Info("challenge resolved",
		"sequence", sequenceNumber,
		"challenger", challenger.Hex(),
		"fraud", ch.FraudProven,
	)
	return ch, nil
}

// FinalizeBatch finalizes a pending optimistic batch once its challenge
// window has closed.
func (g *FinalityGate) FinalizeBatch(sequenceNumber uint64) error {
	if err := g.active(); err != nil {
		return err
	}

	if err := g.store.FinalizeBatch(sequenceNumber); err != nil {
		return err
	}

	g.m.BatchesFinalized.Inc()
	g.m.PendingBatches.Dec()
	g.logger.Info("batch finalized",
		"sequence", sequenceNumber,
		"root", g.store.CanonicalRoot().Hex(),
	)
	return nil
}

// ProcessWithdrawal pays out a withdrawal leaf proven against the finalized
// withdrawal root.
func (g *FinalityGate) ProcessWithdrawal(
	leafHash types.Hash,
	recipient types.Address,
	amount *uint256.Int,
	proof []types.Hash,
) error {
	if err := g.active(); err != nil {
		return err
	}

	if err := g.withdrawals.ProcessWithdrawal(leafHash, recipient, amount, proof); err != nil {
		return err
	}
	g.m.WithdrawalsProcessed.Inc()
	return nil
}

// DepositBond increases the owner's stake.
func (g *FinalityGate) DepositBond(owner types.Address, amount *uint256.Int) error {
	if err := g.active(); err != nil {
		return err
	}
	return g.bonds.Deposit(owner, amount)
}

// WithdrawBond decreases the owner's stake, subject to the dispute lock.
func (g *FinalityGate) WithdrawBond(owner types.Address, amount *uint256.Int) error {
	if err := g.active(); err != nil {
		return err
	}
	return g.bonds.Withdraw(owner, amount)
}

// GetBatch returns the batch with the given sequence number.
func (g *FinalityGate) GetBatch(sequenceNumber uint64) (*Batch, error) {
	return g.store.GetBatch(sequenceNumber)
}

// GetChallenge returns the challenge raised against the given batch, if any.
func (g *FinalityGate) GetChallenge(sequenceNumber uint64) (*Challenge, error) {
	ch, ok := g.challenges.ChallengeFor(sequenceNumber)
	if !ok {
		return nil, ErrChallengeNotFound
	}
	return ch, nil
}

// GetTransaction returns a stored transaction by content hash.
func (g *FinalityGate) GetTransaction(hash types.Hash) (*Transaction, error) {
	return g.intake.Get(hash)
}

// CanonicalRoot returns the current canonical state root.
func (g *FinalityGate) CanonicalRoot() types.Hash {
	return g.store.CanonicalRoot()
}

// BondOf returns the owner's staked amount.
func (g *FinalityGate) BondOf(owner types.Address) *uint256.Int {
	return g.bonds.BalanceOf(owner)
}

// SubmissionRecords returns the emitted batch submission records.
func (g *FinalityGate) SubmissionRecords() []SubmissionRecord {
	return g.store.Records()
}

// Metrics returns the gate's event counters.
func (g *FinalityGate) Metrics() *GateMetrics {
	return g.m
}

// Mode returns the current system mode.
func (g *FinalityGate) Mode() SystemMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Pause halts all state-mutating operations. Admin only.
func (g *FinalityGate) Pause(token AdminToken) error {
	if token != g.admin {
		return ErrUnauthorized
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = SystemPaused
	g.logger.Warn("system paused")
	return nil
}

// Resume reactivates the gate. Admin only.
func (g *FinalityGate) Resume(token AdminToken) error {
	if token != g.admin {
		return ErrUnauthorized
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = SystemActive
	g.logger.Info("system resumed")
	return nil
}

// SetVerifier swaps the validity-proof verifier. Admin only.
func (g *FinalityGate) SetVerifier(token AdminToken, v ProofVerifier) error {
	if token != g.admin {
		return ErrUnauthorized
	}
	if v == nil {
		return ErrNilVerifier
	}
	g.store.SetVerifier(v)
	g.logger.Info("verifier replaced", "name", v.Name())
	return nil
}

// active returns ErrSystemPaused when the gate is paused.
func (g *FinalityGate) active() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == SystemPaused {
		return ErrSystemPaused
	}
	return nil
}

// setClock overrides the time source of the store and challenge manager.
// Test helper.
func (g *FinalityGate) setClock(now func() time.Time) {
	g.store.now = now
	g.challenges.now = now
}

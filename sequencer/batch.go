// batch.go implements the append-only chain of committed batches. Each batch
// links to its predecessor through the hash of the predecessor's claimed
// state root; the canonical root advances only when a batch reaches finality.
package sequencer

import (
	"sync"
	"time"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// BatchStatus is the lifecycle state of a batch.
type BatchStatus uint8

const (
	// BatchPending batches await the close of their challenge window.
	BatchPending BatchStatus = iota + 1

	// BatchFinalized batches are irreversible; their claimed root has become
	// canonical.
	BatchFinalized

	// BatchRolledBack batches were proven fraudulent and removed from the
	// canonical chain. Terminal.
	BatchRolledBack
)

// String implements fmt.Stringer.
func (s BatchStatus) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchFinalized:
		return "finalized"
	case BatchRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Batch is a committed set of transaction references plus a claimed
// post-state root. Once finalized it is immutable forever.
type Batch struct {
	// SequenceNumber is the monotonic batch index, starting at 0.
	SequenceNumber uint64

	// ParentRootHash is Keccak256 of the parent's claimed state root (of the
	// genesis root for batch 0). This is the chain-linking commitment.
	ParentRootHash types.Hash

	// ParentClaimedRoot is the parent's claimed root itself, retained as the
	// rollback target and as the replay base for adjudication.
	ParentClaimedRoot types.Hash

	// ClaimedStateRoot is the post-state root asserted by the submitter.
	ClaimedStateRoot types.Hash

	// TxSetHash commits to the ordered transaction hashes of the batch.
	TxSetHash types.Hash

	// TxCount is the number of transactions referenced by the batch.
	TxCount int

	// Submitter is the sequencer that submitted the batch.
	Submitter types.Address

	// SubmittedAt records the submission time.
	SubmittedAt time.Time

	// Mode is the finality strategy of the batch.
	Mode Mode

	// ChallengeDeadline closes the dispute window. Optimistic mode only.
	ChallengeDeadline time.Time

	// Status is the lifecycle state.
	Status BatchStatus

	// WithdrawalRoot commits to the batch's withdrawal leaves. Zero when the
	// batch carries no withdrawals.
	WithdrawalRoot types.Hash
}

// SubmissionRecord is emitted for every accepted batch submission. Monitoring
// and data-availability consumers read these; the geth adapter RLP-encodes
// them for L1 posting.
type SubmissionRecord struct {
	SequenceNumber   uint64
	ParentRootHash   types.Hash
	ClaimedStateRoot types.Hash
	TxSetHash        types.Hash
	WithdrawalRoot   types.Hash
	Submitter        types.Address
	TxCount          uint64
	Mode             uint8
	Finalized        bool
}

// ChallengeReader exposes the challenge state the store consults when
// finalizing an optimistic batch.
type ChallengeReader interface {
	ChallengeFor(sequenceNumber uint64) (*Challenge, bool)
}

// BatchStore owns the canonical batch sequence and the canonical state root.
type BatchStore struct {
	mu         sync.Mutex
	cfg        Config
	bonds      *BondLedger
	challenges ChallengeReader
	verifier   ProofVerifier

	genesisRoot   types.Hash
	canonicalRoot types.Hash
	rootHistory   []types.Hash
	batches       []*Batch
	records       []SubmissionRecord

	now func() time.Time
}

// NewBatchStore creates a BatchStore anchored at the given genesis root. The
// bond ledger gates submissions; the challenge reader and verifier are wired
// afterwards by the finality gate.
func NewBatchStore(cfg Config, genesisRoot types.Hash, bonds *BondLedger) *BatchStore {
	return &BatchStore{
		cfg:           cfg,
		bonds:         bonds,
		genesisRoot:   genesisRoot,
		canonicalRoot: genesisRoot,
		rootHistory:   []types.Hash{genesisRoot},
		now:           time.Now,
	}
}

// SetChallengeReader wires the challenge state consulted at finalization.
func (s *BatchStore) SetChallengeReader(r ChallengeReader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges = r
}

// SetVerifier replaces the proof verifier used for validity-mode submissions.
func (s *BatchStore) SetVerifier(v ProofVerifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = v
}

// SubmitBatch appends a new batch. parentRoot is the submitter's view of the
// canonical root and protects racing sequencers from building on a superseded
// root. Optimistic batches are stored pending with a challenge deadline;
// validity-mode batches are verified synchronously and finalized immediately,
// or rejected entirely with no state recorded.
func (s *BatchStore) SubmitBatch(
	submitter types.Address,
	mode Mode,
	txHashes []types.Hash,
	parentRoot, newStateRoot, withdrawalRoot types.Hash,
	proof []byte,
) (uint64, error) {
	if !mode.valid() {
		return 0, ErrInvalidMode
	}
	if len(txHashes) < s.cfg.MinBatchSize || len(txHashes) > s.cfg.MaxBatchSize {
		return 0, ErrInvalidBatchSize
	}
	if !s.bonds.meetsMinimum(submitter, s.cfg.SequencerMinBond) {
		return 0, ErrInsufficientBond
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if parentRoot != s.canonicalRoot {
		return 0, ErrStaleParentRoot
	}
	if head := s.head(); head != nil && head.Status == BatchPending {
		return 0, ErrPendingBatch
	}

	txSetHash := ComputeTxSetHash(txHashes)
	parentRootHash := crypto.Keccak256Hash(s.canonicalRoot[:])
	seq := uint64(len(s.batches))
	now := s.now()

	batch := &Batch{
		SequenceNumber:    seq,
		ParentRootHash:    parentRootHash,
		ParentClaimedRoot: s.canonicalRoot,
		ClaimedStateRoot:  newStateRoot,
		TxSetHash:         txSetHash,
		TxCount:           len(txHashes),
		Submitter:         submitter,
		SubmittedAt:       now,
		Mode:              mode,
	}

	switch mode {
	case ModeOptimistic:
		batch.ChallengeDeadline = now.Add(s.cfg.ChallengePeriod)
		batch.Status = BatchPending
		batch.WithdrawalRoot = withdrawalRoot

	case ModeValidityProof:
		if len(proof) == 0 {
			return 0, ErrProofRequired
		}
		if s.verifier == nil {
			return 0, ErrNoVerifier
		}
		if len(proof) != s.verifier.ProofSize() {
			return 0, ErrInvalidProofSize
		}
		// Fail closed: verifier errors reject the submission.
		ok, err := s.verifier.Verify(proof, parentRootHash, newStateRoot, withdrawalRoot)
		if err != nil || !ok {
			return 0, ErrProofVerificationFailed
		}
		batch.Status = BatchFinalized
		batch.WithdrawalRoot = withdrawalRoot
		s.canonicalRoot = newStateRoot
		s.rootHistory = append(s.rootHistory, newStateRoot)
	}

	s.batches = append(s.batches, batch)
	s.records = append(s.records, submissionRecord(batch))

	return seq, nil
}

// FinalizeBatch marks a pending optimistic batch finalized and advances the
// canonical root to its claimed root. Callable by anyone once the challenge
// deadline has passed and no challenge stands in the way.
func (s *BatchStore) FinalizeBatch(sequenceNumber uint64) error {
	// Challenge state is read before taking the store lock: resolution calls
	// back into the store, so lock ordering must stay manager -> store.
	s.mu.Lock()
	reader := s.challenges
	s.mu.Unlock()

	var ch *Challenge
	challenged := false
	if reader != nil {
		ch, challenged = reader.ChallengeFor(sequenceNumber)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch, err := s.batchAt(sequenceNumber)
	if err != nil {
		return err
	}

	switch batch.Status {
	case BatchFinalized:
		return ErrAlreadyFinalized
	case BatchRolledBack:
		return ErrBatchRolledBack
	}

	if !s.now().After(batch.ChallengeDeadline) {
		return ErrChallengeWindowOpen
	}
	if challenged {
		if !ch.Resolved {
			return ErrChallengeUnresolved
		}
		if ch.FraudProven {
			return ErrBatchRolledBack
		}
	}

	batch.Status = BatchFinalized
	s.canonicalRoot = batch.ClaimedStateRoot
	s.rootHistory = append(s.rootHistory, batch.ClaimedStateRoot)
	return nil
}

// rollback reverts a fraudulent batch: the batch is marked rolled back and
// the canonical root returns to the parent's claimed root. Invoked only by
// challenge resolution.
func (s *BatchStore) rollback(sequenceNumber uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, err := s.batchAt(sequenceNumber)
	if err != nil {
		return err
	}
	if batch.Status != BatchPending {
		return ErrBatchNotPending
	}

	batch.Status = BatchRolledBack
	s.canonicalRoot = batch.ParentClaimedRoot
	return nil
}

// GetBatch returns a copy of the batch with the given sequence number.
func (s *BatchStore) GetBatch(sequenceNumber uint64) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, err := s.batchAt(sequenceNumber)
	if err != nil {
		return nil, err
	}
	cp := *batch
	return &cp, nil
}

// CanonicalRoot returns the current canonical state root.
func (s *BatchStore) CanonicalRoot() types.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canonicalRoot
}

// GenesisRoot returns the root the chain was anchored at.
func (s *BatchStore) GenesisRoot() types.Hash {
	return s.genesisRoot
}

// RootHistory returns the canonical roots in finalization order, starting
// with the genesis root.
func (s *BatchStore) RootHistory() []types.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Hash(nil), s.rootHistory...)
}

// FinalizedWithdrawalRoot returns the withdrawal root of the most recently
// finalized batch that carries one.
func (s *BatchStore) FinalizedWithdrawalRoot() (types.Hash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.batches) - 1; i >= 0; i-- {
		b := s.batches[i]
		if b.Status == BatchFinalized && !b.WithdrawalRoot.IsZero() {
			return b.WithdrawalRoot, true
		}
	}
	return types.Hash{}, false
}

// BatchCount returns the number of submitted batches, including rolled-back
// ones.
func (s *BatchStore) BatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

// Records returns the submission records emitted so far.
func (s *BatchStore) Records() []SubmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SubmissionRecord(nil), s.records...)
}

// batchAt returns the batch at the given sequence number. Caller holds s.mu.
func (s *BatchStore) batchAt(sequenceNumber uint64) (*Batch, error) {
	if sequenceNumber >= uint64(len(s.batches)) {
		return nil, ErrBatchNotFound
	}
	return s.batches[sequenceNumber], nil
}

// head returns the most recently submitted batch, or nil. Caller holds s.mu.
func (s *BatchStore) head() *Batch {
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

// submissionRecord builds the emitted record for an accepted batch.
func submissionRecord(b *Batch) SubmissionRecord {
	return SubmissionRecord{
		SequenceNumber:   b.SequenceNumber,
		ParentRootHash:   b.ParentRootHash,
		ClaimedStateRoot: b.ClaimedStateRoot,
		TxSetHash:        b.TxSetHash,
		WithdrawalRoot:   b.WithdrawalRoot,
		Submitter:        b.Submitter,
		TxCount:          uint64(b.TxCount),
		Mode:             uint8(b.Mode),
		Finalized:        b.Status == BatchFinalized,
	}
}

// ComputeTxSetHash commits to an ordered transaction hash set:
// Keccak256(h_0 || h_1 || ... || h_n).
func ComputeTxSetHash(txHashes []types.Hash) types.Hash {
	data := make([]byte, 0, len(txHashes)*types.HashLength)
	for _, h := range txHashes {
		data = append(data, h[:]...)
	}
	return crypto.Keccak256Hash(data)
}

// ReplayTransition deterministically folds a transaction hash sequence into a
// post-state root: root' = Keccak256(root || txHash) per transaction. Honest
// sequencers derive their claimed root this way, and adjudication replays the
// same fold to detect fraud.
func ReplayTransition(parentRoot types.Hash, txHashes []types.Hash) types.Hash {
	root := parentRoot
	for _, h := range txHashes {
		root = crypto.Keccak256Hash(root[:], h[:])
	}
	return root
}

package sequencer

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

var (
	genesisRoot   = types.HexToHash("0x1111")
	sequencerAddr = types.HexToAddress("0xa1")
	challengerAdr = types.HexToAddress("0xc1")
	recipientAddr = types.HexToAddress("0xd1")
)

// testClock is a controllable time source shared by the components under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testCore wires a store, bond ledger, and challenge manager on a test clock,
// with both standard participants staked to their minimums.
type testCore struct {
	cfg    Config
	clock  *testClock
	bonds  *BondLedger
	store  *BatchStore
	mgr    *ChallengeManager
	assets *MemoryVault
}

func newTestCore(t *testing.T) *testCore {
	t.Helper()

	cfg := DefaultConfig()
	clock := newTestClock()
	bonds := NewBondLedger()
	store := NewBatchStore(cfg, genesisRoot, bonds)
	store.now = clock.now
	store.SetVerifier(CommitmentVerifier{})
	mgr := NewChallengeManager(cfg, store, bonds)
	mgr.now = clock.now
	store.SetChallengeReader(mgr)

	if err := bonds.Deposit(sequencerAddr, cfg.SequencerMinBond); err != nil {
		t.Fatalf("deposit sequencer bond: %v", err)
	}
	if err := bonds.Deposit(challengerAdr, cfg.ChallengerMinBond); err != nil {
		t.Fatalf("deposit challenger bond: %v", err)
	}

	return &testCore{
		cfg:    cfg,
		clock:  clock,
		bonds:  bonds,
		store:  store,
		mgr:    mgr,
		assets: NewMemoryVault(),
	}
}

// makeTxHashes returns n deterministic distinct transaction hashes.
func makeTxHashes(n int) []types.Hash {
	hashes := make([]types.Hash, n)
	for i := range hashes {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(i+1))
		hashes[i] = crypto.Keccak256Hash(buf[:])
	}
	return hashes
}

// submitHonest submits an optimistic batch whose claimed root is the honest
// replay of txHashes from the current canonical root.
func (tc *testCore) submitHonest(t *testing.T, txHashes []types.Hash) (uint64, types.Hash) {
	t.Helper()

	parent := tc.store.CanonicalRoot()
	newRoot := ReplayTransition(parent, txHashes)
	seq, err := tc.store.SubmitBatch(sequencerAddr, ModeOptimistic, txHashes, parent, newRoot, types.Hash{}, nil)
	if err != nil {
		t.Fatalf("submit honest batch: %v", err)
	}
	return seq, newRoot
}

// submitFraudulent submits an optimistic batch with a claimed root that does
// not match the honest replay.
func (tc *testCore) submitFraudulent(t *testing.T, txHashes []types.Hash) (uint64, types.Hash) {
	t.Helper()

	parent := tc.store.CanonicalRoot()
	bogus := crypto.Keccak256Hash([]byte("bogus root"))
	seq, err := tc.store.SubmitBatch(sequencerAddr, ModeOptimistic, txHashes, parent, bogus, types.Hash{}, nil)
	if err != nil {
		t.Fatalf("submit fraudulent batch: %v", err)
	}
	return seq, bogus
}

func bond(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

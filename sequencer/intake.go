// intake.go implements transaction intake: submissions are assigned a
// per-sender sequence number, content-hashed, and retained forever for audit
// and replay. Intake does not guarantee inclusion; a transaction is only
// binding once a batch references its hash.
package sequencer

import (
	"encoding/binary"
	"sync"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/crypto"
)

// Transaction is an immutable submitted transaction record.
type Transaction struct {
	// Hash is the content hash assigned at submission.
	Hash types.Hash

	// Sender is the submitting account.
	Sender types.Address

	// Recipient is the target account.
	Recipient types.Address

	// Amount is the transferred value.
	Amount *uint256.Int

	// SenderNonce is the per-sender sequence number at submission time.
	SenderNonce uint64

	// Payload is the opaque call data. May be empty.
	Payload []byte
}

// Intake accepts transaction submissions and stores them by content hash.
type Intake struct {
	mu     sync.RWMutex
	txs    map[types.Hash]*Transaction
	nonces map[types.Address]uint64
}

// NewIntake creates an empty Intake.
func NewIntake() *Intake {
	return &Intake{
		txs:    make(map[types.Hash]*Transaction),
		nonces: make(map[types.Address]uint64),
	}
}

// Submit records a transaction and returns its content hash. The hash covers
// sender, recipient, amount, the sender's current nonce, and the payload, so
// resubmission of identical call data yields a fresh hash.
func (in *Intake) Submit(sender, recipient types.Address, amount *uint256.Int, payload []byte) (types.Hash, error) {
	if sender.IsZero() {
		return types.Hash{}, ErrSenderZero
	}
	if amount == nil {
		return types.Hash{}, ErrAmountNil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	nonce := in.nonces[sender]
	hash := computeTxHash(sender, recipient, amount, nonce, payload)

	tx := &Transaction{
		Hash:        hash,
		Sender:      sender,
		Recipient:   recipient,
		Amount:      amount.Clone(),
		SenderNonce: nonce,
		Payload:     append([]byte(nil), payload...),
	}
	in.txs[hash] = tx
	in.nonces[sender] = nonce + 1

	return hash, nil
}

// Get returns a copy of the transaction with the given hash.
func (in *Intake) Get(hash types.Hash) (*Transaction, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	tx, ok := in.txs[hash]
	if !ok {
		return nil, ErrTxNotFound
	}

	cp := *tx
	cp.Amount = tx.Amount.Clone()
	cp.Payload = append([]byte(nil), tx.Payload...)
	return &cp, nil
}

// NonceOf returns the next nonce that will be assigned to sender.
func (in *Intake) NonceOf(sender types.Address) uint64 {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.nonces[sender]
}

// Count returns the number of stored transactions.
func (in *Intake) Count() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.txs)
}

// computeTxHash derives the transaction content hash:
// Keccak256(sender || recipient || amount || nonce || payload).
func computeTxHash(sender, recipient types.Address, amount *uint256.Int, nonce uint64, payload []byte) types.Hash {
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)
	amountBytes := amount.Bytes32()
	return crypto.Keccak256Hash(sender[:], recipient[:], amountBytes[:], nonceBuf[:], payload)
}

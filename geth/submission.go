// Package geth provides the adapter layer between l2seq's type system and
// go-ethereum. It converts addresses and hashes and RLP-encodes batch
// submission records for posting as L1 calldata. This is the only package
// that imports go-ethereum directly; all other l2seq packages use
// l2seq/core/types.
package geth

import (
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/l2seq/l2seq/core/types"
	"github.com/l2seq/l2seq/sequencer"
)

// ToGethAddress converts an l2seq Address to a go-ethereum Address.
func ToGethAddress(a types.Address) gethcommon.Address {
	return gethcommon.Address(a)
}

// FromGethAddress converts a go-ethereum Address to an l2seq Address.
func FromGethAddress(a gethcommon.Address) types.Address {
	return types.Address(a)
}

// ToGethHash converts an l2seq Hash to a go-ethereum Hash.
func ToGethHash(h types.Hash) gethcommon.Hash {
	return gethcommon.Hash(h)
}

// FromGethHash converts a go-ethereum Hash to an l2seq Hash.
func FromGethHash(h gethcommon.Hash) types.Hash {
	return types.Hash(h)
}

// wireSubmission is the RLP wire form of a batch submission record.
type wireSubmission struct {
	SequenceNumber   uint64
	ParentRootHash   gethcommon.Hash
	ClaimedStateRoot gethcommon.Hash
	TxSetHash        gethcommon.Hash
	WithdrawalRoot   gethcommon.Hash
	Submitter        gethcommon.Address
	TxCount          uint64
	Mode             uint8
	Finalized        bool
}

// EncodeSubmission RLP-encodes a submission record for L1 posting.
func EncodeSubmission(rec sequencer.SubmissionRecord) ([]byte, error) {
	return rlp.EncodeToBytes(&wireSubmission{
		SequenceNumber:   rec.SequenceNumber,
		ParentRootHash:   ToGethHash(rec.ParentRootHash),
		ClaimedStateRoot: ToGethHash(rec.ClaimedStateRoot),
		TxSetHash:        ToGethHash(rec.TxSetHash),
		WithdrawalRoot:   ToGethHash(rec.WithdrawalRoot),
		Submitter:        ToGethAddress(rec.Submitter),
		TxCount:          rec.TxCount,
		Mode:             rec.Mode,
		Finalized:        rec.Finalized,
	})
}

// DecodeSubmission decodes an RLP-encoded submission record.
func DecodeSubmission(data []byte) (sequencer.SubmissionRecord, error) {
	var w wireSubmission
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return sequencer.SubmissionRecord{}, err
	}
	return sequencer.SubmissionRecord{
		SequenceNumber:   w.SequenceNumber,
		ParentRootHash:   FromGethHash(w.ParentRootHash),
		ClaimedStateRoot: FromGethHash(w.ClaimedStateRoot),
		TxSetHash:        FromGethHash(w.TxSetHash),
		WithdrawalRoot:   FromGethHash(w.WithdrawalRoot),
		Submitter:        FromGethAddress(w.Submitter),
		TxCount:          w.TxCount,
		Mode:             w.Mode,
		Finalized:        w.Finalized,
	}, nil
}

// Command l2seq runs a standalone sequencing core and exercises one full
// optimistic round: deposit a bond, submit a batch, wait out a (shortened)
// challenge window, finalize, and print the canonical root. Useful as a
// smoke check and as a wiring example.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"

	"github.com/l2seq/l2seq/core/types"
	gethadapter "github.com/l2seq/l2seq/geth"
	"github.com/l2seq/l2seq/log"
	"github.com/l2seq/l2seq/sequencer"
)

var (
	version = "v0.1.0"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("l2seq", flag.ContinueOnError)

	challengePeriod := fs.Duration("challenge-period", 2*time.Second, "Challenge window for the demo round")
	genesisHex := fs.String("genesis-root", "0x01", "Genesis state root (hex)")
	txCount := fs.Int("txs", 3, "Transactions in the demo batch")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if *showVersion {
		fmt.Printf("l2seq %s\n", version)
		return 0
	}

	logger := log.Default().Module("l2seq")

	cfg := sequencer.DefaultConfig()
	cfg.ChallengePeriod = *challengePeriod

	var admin sequencer.AdminToken
	if _, err := rand.Read(admin[:]); err != nil {
		logger.Error("admin token generation failed", "err", err)
		return 1
	}

	genesis := types.HexToHash(*genesisHex)
	gate, err := sequencer.NewFinalityGate(cfg, genesis, admin, sequencer.NewMemoryVault(), sequencer.CommitmentVerifier{}, nil)
	if err != nil {
		logger.Error("gate construction failed", "err", err)
		return 1
	}

	seq := types.HexToAddress("0xaa01")
	if err := gate.DepositBond(seq, cfg.SequencerMinBond); err != nil {
		logger.Error("bond deposit failed", "err", err)
		return 1
	}

	txHashes := make([]types.Hash, 0, *txCount)
	for i := 0; i < *txCount; i++ {
		h, err := gate.SubmitTransaction(seq, types.HexToAddress("0xbb02"), uint256.NewInt(uint64(i+1)), nil)
		if err != nil {
			logger.Error("transaction submission failed", "err", err)
			return 1
		}
		txHashes = append(txHashes, h)
	}

	newRoot := sequencer.ReplayTransition(genesis, txHashes)
	num, err := gate.SubmitBatch(seq, sequencer.ModeOptimistic, txHashes, genesis, newRoot, types.Hash{}, nil, nil)
	if err != nil {
		logger.Error("batch submission failed", "err", err)
		return 1
	}
	logger.Info("batch submitted", "sequence", num, "root", newRoot.Hex())

	for _, rec := range gate.SubmissionRecords() {
		enc, err := gethadapter.EncodeSubmission(rec)
		if err != nil {
			logger.Error("record encoding failed", "err", err)
			return 1
		}
		logger.Info("submission record", "sequence", rec.SequenceNumber, "rlp_bytes", len(enc))
	}

	time.Sleep(*challengePeriod + 100*time.Millisecond)
	if err := gate.FinalizeBatch(num); err != nil {
		logger.Error("finalization failed", "err", err)
		return 1
	}

	fmt.Printf("canonical root: %s\n", gate.CanonicalRoot().Hex())
	return 0
}

package sequencer

import "errors"

// Intake errors.
var (
	ErrSenderZero = errors.New("intake: sender address must be non-zero")
	ErrAmountNil  = errors.New("intake: amount must be non-nil")
	ErrTxNotFound = errors.New("intake: transaction not found")
)

// Batch store errors.
var (
	ErrInvalidMode             = errors.New("batch: unknown finality mode")
	ErrInvalidBatchSize        = errors.New("batch: transaction count outside configured bounds")
	ErrStaleParentRoot         = errors.New("batch: parent root does not match canonical root")
	ErrPendingBatch            = errors.New("batch: previous batch is still pending")
	ErrProofRequired           = errors.New("batch: validity mode requires a proof")
	ErrInvalidProofSize        = errors.New("batch: proof length does not match registered verifier")
	ErrProofVerificationFailed = errors.New("batch: proof verification failed")
	ErrNoVerifier              = errors.New("batch: no proof verifier registered")
	ErrBatchNotFound           = errors.New("batch: sequence number not found")
	ErrBatchNotPending         = errors.New("batch: batch is not pending")
	ErrBatchRolledBack         = errors.New("batch: batch was rolled back")
	ErrAlreadyFinalized        = errors.New("batch: already finalized")
	ErrChallengeWindowOpen     = errors.New("batch: challenge window has not closed")
	ErrChallengeUnresolved     = errors.New("batch: challenge is unresolved")
)

// Challenge manager errors.
var (
	ErrAlreadyChallenged     = errors.New("challenge: batch already challenged")
	ErrChallengeWindowClosed = errors.New("challenge: challenge window has closed")
	ErrInvalidEvidence       = errors.New("challenge: evidence does not match committed transaction set")
	ErrChallengeNotFound     = errors.New("challenge: no challenge for sequence number")
)

// Bond ledger errors.
var (
	ErrInsufficientBond  = errors.New("bond: stake below required minimum")
	ErrInsufficientStake = errors.New("bond: operation exceeds staked amount")
	ErrBondLocked        = errors.New("bond: owner has unresolved challenges")
	ErrOwnerZero         = errors.New("bond: owner address must be non-zero")
	ErrBondAmountNil     = errors.New("bond: amount must be non-nil")
)

// Withdrawal processor errors.
var (
	ErrAlreadyProcessed   = errors.New("withdrawal: leaf already processed")
	ErrInvalidMerkleProof = errors.New("withdrawal: inclusion proof does not reach withdrawal root")
	ErrNoWithdrawalRoot   = errors.New("withdrawal: no finalized withdrawal root")
	ErrLeafMismatch       = errors.New("withdrawal: leaf hash does not commit to recipient and amount")
	ErrRecipientZero      = errors.New("withdrawal: recipient address must be non-zero")
	ErrWithdrawAmountNil  = errors.New("withdrawal: amount must be positive")
	ErrNilAssetTransfer   = errors.New("withdrawal: nil asset transfer capability")
)

// Attestation errors.
var (
	ErrNoAttestationKey   = errors.New("attest: no key registered for submitter")
	ErrInvalidAttestation = errors.New("attest: attestation verification failed")
	ErrAttestationMissing = errors.New("attest: attestation required but not supplied")
)

// Finality gate errors.
var (
	ErrSystemPaused = errors.New("gate: system is paused")
	ErrUnauthorized = errors.New("gate: admin token mismatch")
	ErrNilVerifier  = errors.New("gate: verifier must be non-nil")
)

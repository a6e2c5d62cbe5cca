package submission

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StepKind identifies a sub-operation of a bridging run.
type StepKind string

const (
	StepMint     StepKind = "mint"
	StepApprove  StepKind = "approve"
	StepTransfer StepKind = "transfer"
)

// TransferRequest is what a caller asks the orchestrator to bridge.
type TransferRequest struct {
	Amount      *big.Int
	Asset       common.Address
	Destination [32]byte
}

// Validate checks the request is well formed before a run starts.
func (r TransferRequest) Validate() error {
	if r.Amount == nil || r.Amount.Sign() <= 0 {
		return errors.New("amount must be positive")
	}
	if r.Asset == (common.Address{}) {
		return errors.New("asset address is required")
	}
	return nil
}

// DestinationHex returns the destination account as 0x-prefixed hex.
func (r TransferRequest) DestinationHex() string {
	return hexutil.Encode(r.Destination[:])
}

// AccountState is the on-chain snapshot a plan is built from.
// It is read once per run and never cached.
type AccountState struct {
	OwnedBalance     *big.Int
	GrantedAllowance *big.Int
	NativeBalance    *big.Int
}

// Step is a single sub-operation. Amount is denominated in the asset's base
// units; for Mint it is also the native value sent (wrapping is 1:1). Fee is
// only set on Transfer.
type Step struct {
	Kind        StepKind
	Asset       common.Address
	Amount      *big.Int
	Fee         *big.Int
	Destination [32]byte
}

// NativeValue is the native currency attached to the step's transaction.
func (s Step) NativeValue() *big.Int {
	switch s.Kind {
	case StepMint:
		return new(big.Int).Set(s.Amount)
	case StepTransfer:
		if s.Fee != nil {
			return new(big.Int).Set(s.Fee)
		}
	}
	return new(big.Int)
}

// CostEstimate is the execution cost of one step. Simulated is false when the
// gas units come from the fallback constant instead of a simulated call.
type CostEstimate struct {
	GasUnits  uint64
	GasPrice  *big.Int
	Simulated bool
}

// Cost returns GasUnits * GasPrice.
func (e CostEstimate) Cost() *big.Int {
	if e.GasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(e.GasUnits), e.GasPrice)
}

// TransactionHandle identifies a submitted transaction.
type TransactionHandle struct {
	Hash        common.Hash
	BlockNumber uint64
	GasUsed     uint64
}

// OutcomeStatus is the per-step execution status.
type OutcomeStatus string

const (
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeSubmitted OutcomeStatus = "submitted"
	OutcomeFailed    OutcomeStatus = "failed"
)

// StepOutcome records what happened to a planned step.
type StepOutcome struct {
	Step   Step
	Status OutcomeStatus
	Tx     *TransactionHandle
	Err    error
}

// RunStatus is the overall result of a run.
type RunStatus string

const (
	RunCompleted                    RunStatus = "completed"
	RunFailedAtStep                 RunStatus = "failed_at_step"
	RunTimedOutWaitingForCompletion RunStatus = "timed_out_waiting_for_completion"
	RunCancelled                    RunStatus = "cancelled"
)

// Correlation is the data used to recognise the completion event of a run.
type Correlation struct {
	Contract  common.Address
	EventKind string
	FromBlock uint64
}

// CompletionEvent is the downstream acknowledgement observed for a run.
type CompletionEvent struct {
	Contract    common.Address
	EventKind   string
	TxHash      common.Hash
	BlockNumber uint64
}

// Result is returned by Orchestrator.Submit, including on failure, so callers
// can see which steps landed before the error.
type Result struct {
	RunID      string
	Request    TransferRequest
	Plan       []Step
	Estimates  []CostEstimate
	Outcomes   []StepOutcome
	Status     RunStatus
	Completion *CompletionEvent
}

// TransferTx returns the handle of the submitted transfer transaction, if any.
func (r *Result) TransferTx() *TransactionHandle {
	if r == nil {
		return nil
	}
	for _, o := range r.Outcomes {
		if o.Step.Kind == StepTransfer && o.Status == OutcomeSubmitted {
			return o.Tx
		}
	}
	return nil
}

// Quote is the dry-run view of a request: what would be executed and what it
// would cost, without submitting anything.
type Quote struct {
	Request       TransferRequest
	State         AccountState
	Plan          []Step
	Estimates     []CostEstimate
	Validation    Validation
	NativeBalance *big.Int
}

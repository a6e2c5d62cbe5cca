// Package transfer holds the API-facing model of a bridging run.
package transfer

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/chainsafe/bridge-submitter/pkg/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	StatusPending            Status = "pending"
	StatusRunning            Status = "running"
	StatusAwaitingCompletion Status = "awaiting_completion"
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
	StatusTimedOut           Status = "timed_out"
	StatusCancelled          Status = "cancelled"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// StatusFromRun maps the orchestrator's run status.
func StatusFromRun(s submission.RunStatus) Status {
	switch s {
	case submission.RunCompleted:
		return StatusCompleted
	case submission.RunTimedOutWaitingForCompletion:
		return StatusTimedOut
	case submission.RunCancelled:
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// Step status values
const (
	StepPlanned   = "planned"
	StepSubmitted = "submitted"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
)

// Request is a transfer request as sent over the API.
//
// Amount is an integer in the asset's base units unless Decimals is set, in
// which case it is a decimal amount scaled by 10^Decimals.
type Request struct {
	Asset       string `json:"asset"`
	Amount      string `json:"amount"`
	Decimals    *uint8 `json:"decimals,omitempty"`
	Destination string `json:"destination"`
}

// ToSubmission parses the request into the orchestrator's form.
func (r *Request) ToSubmission() (submission.TransferRequest, error) {
	if r == nil {
		return submission.TransferRequest{}, errors.New("request is required")
	}
	if !common.IsHexAddress(r.Asset) {
		return submission.TransferRequest{}, fmt.Errorf("invalid asset address %q", r.Asset)
	}

	amount, err := r.baseAmount()
	if err != nil {
		return submission.TransferRequest{}, err
	}

	dest, err := ParseDestination(r.Destination)
	if err != nil {
		return submission.TransferRequest{}, err
	}

	req := submission.TransferRequest{
		Amount:      amount,
		Asset:       common.HexToAddress(r.Asset),
		Destination: dest,
	}
	if err := req.Validate(); err != nil {
		return submission.TransferRequest{}, err
	}
	return req, nil
}

func (r *Request) baseAmount() (*big.Int, error) {
	if r.Decimals != nil {
		return units.ParseUnits(r.Amount, *r.Decimals)
	}
	amount, ok := new(big.Int).SetString(strings.TrimSpace(r.Amount), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", r.Amount)
	}
	return amount, nil
}

// ParseDestination decodes a 32-byte destination account. A 20-byte address
// is left-padded.
func ParseDestination(s string) ([32]byte, error) {
	var dest [32]byte
	raw, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil {
		return dest, fmt.Errorf("invalid destination %q: %w", s, err)
	}
	switch len(raw) {
	case 32, common.AddressLength:
		copy(dest[32-len(raw):], raw)
		return dest, nil
	default:
		return dest, fmt.Errorf("destination must be 20 or 32 bytes, got %d", len(raw))
	}
}

// Step is the progress of one planned sub-operation.
type Step struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Fee         string `json:"fee,omitempty"`
	GasUnits    uint64 `json:"gas_units,omitempty"`
	GasPrice    string `json:"gas_price,omitempty"`
	Simulated   bool   `json:"simulated"`
	Status      string `json:"status"`
	TxHash      string `json:"tx_hash,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Completion is the observed completion event.
type Completion struct {
	Contract    string `json:"contract"`
	Event       string `json:"event"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// Transfer is a bridging run tracked by the service.
type Transfer struct {
	ID          string      `json:"id"`
	Account     string      `json:"account"`
	Asset       string      `json:"asset"`
	Amount      string      `json:"amount"`
	Destination string      `json:"destination"`
	RequestedBy string      `json:"requested_by,omitempty"`
	Status      Status      `json:"status"`
	Steps       []Step      `json:"steps"`
	Error       string      `json:"error,omitempty"`
	ErrorKind   string      `json:"error_kind,omitempty"`
	Shortfall   string      `json:"shortfall,omitempty"`
	Completion  *Completion `json:"completion,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// New creates a pending transfer for req.
func New(id string, account common.Address, req submission.TransferRequest, now time.Time) *Transfer {
	return &Transfer{
		ID:          id,
		Account:     account.Hex(),
		Asset:       req.Asset.Hex(),
		Amount:      req.Amount.String(),
		Destination: req.DestinationHex(),
		Status:      StatusPending,
		Steps:       []Step{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy safe to hand out while the run continues.
func (t *Transfer) Clone() *Transfer {
	if t == nil {
		return nil
	}
	c := *t
	c.Steps = append([]Step(nil), t.Steps...)
	if t.Completion != nil {
		comp := *t.Completion
		c.Completion = &comp
	}
	return &c
}

// SetPlan replaces the steps with the planned ones.
func (t *Transfer) SetPlan(plan []submission.Step, estimates []submission.CostEstimate) {
	t.Steps = Steps(plan, estimates)
}

// ApplyResult records the final outcome of a run.
func (t *Transfer) ApplyResult(res *submission.Result, err error) {
	if res != nil {
		if len(res.Plan) > 0 {
			steps := Steps(res.Plan, res.Estimates)
			for i, o := range res.Outcomes {
				if i < len(steps) {
					applyOutcome(&steps[i], o)
				}
			}
			t.Steps = steps
		}
		t.Status = StatusFromRun(res.Status)
		if res.Completion != nil {
			t.Completion = &Completion{
				Contract:    res.Completion.Contract.Hex(),
				Event:       res.Completion.EventKind,
				TxHash:      res.Completion.TxHash.Hex(),
				BlockNumber: res.Completion.BlockNumber,
			}
		}
	} else if err != nil {
		t.Status = StatusFailed
	}

	if err != nil {
		t.Error = err.Error()
		t.ErrorKind = string(submission.KindOf(err))
		var runErr *submission.Error
		if errors.As(err, &runErr) && runErr.Shortfall != nil {
			t.Shortfall = runErr.Shortfall.String()
		}
	}
}

func applyOutcome(s *Step, o submission.StepOutcome) {
	switch o.Status {
	case submission.OutcomeSubmitted:
		s.Status = StepSubmitted
	case submission.OutcomeFailed:
		s.Status = StepFailed
	case submission.OutcomeSkipped:
		s.Status = StepSkipped
	}
	if o.Tx != nil {
		s.TxHash = o.Tx.Hash.Hex()
		s.BlockNumber = o.Tx.BlockNumber
	}
	if o.Err != nil {
		s.Error = o.Err.Error()
	}
}

// Steps renders a plan and its estimates as planned steps.
func Steps(plan []submission.Step, estimates []submission.CostEstimate) []Step {
	steps := make([]Step, len(plan))
	for i, p := range plan {
		s := Step{Kind: string(p.Kind), Amount: bigString(p.Amount), Status: StepPlanned}
		if p.Fee != nil {
			s.Fee = p.Fee.String()
		}
		if i < len(estimates) {
			s.GasUnits = estimates[i].GasUnits
			s.GasPrice = bigString(estimates[i].GasPrice)
			s.Simulated = estimates[i].Simulated
		}
		steps[i] = s
	}
	return steps
}

// Quote is the dry-run view of a request.
type Quote struct {
	Account        string `json:"account"`
	Steps          []Step `json:"steps"`
	RequiredNative string `json:"required_native"`
	NativeBalance  string `json:"native_balance"`
	Shortfall      string `json:"shortfall"`
	Sufficient     bool   `json:"sufficient"`
}

// NewQuote converts an orchestrator quote.
func NewQuote(account common.Address, q *submission.Quote) *Quote {
	return &Quote{
		Account:        account.Hex(),
		Steps:          Steps(q.Plan, q.Estimates),
		RequiredNative: bigString(q.Validation.Required),
		NativeBalance:  bigString(q.NativeBalance),
		Shortfall:      bigString(q.Validation.Shortfall),
		Sufficient:     q.Validation.OK,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

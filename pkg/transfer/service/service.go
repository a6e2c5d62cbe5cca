package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	apperrors "github.com/chainsafe/bridge-submitter/pkg/app/errors"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultHistoryLimit bounds how many finished transfers are kept in memory.
const defaultHistoryLimit = 100

var (
	ErrTransferInProgress = errors.New("a transfer is already in progress for this account")
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrTransferFinished   = errors.New("transfer already finished")
)

// Orchestrator runs bridging requests for a single account.
type Orchestrator interface {
	Account() common.Address
	Quote(ctx context.Context, req submission.TransferRequest) (*submission.Quote, error)
	Submit(ctx context.Context, req submission.TransferRequest, opts ...submission.RunOption) (*submission.Result, error)
}

// Service defines the interface for the transfer business logic
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	StartTransfer(ctx context.Context, req *transfer.Request, requestedBy string) (*transfer.Transfer, error)
	GetTransfer(ctx context.Context, id string) (*transfer.Transfer, error)
	ListTransfers(ctx context.Context) ([]*transfer.Transfer, error)
	CancelTransfer(ctx context.Context, id string) (*transfer.Transfer, error)
	Quote(ctx context.Context, req *transfer.Request) (*transfer.Quote, error)
}

type run struct {
	t      *transfer.Transfer
	cancel context.CancelFunc
	done   chan struct{}
}

// TransferService runs transfers in the background, one at a time, since
// every run spends from the same account.
type TransferService struct {
	orch   Orchestrator
	logger *zap.Logger

	baseCtx  context.Context
	stopRuns context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.Mutex
	runs   map[string]*run
	active string

	historyLimit int
	now          func() time.Time
}

// NewService creates a new transfer service. Close must be called to stop
// in-flight runs.
func NewService(orch Orchestrator, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TransferService{
		orch:         orch,
		logger:       logger,
		baseCtx:      ctx,
		stopRuns:     cancel,
		runs:         make(map[string]*run),
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
	}
}

// StartTransfer checks the account can pay for req, then starts the run in
// the background and returns it in the pending state.
func (s *TransferService) StartTransfer(ctx context.Context, req *transfer.Request, requestedBy string) (*transfer.Transfer, error) {
	sreq, err := req.ToSubmission()
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	s.mu.Lock()
	if s.active != "" {
		active := s.active
		s.mu.Unlock()
		return nil, apperrors.ConflictError(ErrTransferInProgress,
			fmt.Sprintf("transfer %s is still in progress", active))
	}
	id := uuid.NewString()
	s.active = id
	s.mu.Unlock()

	if err := s.preflight(ctx, sreq); err != nil {
		s.release(id)
		return nil, err
	}

	t := transfer.New(id, s.orch.Account(), sreq, s.now())
	t.RequestedBy = requestedBy

	runCtx, cancel := context.WithCancel(s.baseCtx)
	r := &run{t: t, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.runs[id] = r
	snapshot := t.Clone()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(runCtx, r, sreq)

	return snapshot, nil
}

// preflight rejects requests the account cannot pay for before a run is
// created. The run reads state again before submitting anything.
func (s *TransferService) preflight(ctx context.Context, req submission.TransferRequest) error {
	q, err := s.orch.Quote(ctx, req)
	if err != nil {
		return mapRunError(err)
	}
	if !q.Validation.OK {
		return apperrors.UnprocessableError(q.Validation.Err(), "insufficient native balance", map[string]any{
			"required_native": q.Validation.Required.String(),
			"native_balance":  q.NativeBalance.String(),
			"shortfall":       q.Validation.Shortfall.String(),
		})
	}
	return nil
}

func (s *TransferService) execute(ctx context.Context, r *run, req submission.TransferRequest) {
	defer s.wg.Done()
	defer close(r.done)
	defer r.cancel()

	s.update(r, func(t *transfer.Transfer) { t.Status = transfer.StatusRunning })

	res, err := s.orch.Submit(ctx, req,
		submission.WithRunID(r.t.ID),
		submission.WithRunObserver(func(ev submission.StepEvent) { s.observe(r, ev) }),
	)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("transfer_service", errorType(err)).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r.t.ApplyResult(res, err)
	r.t.UpdatedAt = s.now()
	if s.active == r.t.ID {
		s.active = ""
	}
	s.pruneLocked()
}

func (s *TransferService) observe(r *run, ev submission.StepEvent) {
	s.update(r, func(t *transfer.Transfer) {
		switch ev.Type {
		case submission.EventPlanned:
			t.SetPlan(ev.Plan, nil)
		case submission.EventStepSubmitted:
			if ev.Index < len(t.Steps) && ev.Tx != nil {
				t.Steps[ev.Index].Status = transfer.StepSubmitted
				t.Steps[ev.Index].TxHash = ev.Tx.Hash.Hex()
				t.Steps[ev.Index].BlockNumber = ev.Tx.BlockNumber
			}
		case submission.EventStepFailed:
			if ev.Index < len(t.Steps) {
				t.Steps[ev.Index].Status = transfer.StepFailed
				if ev.Tx != nil {
					t.Steps[ev.Index].TxHash = ev.Tx.Hash.Hex()
					t.Steps[ev.Index].BlockNumber = ev.Tx.BlockNumber
				}
				if ev.Err != nil {
					t.Steps[ev.Index].Error = ev.Err.Error()
				}
			}
		case submission.EventStepSkipped:
			if ev.Index < len(t.Steps) {
				t.Steps[ev.Index].Status = transfer.StepSkipped
			}
		case submission.EventWatching:
			t.Status = transfer.StatusAwaitingCompletion
		}
	})
}

func (s *TransferService) update(r *run, fn func(*transfer.Transfer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(r.t)
	r.t.UpdatedAt = s.now()
}

func (s *TransferService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == id {
		s.active = ""
	}
}

// pruneLocked drops the oldest finished transfers beyond the history limit.
func (s *TransferService) pruneLocked() {
	if len(s.runs) <= s.historyLimit {
		return
	}
	finished := make([]*run, 0, len(s.runs))
	for _, r := range s.runs {
		if r.t.Status.Terminal() {
			finished = append(finished, r)
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].t.CreatedAt.Before(finished[j].t.CreatedAt) })
	for _, r := range finished {
		if len(s.runs) <= s.historyLimit {
			return
		}
		delete(s.runs, r.t.ID)
	}
}

// GetTransfer returns a snapshot of the transfer with the given id.
func (s *TransferService) GetTransfer(_ context.Context, id string) (*transfer.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, apperrors.ResourceNotFoundError(ErrTransferNotFound, "transfer not found")
	}
	return r.t.Clone(), nil
}

// ListTransfers returns all known transfers, newest first.
func (s *TransferService) ListTransfers(_ context.Context) ([]*transfer.Transfer, error) {
	s.mu.Lock()
	out := make([]*transfer.Transfer, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r.t.Clone())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CancelTransfer cancels an in-flight transfer and waits for the run to
// stop. Steps already submitted stay on-chain.
func (s *TransferService) CancelTransfer(ctx context.Context, id string) (*transfer.Transfer, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.ResourceNotFoundError(ErrTransferNotFound, "transfer not found")
	}
	if r.t.Status.Terminal() {
		s.mu.Unlock()
		return nil, apperrors.ConflictError(ErrTransferFinished, "transfer already finished")
	}
	s.mu.Unlock()

	r.cancel()
	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.GetTransfer(ctx, id)
}

// Quote prices req without submitting anything.
func (s *TransferService) Quote(ctx context.Context, req *transfer.Request) (*transfer.Quote, error) {
	sreq, err := req.ToSubmission()
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	q, err := s.orch.Quote(ctx, sreq)
	if err != nil {
		return nil, mapRunError(err)
	}
	return transfer.NewQuote(s.orch.Account(), q), nil
}

// Close cancels in-flight runs and waits for them to finish.
func (s *TransferService) Close() {
	s.stopRuns()
	s.wg.Wait()
}

func mapRunError(err error) error {
	switch submission.KindOf(err) {
	case submission.KindReadFailure, submission.KindEstimationFailure:
		return apperrors.DependencyError(err, err.Error())
	case submission.KindInsufficientBalance:
		return apperrors.UnprocessableError(err, "insufficient native balance", nil)
	default:
		return apperrors.GeneralError(err)
	}
}

func errorType(err error) string {
	if kind := submission.KindOf(err); kind != "" {
		return string(kind)
	}
	return "unknown"
}

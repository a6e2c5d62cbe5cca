// Package submission orchestrates a bridging transfer: it works out which
// prerequisite steps (mint, approve) are needed, prices the whole chain,
// rejects it early when the account cannot pay, submits the steps in order and
// waits for the bridge's completion event.
package submission

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Capabilities are the external collaborators the orchestrator drives.
type Capabilities struct {
	Oracle    BalanceOracle
	Simulator CostSimulator
	Submitter Submitter
	Events    EventSubscriber
}

func (c Capabilities) validate() error {
	if c.Oracle == nil {
		return errors.New("nil balance oracle")
	}
	if c.Simulator == nil {
		return errors.New("nil cost simulator")
	}
	if c.Submitter == nil {
		return errors.New("nil submitter")
	}
	if c.Events == nil {
		return errors.New("nil event subscriber")
	}
	return nil
}

// Orchestrator runs bridging requests for a single account.
//
// Runs share no state, but runs for the same account must not overlap: a plan
// built from an allowance snapshot taken before another run's approval lands
// can under- or over-approve. Callers serialize requests per account.
type Orchestrator struct {
	cfg     Config
	account common.Address

	oracle    BalanceOracle
	estimator *GasEstimator
	executor  *StepExecutor
	watcher   *CompletionWatcher

	observer Observer
	logger   *zap.Logger
}

// New creates an orchestrator submitting on behalf of account.
func New(cfg Config, account common.Address, caps Capabilities, opts ...Option) (*Orchestrator, error) {
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := caps.validate(); err != nil {
		return nil, err
	}
	if account == (common.Address{}) {
		return nil, errors.New("account address is required")
	}

	s := applyOptions(opts)
	return &Orchestrator{
		cfg:       cfg,
		account:   account,
		oracle:    caps.Oracle,
		estimator: NewGasEstimator(caps.Simulator, cfg.FallbackTransferGas, s.logger),
		executor:  NewStepExecutor(caps.Submitter, s.logger),
		watcher:   NewCompletionWatcher(caps.Events, cfg.CompletionTimeout, s.logger),
		observer:  s.observer,
		logger:    s.logger,
	}, nil
}

// Account returns the account runs are submitted from.
func (o *Orchestrator) Account() common.Address {
	return o.account
}

// Quote reads the account state, builds and prices the plan and runs the
// balance check without submitting anything. An insufficient balance is
// reported in Quote.Validation, not as an error.
func (o *Orchestrator) Quote(ctx context.Context, req TransferRequest) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return o.prepare(ctx, req)
}

// Submit executes a bridging request end to end. The returned Result is
// non-nil whenever the request was valid, and records the steps that were
// submitted before any failure.
func (o *Orchestrator) Submit(ctx context.Context, req TransferRequest, opts ...RunOption) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	rs := applyRunOptions(opts)
	observe := o.observerFor(rs)
	res := &Result{RunID: rs.runID, Request: req}

	logger := o.logger.With(zap.String("run_id", res.RunID))
	logger.Info("Starting bridging run",
		zap.String("asset", req.Asset.Hex()),
		zap.String("amount", req.Amount.String()),
		zap.String("destination", req.DestinationHex()),
		zap.String("account", o.account.Hex()))

	metrics.ActiveRuns.Inc()
	start := time.Now()
	defer func() {
		metrics.ActiveRuns.Dec()
		metrics.RunDuration.WithLabelValues(string(res.Status)).Observe(time.Since(start).Seconds())
		metrics.RunsTotal.WithLabelValues(string(res.Status)).Inc()
	}()

	fail := func(err error) (*Result, error) {
		res.Status = statusFor(err)
		logger.Error("Bridging run failed",
			zap.String("status", string(res.Status)),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
		observe.emit(StepEvent{RunID: res.RunID, Type: EventFailed, Err: err})
		return res, err
	}

	quote, err := o.prepare(ctx, req)
	if quote != nil {
		res.Plan = quote.Plan
		res.Estimates = quote.Estimates
	}
	if err != nil {
		return fail(err)
	}

	if err := quote.Validation.Err(); err != nil {
		metrics.InsufficientBalanceTotal.Inc()
		logger.Warn("Insufficient native balance",
			zap.String("required_wei", quote.Validation.Required.String()),
			zap.String("balance_wei", quote.NativeBalance.String()),
			zap.String("shortfall_wei", quote.Validation.Shortfall.String()))
		return fail(err)
	}

	observe.emit(StepEvent{RunID: res.RunID, Type: EventPlanned, Plan: res.Plan})

	outcomes, err := o.executor.Execute(ctx, res.RunID, res.Plan, res.Estimates, o.account, observe)
	res.Outcomes = outcomes
	if err != nil {
		return fail(err)
	}

	transfer := res.TransferTx()
	if transfer == nil {
		return fail(newError(KindSubmissionFailure, StepTransfer, errors.New("transfer was not submitted")))
	}

	observe.emit(StepEvent{RunID: res.RunID, Type: EventWatching, Step: StepTransfer, Tx: transfer})
	ev, err := o.watcher.Await(ctx, Correlation{
		Contract:  o.cfg.CompletionContract,
		EventKind: o.cfg.CompletionEvent,
		FromBlock: transfer.BlockNumber,
	})
	if err != nil {
		return fail(err)
	}

	res.Completion = &ev
	res.Status = RunCompleted
	observe.emit(StepEvent{RunID: res.RunID, Type: EventCompleted, Tx: transfer})
	logger.Info("Bridging run completed",
		zap.String("transfer_tx", transfer.Hash.Hex()),
		zap.String("completion_tx", ev.TxHash.Hex()))

	return res, nil
}

// prepare reads state, builds the plan, prices it and validates the balance.
// The returned Quote is partially filled when estimation fails.
func (o *Orchestrator) prepare(ctx context.Context, req TransferRequest) (*Quote, error) {
	state, err := o.oracle.ReadAccountState(ctx, req.Asset, o.account)
	if err != nil {
		return nil, newError(KindReadFailure, "", err)
	}
	if state.OwnedBalance == nil || state.GrantedAllowance == nil || state.NativeBalance == nil {
		return nil, newError(KindReadFailure, "", errors.New("incomplete account state"))
	}

	fee, err := o.bridgeFee(ctx)
	if err != nil {
		return nil, newError(KindReadFailure, "", err)
	}

	plan := BuildPlan(req, state, PlanConfig{
		Mintable:  o.cfg.isMintable(req.Asset),
		BridgeFee: fee,
	})

	q := &Quote{
		Request:       req,
		State:         state,
		Plan:          plan,
		NativeBalance: state.NativeBalance,
	}

	estimates, err := o.estimator.EstimatePlan(ctx, plan, o.account)
	q.Estimates = estimates
	if err != nil {
		return q, err
	}

	q.Validation = Validate(plan, estimates, state.NativeBalance)
	return q, nil
}

func (o *Orchestrator) bridgeFee(ctx context.Context) (*big.Int, error) {
	if o.cfg.BridgeFee != nil {
		return o.cfg.BridgeFee, nil
	}
	fee, err := o.oracle.ReadBridgeFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge fee: %w", err)
	}
	return fee, nil
}

func (o *Orchestrator) observerFor(rs runSettings) Observer {
	if rs.observer == nil {
		return o.observer
	}
	if o.observer == nil {
		return rs.observer
	}
	global, run := o.observer, rs.observer
	return func(ev StepEvent) {
		global(ev)
		run(ev)
	}
}

func statusFor(err error) RunStatus {
	switch KindOf(err) {
	case KindCompletionTimeout:
		return RunTimedOutWaitingForCompletion
	case KindCancelled:
		return RunCancelled
	default:
		return RunFailedAtStep
	}
}

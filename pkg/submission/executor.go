package submission

import (
	"context"
	"time"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// StepExecutor submits the steps of a plan one after another.
type StepExecutor struct {
	submitter Submitter
	logger    *zap.Logger
}

// NewStepExecutor creates an executor around a submitter.
func NewStepExecutor(submitter Submitter, logger *zap.Logger) *StepExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StepExecutor{submitter: submitter, logger: logger}
}

// Execute submits each step in order and returns one outcome per step.
//
// Later steps depend on the on-chain effects of earlier ones, so steps are
// never submitted concurrently. Execution stops at the first failure or
// cancellation; the remaining steps are reported as skipped. Steps already
// submitted are not undone.
func (x *StepExecutor) Execute(
	ctx context.Context,
	runID string,
	plan []Step,
	estimates []CostEstimate,
	account common.Address,
	observe Observer,
) ([]StepOutcome, error) {
	outcomes := make([]StepOutcome, len(plan))
	for i, step := range plan {
		outcomes[i] = StepOutcome{Step: step, Status: OutcomeSkipped}
	}

	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			x.skipRemaining(runID, plan, i, observe)
			return outcomes, newError(KindCancelled, step.Kind, err)
		}

		var gasLimit uint64
		if i < len(estimates) && estimates[i].Simulated {
			gasLimit = estimates[i].GasUnits
		}

		observe.emit(StepEvent{RunID: runID, Type: EventStepStarted, Index: i, Step: step.Kind})
		x.logger.Info("Submitting step",
			zap.String("run_id", runID),
			zap.String("step", string(step.Kind)),
			zap.String("amount", orZero(step.Amount).String()),
			zap.Uint64("gas_limit", gasLimit))

		start := time.Now()
		handle, err := x.submitter.Submit(ctx, step, account, gasLimit)
		metrics.StepDuration.WithLabelValues(string(step.Kind)).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.StepsTotal.WithLabelValues(string(step.Kind), string(OutcomeFailed)).Inc()
			outcomes[i].Status = OutcomeFailed
			outcomes[i].Err = err

			// A broadcast transaction may still be mined; keep its hash.
			var tx *TransactionHandle
			if handle.Hash != (common.Hash{}) {
				h := handle
				tx = &h
				outcomes[i].Tx = tx
			}

			x.logger.Error("Step submission failed",
				zap.String("run_id", runID),
				zap.String("step", string(step.Kind)),
				zap.String("tx_hash", txHashOf(tx)),
				zap.Error(err))
			observe.emit(StepEvent{RunID: runID, Type: EventStepFailed, Index: i, Step: step.Kind, Tx: tx, Err: err})
			x.skipRemaining(runID, plan, i+1, observe)

			kind := KindSubmissionFailure
			if ctx.Err() != nil {
				kind = KindCancelled
			}
			return outcomes, newError(kind, step.Kind, err)
		}

		metrics.StepsTotal.WithLabelValues(string(step.Kind), string(OutcomeSubmitted)).Inc()
		h := handle
		outcomes[i].Status = OutcomeSubmitted
		outcomes[i].Tx = &h

		x.logger.Info("Step submitted",
			zap.String("run_id", runID),
			zap.String("step", string(step.Kind)),
			zap.String("tx_hash", handle.Hash.Hex()),
			zap.Uint64("block_number", handle.BlockNumber))
		observe.emit(StepEvent{RunID: runID, Type: EventStepSubmitted, Index: i, Step: step.Kind, Tx: &h})
	}

	return outcomes, nil
}

func txHashOf(tx *TransactionHandle) string {
	if tx == nil {
		return ""
	}
	return tx.Hash.Hex()
}

func (x *StepExecutor) skipRemaining(runID string, plan []Step, from int, observe Observer) {
	for j := from; j < len(plan); j++ {
		metrics.StepsTotal.WithLabelValues(string(plan[j].Kind), string(OutcomeSkipped)).Inc()
		observe.emit(StepEvent{RunID: runID, Type: EventStepSkipped, Index: j, Step: plan[j].Kind})
	}
}

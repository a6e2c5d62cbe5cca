package submission

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeStepPlan() ([]Step, []CostEstimate) {
	plan := BuildPlan(testRequest(100), testState(40, 0, 0), PlanConfig{Mintable: true, BridgeFee: big.NewInt(1)})
	estimates := []CostEstimate{
		{GasUnits: 45_000, GasPrice: big.NewInt(2), Simulated: true},
		{GasUnits: 46_000, GasPrice: big.NewInt(2), Simulated: true},
		{GasUnits: DefaultFallbackTransferGas, GasPrice: big.NewInt(2)},
	}
	return plan, estimates
}

func TestStepExecutor_SubmitsInOrder(t *testing.T) {
	sub := &MockSubmitter{}
	var events []EventType
	observe := Observer(func(ev StepEvent) { events = append(events, ev.Type) })

	plan, estimates := threeStepPlan()
	outcomes, err := NewStepExecutor(sub, nil).Execute(context.Background(), "run-1", plan, estimates, testAccount, observe)
	require.NoError(t, err)

	assert.Equal(t, []StepKind{StepMint, StepApprove, StepTransfer}, sub.Submitted())
	assert.Equal(t, []uint64{45_000, 46_000, 0}, sub.GasLimits(), "fallback estimates are re-estimated at send time")
	for _, o := range outcomes {
		assert.Equal(t, OutcomeSubmitted, o.Status)
		require.NotNil(t, o.Tx)
	}
	assert.Equal(t, []EventType{
		EventStepStarted, EventStepSubmitted,
		EventStepStarted, EventStepSubmitted,
		EventStepStarted, EventStepSubmitted,
	}, events)
}

func TestStepExecutor_StopsAtFirstFailure(t *testing.T) {
	sub := &MockSubmitter{
		SubmitFunc: func(_ context.Context, step Step, _ common.Address, _ uint64) (TransactionHandle, error) {
			if step.Kind == StepApprove {
				return TransactionHandle{}, errors.New("user rejected")
			}
			return TransactionHandle{Hash: common.HexToHash("0x01"), BlockNumber: 10}, nil
		},
	}
	var skipped []StepKind
	observe := Observer(func(ev StepEvent) {
		if ev.Type == EventStepSkipped {
			skipped = append(skipped, ev.Step)
		}
	})

	plan, estimates := threeStepPlan()
	outcomes, err := NewStepExecutor(sub, nil).Execute(context.Background(), "run-2", plan, estimates, testAccount, observe)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubmissionFailure))

	var runErr *Error
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, StepApprove, runErr.Step)

	assert.Equal(t, []StepKind{StepMint, StepApprove}, sub.Submitted(), "transfer must not be submitted")
	assert.Equal(t, OutcomeSubmitted, outcomes[0].Status)
	assert.Equal(t, OutcomeFailed, outcomes[1].Status)
	assert.EqualError(t, outcomes[1].Err, "user rejected")
	assert.Equal(t, OutcomeSkipped, outcomes[2].Status)
	assert.Nil(t, outcomes[2].Tx)
	assert.Equal(t, []StepKind{StepTransfer}, skipped)
}

func TestStepExecutor_CancelledBeforeNextStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &MockSubmitter{
		SubmitFunc: func(_ context.Context, _ Step, _ common.Address, _ uint64) (TransactionHandle, error) {
			cancel()
			return TransactionHandle{Hash: common.HexToHash("0x01")}, nil
		},
	}

	plan, estimates := threeStepPlan()
	outcomes, err := NewStepExecutor(sub, nil).Execute(ctx, "run-3", plan, estimates, testAccount, nil)
	require.Error(t, err)
	assert.Equal(t, KindCancelled, KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []StepKind{StepMint}, sub.Submitted())
	assert.Equal(t, OutcomeSubmitted, outcomes[0].Status)
	assert.Equal(t, OutcomeSkipped, outcomes[1].Status)
	assert.Equal(t, OutcomeSkipped, outcomes[2].Status)
}

func TestStepExecutor_KeepsHashOfBroadcastFailure(t *testing.T) {
	broadcast := common.HexToHash("0xbeef")
	sub := &MockSubmitter{
		SubmitFunc: func(_ context.Context, step Step, _ common.Address, _ uint64) (TransactionHandle, error) {
			if step.Kind == StepTransfer {
				return TransactionHandle{Hash: broadcast}, errors.New("failed to wait for transaction: context deadline exceeded")
			}
			return TransactionHandle{Hash: common.HexToHash("0x01"), BlockNumber: 10}, nil
		},
	}
	var failed *StepEvent
	observe := Observer(func(ev StepEvent) {
		if ev.Type == EventStepFailed {
			failed = &ev
		}
	})

	plan, estimates := threeStepPlan()
	outcomes, err := NewStepExecutor(sub, nil).Execute(context.Background(), "run-4", plan, estimates, testAccount, observe)
	require.Error(t, err)
	assert.Equal(t, KindSubmissionFailure, KindOf(err))

	assert.Equal(t, OutcomeFailed, outcomes[2].Status)
	require.NotNil(t, outcomes[2].Tx, "a broadcast transaction is reported even when waiting for it failed")
	assert.Equal(t, broadcast, outcomes[2].Tx.Hash)

	require.NotNil(t, failed)
	require.NotNil(t, failed.Tx)
	assert.Equal(t, broadcast, failed.Tx.Hash)
}

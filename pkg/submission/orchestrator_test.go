package submission

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	oracle *MockOracle
	sim    *MockSimulator
	sub    *MockSubmitter
	events *MockSubscriber
	cfg    Config
}

func newFixture(state AccountState) *fixture {
	return &fixture{
		oracle: &MockOracle{
			ReadAccountStateFunc: func(context.Context, common.Address, common.Address) (AccountState, error) {
				return state, nil
			},
			ReadBridgeFeeFunc: func(context.Context) (*big.Int, error) {
				return big.NewInt(5), nil
			},
		},
		sim:    &MockSimulator{},
		sub:    &MockSubmitter{},
		events: &MockSubscriber{},
		cfg: Config{
			BridgeContract:    testBridge,
			MintableAssets:    []common.Address{testAsset},
			CompletionTimeout: time.Second,
		},
	}
}

func (f *fixture) orchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := New(f.cfg, testAccount, Capabilities{
		Oracle:    f.oracle,
		Simulator: f.sim,
		Submitter: f.sub,
		Events:    f.events,
	}, append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	require.NoError(t, err)
	return o
}

func TestNew_Validation(t *testing.T) {
	f := newFixture(testState(0, 0, 0))
	caps := Capabilities{Oracle: f.oracle, Simulator: f.sim, Submitter: f.sub, Events: f.events}

	_, err := New(Config{}, testAccount, caps)
	assert.ErrorContains(t, err, "bridge_contract")

	_, err = New(f.cfg, common.Address{}, caps)
	assert.ErrorContains(t, err, "account")

	_, err = New(f.cfg, testAccount, Capabilities{Oracle: f.oracle})
	assert.Error(t, err)

	o, err := New(f.cfg, testAccount, caps)
	require.NoError(t, err)
	assert.Equal(t, testBridge, o.cfg.CompletionContract)
	assert.Equal(t, "FeePaid", o.cfg.CompletionEvent)
	assert.Equal(t, uint64(DefaultFallbackTransferGas), o.cfg.FallbackTransferGas)
}

func TestOrchestrator_MintApproveTransfer(t *testing.T) {
	f := newFixture(testState(40, 0, 1_000_000_000))

	var mu sync.Mutex
	var events []EventType
	o := f.orchestrator(t, WithObserver(func(ev StepEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev.Type)
	}))

	res, err := o.Submit(context.Background(), testRequest(100), WithRunID("run-abc"))
	require.NoError(t, err)

	assert.Equal(t, "run-abc", res.RunID)
	assert.Equal(t, RunCompleted, res.Status)
	require.Equal(t, []StepKind{StepMint, StepApprove, StepTransfer}, kinds(res.Plan))
	assert.Equal(t, int64(60), res.Plan[0].Amount.Int64())
	assert.Equal(t, int64(100), res.Plan[1].Amount.Int64())
	assert.Equal(t, int64(5), res.Plan[2].Fee.Int64())

	assert.True(t, res.Estimates[0].Simulated)
	assert.True(t, res.Estimates[1].Simulated)
	assert.False(t, res.Estimates[2].Simulated)
	assert.Equal(t, uint64(DefaultFallbackTransferGas), res.Estimates[2].GasUnits)

	assert.Equal(t, []StepKind{StepMint, StepApprove, StepTransfer}, f.sub.Submitted())

	transfer := res.TransferTx()
	require.NotNil(t, transfer)
	require.NotNil(t, res.Completion)
	subs := f.events.Subscribed()
	require.Len(t, subs, 1)
	assert.Equal(t, transfer.BlockNumber, subs[0].FromBlock)
	assert.Equal(t, testBridge, subs[0].Contract)
	assert.Equal(t, "FeePaid", subs[0].EventKind)
	assert.Equal(t, 1, f.events.Unsubscribed())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventPlanned, events[0])
	assert.Equal(t, EventWatching, events[len(events)-2])
	assert.Equal(t, EventCompleted, events[len(events)-1])
}

func TestOrchestrator_TransferOnly(t *testing.T) {
	f := newFixture(testState(150, 200, 1_000_000_000))
	o := f.orchestrator(t)

	res, err := o.Submit(context.Background(), testRequest(100))
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []StepKind{StepTransfer}, kinds(res.Plan))
	assert.True(t, res.Estimates[0].Simulated)
	assert.Equal(t, []uint64{50_000}, f.sub.GasLimits())
	assert.Equal(t, RunCompleted, res.Status)
}

func TestOrchestrator_InsufficientBalance(t *testing.T) {
	// mint 60 + fee 5 + gas (50_000 + 50_000 + 210_000) * 1 = 310_065
	f := newFixture(testState(40, 0, 310_064))
	o := f.orchestrator(t)

	res, err := o.Submit(context.Background(), testRequest(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Equal(t, RunFailedAtStep, res.Status)
	assert.Empty(t, f.sub.Submitted(), "nothing is submitted when the balance check fails")
	assert.Empty(t, f.events.Subscribed())

	var runErr *Error
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, int64(1), runErr.Shortfall.Int64())
}

func TestOrchestrator_ReadFailure(t *testing.T) {
	f := newFixture(testState(0, 0, 0))
	f.oracle.ReadAccountStateFunc = func(context.Context, common.Address, common.Address) (AccountState, error) {
		return AccountState{}, errors.New("rpc unavailable")
	}
	o := f.orchestrator(t)

	res, err := o.Submit(context.Background(), testRequest(100))
	require.Error(t, err)
	assert.Equal(t, KindReadFailure, KindOf(err))
	assert.Equal(t, RunFailedAtStep, res.Status)
	assert.Empty(t, f.sim.Calls())
}

func TestOrchestrator_ConfiguredFeeSkipsRead(t *testing.T) {
	f := newFixture(testState(150, 200, 1_000_000_000))
	f.cfg.BridgeFee = big.NewInt(9)
	f.oracle.ReadBridgeFeeFunc = func(context.Context) (*big.Int, error) {
		return nil, errors.New("must not be called")
	}
	o := f.orchestrator(t)

	q, err := o.Quote(context.Background(), testRequest(100))
	require.NoError(t, err)
	assert.Equal(t, int64(9), q.Plan[0].Fee.Int64())
}

func TestOrchestrator_SubmissionFailureSkipsWatch(t *testing.T) {
	f := newFixture(testState(150, 0, 1_000_000_000))
	f.sub.SubmitFunc = func(_ context.Context, step Step, _ common.Address, _ uint64) (TransactionHandle, error) {
		if step.Kind == StepTransfer {
			return TransactionHandle{}, errors.New("reverted")
		}
		return TransactionHandle{Hash: common.HexToHash("0x01"), BlockNumber: 7}, nil
	}
	o := f.orchestrator(t)

	res, err := o.Submit(context.Background(), testRequest(100))
	require.Error(t, err)
	assert.Equal(t, KindSubmissionFailure, KindOf(err))
	assert.Equal(t, RunFailedAtStep, res.Status)
	assert.Equal(t, OutcomeSubmitted, res.Outcomes[0].Status)
	assert.Equal(t, OutcomeFailed, res.Outcomes[1].Status)
	assert.Nil(t, res.TransferTx())
	assert.Empty(t, f.events.Subscribed())
}

func TestOrchestrator_CompletionTimeout(t *testing.T) {
	f := newFixture(testState(150, 200, 1_000_000_000))
	f.cfg.CompletionTimeout = 20 * time.Millisecond
	f.events.SubscribeFunc = func(context.Context, Correlation, func(CompletionEvent), func(error)) (func(), error) {
		return f.events.Unsubscribe, nil
	}
	o := f.orchestrator(t)

	res, err := o.Submit(context.Background(), testRequest(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletionTimeout))
	assert.Equal(t, RunTimedOutWaitingForCompletion, res.Status)
	assert.NotNil(t, res.TransferTx(), "the transfer landed even though completion was not observed")
	assert.Equal(t, 1, f.events.Unsubscribed())
}

func TestOrchestrator_Cancelled(t *testing.T) {
	f := newFixture(testState(150, 200, 1_000_000_000))
	ctx, cancel := context.WithCancel(context.Background())
	f.events.SubscribeFunc = func(context.Context, Correlation, func(CompletionEvent), func(error)) (func(), error) {
		cancel()
		return f.events.Unsubscribe, nil
	}
	o := f.orchestrator(t)

	res, err := o.Submit(ctx, testRequest(100))
	require.Error(t, err)
	assert.Equal(t, RunCancelled, res.Status)
}

func TestOrchestrator_Quote(t *testing.T) {
	f := newFixture(testState(40, 0, 10))
	o := f.orchestrator(t)

	q, err := o.Quote(context.Background(), testRequest(100))
	require.NoError(t, err)
	assert.False(t, q.Validation.OK)
	assert.Equal(t, []StepKind{StepMint, StepApprove, StepTransfer}, kinds(q.Plan))
	assert.Len(t, q.Estimates, 3)
	assert.Empty(t, f.sub.Submitted())

	_, err = o.Quote(context.Background(), testRequest(0))
	assert.ErrorContains(t, err, "invalid request")
}

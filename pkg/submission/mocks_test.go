package submission

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MockOracle is a mock implementation of BalanceOracle
type MockOracle struct {
	ReadAccountStateFunc func(ctx context.Context, asset, account common.Address) (AccountState, error)
	ReadBridgeFeeFunc    func(ctx context.Context) (*big.Int, error)
}

func (m *MockOracle) ReadAccountState(ctx context.Context, asset, account common.Address) (AccountState, error) {
	if m.ReadAccountStateFunc != nil {
		return m.ReadAccountStateFunc(ctx, asset, account)
	}
	return AccountState{OwnedBalance: new(big.Int), GrantedAllowance: new(big.Int), NativeBalance: new(big.Int)}, nil
}

func (m *MockOracle) ReadBridgeFee(ctx context.Context) (*big.Int, error) {
	if m.ReadBridgeFeeFunc != nil {
		return m.ReadBridgeFeeFunc(ctx)
	}
	return new(big.Int), nil
}

// MockSimulator is a mock implementation of CostSimulator
type MockSimulator struct {
	SimulateCostFunc func(ctx context.Context, step Step, account common.Address) (CostEstimate, error)

	mu    sync.Mutex
	calls []StepKind
}

func (m *MockSimulator) SimulateCost(ctx context.Context, step Step, account common.Address) (CostEstimate, error) {
	m.mu.Lock()
	m.calls = append(m.calls, step.Kind)
	m.mu.Unlock()
	if m.SimulateCostFunc != nil {
		return m.SimulateCostFunc(ctx, step, account)
	}
	return CostEstimate{GasUnits: 50_000, GasPrice: big.NewInt(1)}, nil
}

func (m *MockSimulator) Calls() []StepKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StepKind(nil), m.calls...)
}

// MockSubmitter is a mock implementation of Submitter
type MockSubmitter struct {
	SubmitFunc func(ctx context.Context, step Step, account common.Address, gasLimit uint64) (TransactionHandle, error)

	mu        sync.Mutex
	submitted []Step
	gasLimits []uint64
}

func (m *MockSubmitter) Submit(ctx context.Context, step Step, account common.Address, gasLimit uint64) (TransactionHandle, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, step)
	m.gasLimits = append(m.gasLimits, gasLimit)
	n := len(m.submitted)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, step, account, gasLimit)
	}
	return TransactionHandle{Hash: common.BigToHash(big.NewInt(int64(n))), BlockNumber: uint64(100 + n)}, nil
}

func (m *MockSubmitter) Submitted() []StepKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]StepKind, 0, len(m.submitted))
	for _, s := range m.submitted {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

func (m *MockSubmitter) GasLimits() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.gasLimits...)
}

// MockSubscriber is a mock implementation of EventSubscriber. By default it
// delivers one event from a separate goroutine.
type MockSubscriber struct {
	SubscribeFunc func(ctx context.Context, corr Correlation, onEvent func(CompletionEvent), onError func(error)) (func(), error)

	mu           sync.Mutex
	subscribed   []Correlation
	unsubscribed int
}

func (m *MockSubscriber) SubscribeCompletionEvent(
	ctx context.Context,
	corr Correlation,
	onEvent func(CompletionEvent),
	onError func(error),
) (func(), error) {
	m.mu.Lock()
	m.subscribed = append(m.subscribed, corr)
	m.mu.Unlock()

	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, corr, onEvent, onError)
	}
	go onEvent(CompletionEvent{
		Contract:    corr.Contract,
		EventKind:   corr.EventKind,
		TxHash:      common.HexToHash("0xfeed"),
		BlockNumber: corr.FromBlock + 1,
	})
	return m.Unsubscribe, nil
}

func (m *MockSubscriber) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribed++
}

func (m *MockSubscriber) Unsubscribed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribed
}

func (m *MockSubscriber) Subscribed() []Correlation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Correlation(nil), m.subscribed...)
}

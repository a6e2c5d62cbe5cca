package ethereum

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chainsafe/bridge-submitter/pkg/config"
	"github.com/chainsafe/bridge-submitter/pkg/ethereum/contracts"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var (
	testToken   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testBridge  = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	testSpender = common.HexToAddress("0x00000000000000000000000000000000000000d4")
)

// fakeBackend implements the calls the client makes; anything else panics
// through the nil embedded interface.
type fakeBackend struct {
	Backend

	mu sync.Mutex

	calls     map[string][]byte
	callData  [][]byte
	balance   *big.Int
	block     uint64
	baseFee   *big.Int
	tip       *big.Int
	gasPrice  *big.Int
	gas       uint64
	estimates []ethereum.CallMsg

	filterFunc func(q ethereum.FilterQuery) ([]types.Log, error)
	queries    []ethereum.FilterQuery

	sent       []*types.Transaction
	receipt    *types.Receipt
	receiptErr error
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	return f.receipt, nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callData = append(f.callData, msg.Data)
	for selector, out := range f.calls {
		if bytes.HasPrefix(msg.Data, []byte(selector)) {
			return out, nil
		}
	}
	return nil, errors.New("unexpected call")
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	return f.block, nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: new(big.Int).SetUint64(f.block), BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tip, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimates = append(f.estimates, msg)
	return f.gas, nil
}

func (f *fakeBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	fn := f.filterFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(q)
	}
	return nil, nil
}

func mustABI(t *testing.T, def string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(def))
	require.NoError(t, err)
	return parsed
}

func packOutput(t *testing.T, parsed abi.ABI, method string, values ...interface{}) (string, []byte) {
	t.Helper()
	m := parsed.Methods[method]
	out, err := m.Outputs.Pack(values...)
	require.NoError(t, err)
	return string(m.ID), out
}

func newTestClient(t *testing.T, backend *fakeBackend, maxGasPrice string) *Client {
	t.Helper()
	c, err := newClient(
		&config.EthereumConfig{ChainID: 1, PrivateKey: "0x" + testKey, MaxGasPrice: maxGasPrice, PollingInterval: time.Millisecond},
		&config.BridgeConfig{BridgeContract: testBridge.Hex(), SpenderContract: testSpender.Hex()},
		backend, nil, zap.NewNop(),
	)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidKey(t *testing.T) {
	_, err := newClient(
		&config.EthereumConfig{ChainID: 1, PrivateKey: "zz"},
		&config.BridgeConfig{BridgeContract: testBridge.Hex()},
		&fakeBackend{}, nil, nil,
	)
	assert.ErrorContains(t, err, "failed to load private key")
}

func TestClient_ReadAccountState(t *testing.T) {
	erc20 := mustABI(t, contracts.ERC20ABI)
	balSel, balOut := packOutput(t, erc20, "balanceOf", big.NewInt(40))
	allowSel, allowOut := packOutput(t, erc20, "allowance", big.NewInt(7))

	backend := &fakeBackend{
		calls:   map[string][]byte{balSel: balOut, allowSel: allowOut},
		balance: big.NewInt(1_000),
	}
	c := newTestClient(t, backend, "")

	state, err := c.ReadAccountState(context.Background(), testToken, c.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(40), state.OwnedBalance.Int64())
	assert.Equal(t, int64(7), state.GrantedAllowance.Int64())
	assert.Equal(t, int64(1_000), state.NativeBalance.Int64())

	require.Len(t, backend.callData, 2)
	allowanceCall := backend.callData[1]
	assert.Equal(t, common.LeftPadBytes(testSpender.Bytes(), 32), allowanceCall[36:68], "allowance is read for the spender")
}

func TestClient_ReadAccountState_Error(t *testing.T) {
	c := newTestClient(t, &fakeBackend{calls: map[string][]byte{}}, "")
	_, err := c.ReadAccountState(context.Background(), testToken, c.Address())
	assert.ErrorContains(t, err, "failed to read token balance")
}

func TestClient_ReadBridgeFee(t *testing.T) {
	payment := mustABI(t, contracts.BridgingPaymentABI)
	sel, out := packOutput(t, payment, "fee", big.NewInt(5_000))

	c := newTestClient(t, &fakeBackend{calls: map[string][]byte{sel: out}}, "")
	fee, err := c.ReadBridgeFee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), fee.Int64())
}

func TestClient_SimulateCost(t *testing.T) {
	backend := &fakeBackend{baseFee: big.NewInt(10), tip: big.NewInt(2), gas: 46_000}
	c := newTestClient(t, backend, "")

	step := submission.Step{Kind: submission.StepMint, Asset: testToken, Amount: big.NewInt(60)}
	est, err := c.SimulateCost(context.Background(), step, c.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(46_000), est.GasUnits)
	assert.Equal(t, int64(22), est.GasPrice.Int64())

	require.Len(t, backend.estimates, 1)
	msg := backend.estimates[0]
	assert.Equal(t, testToken, *msg.To)
	assert.Equal(t, int64(60), msg.Value.Int64(), "mint sends the wrapped amount")
	assert.Equal(t, c.Address(), msg.From)
}

func TestClient_SimulateCost_TransferTargetsBridge(t *testing.T) {
	backend := &fakeBackend{baseFee: big.NewInt(1), tip: big.NewInt(1), gas: 80_000}
	c := newTestClient(t, backend, "")

	step := submission.Step{Kind: submission.StepTransfer, Asset: testToken, Amount: big.NewInt(100), Fee: big.NewInt(9)}
	_, err := c.SimulateCost(context.Background(), step, c.Address())
	require.NoError(t, err)

	msg := backend.estimates[0]
	assert.Equal(t, testBridge, *msg.To)
	assert.Equal(t, int64(9), msg.Value.Int64(), "transfer pays the fee")
}

func TestClient_GasPrice(t *testing.T) {
	t.Run("capped", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{baseFee: big.NewInt(10), tip: big.NewInt(2)}, "15")
		price, err := c.GasPrice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(15), price.Int64())
	})

	t.Run("legacy", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{gasPrice: big.NewInt(33)}, "")
		price, err := c.GasPrice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(33), price.Int64())
	})
}

func TestClient_Submit_AccountMismatch(t *testing.T) {
	c := newTestClient(t, &fakeBackend{}, "")
	_, err := c.Submit(context.Background(), submission.Step{Kind: submission.StepApprove}, testToken, 0)
	assert.True(t, errors.Is(err, errAccountMismatch))
}

func TestClient_Submit_WaitFailureKeepsHash(t *testing.T) {
	backend := &fakeBackend{baseFee: big.NewInt(1), tip: big.NewInt(1), receiptErr: ethereum.NotFound}
	c := newTestClient(t, backend, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	step := submission.Step{Kind: submission.StepApprove, Asset: testToken, Amount: big.NewInt(10)}
	handle, err := c.Submit(ctx, step, c.Address(), 60_000)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to wait for transaction")

	require.Len(t, backend.sent, 1)
	assert.Equal(t, backend.sent[0].Hash(), handle.Hash, "the broadcast hash is returned with the error")
}

func TestClient_Submit_Reverted(t *testing.T) {
	backend := &fakeBackend{
		baseFee: big.NewInt(1),
		tip:     big.NewInt(1),
		receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(12), GasUsed: 21_000},
	}
	c := newTestClient(t, backend, "")

	step := submission.Step{Kind: submission.StepApprove, Asset: testToken, Amount: big.NewInt(10)}
	handle, err := c.Submit(context.Background(), step, c.Address(), 60_000)
	require.Error(t, err)
	assert.ErrorContains(t, err, "reverted")

	require.Len(t, backend.sent, 1)
	assert.Equal(t, backend.sent[0].Hash(), handle.Hash)
	assert.Equal(t, uint64(12), handle.BlockNumber)
}

func TestClient_SubscribeCompletionEvent_Polling(t *testing.T) {
	topic, _ := contracts.EventID("FeePaid")
	backend := &fakeBackend{
		block: 105,
		filterFunc: func(q ethereum.FilterQuery) ([]types.Log, error) {
			return []types.Log{{
				Address:     testBridge,
				Topics:      []common.Hash{topic},
				TxHash:      common.HexToHash("0xabc"),
				BlockNumber: 101,
			}}, nil
		},
	}
	c := newTestClient(t, backend, "")

	events := make(chan submission.CompletionEvent, 1)
	unsubscribe, err := c.SubscribeCompletionEvent(context.Background(),
		submission.Correlation{Contract: testBridge, EventKind: "FeePaid", FromBlock: 100},
		func(ev submission.CompletionEvent) { events <- ev },
		func(err error) { t.Errorf("unexpected error: %v", err) })
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case ev := <-events:
		assert.Equal(t, common.HexToHash("0xabc"), ev.TxHash)
		assert.Equal(t, uint64(101), ev.BlockNumber)
		assert.Equal(t, "FeePaid", ev.EventKind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion event")
	}

	backend.mu.Lock()
	q := backend.queries[0]
	backend.mu.Unlock()
	assert.Equal(t, []common.Address{testBridge}, q.Addresses)
	assert.Equal(t, [][]common.Hash{{topic}}, q.Topics)
	assert.Equal(t, uint64(100), q.FromBlock.Uint64())
	assert.Equal(t, uint64(105), q.ToBlock.Uint64())
}

func TestClient_SubscribeCompletionEvent_PollFailure(t *testing.T) {
	backend := &fakeBackend{
		block: 10,
		filterFunc: func(ethereum.FilterQuery) ([]types.Log, error) {
			return nil, errors.New("rpc down")
		},
	}
	c := newTestClient(t, backend, "")

	errs := make(chan error, 1)
	unsubscribe, err := c.SubscribeCompletionEvent(context.Background(),
		submission.Correlation{Contract: testBridge, EventKind: "FeePaid", FromBlock: 1},
		func(submission.CompletionEvent) { t.Error("unexpected event") },
		func(err error) { errs <- err })
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "rpc down")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stream error")
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Len(t, backend.queries, maxPollFailures)
}

func TestClient_SubscribeCompletionEvent_UnknownEvent(t *testing.T) {
	c := newTestClient(t, &fakeBackend{}, "")
	_, err := c.SubscribeCompletionEvent(context.Background(),
		submission.Correlation{Contract: testBridge, EventKind: "Nope"},
		func(submission.CompletionEvent) {}, func(error) {})
	assert.ErrorContains(t, err, "unknown completion event")
}

package submission

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceOracle reads holdings, allowances and the bridging fee.
type BalanceOracle interface {
	// ReadAccountState returns the account's asset balance, the allowance it
	// granted to the bridge spender and its native balance.
	ReadAccountState(ctx context.Context, asset, account common.Address) (AccountState, error)
	// ReadBridgeFee returns the fee the bridge charges per transfer.
	ReadBridgeFee(ctx context.Context) (*big.Int, error)
}

// CostSimulator simulates a step to obtain its gas cost.
type CostSimulator interface {
	SimulateCost(ctx context.Context, step Step, account common.Address) (CostEstimate, error)
}

// Submitter sends a step's transaction. A zero gasLimit lets the submitter
// estimate at send time.
type Submitter interface {
	Submit(ctx context.Context, step Step, account common.Address, gasLimit uint64) (TransactionHandle, error)
}

// EventSubscriber delivers completion events for a contract. The returned
// unsubscribe func must be safe to call more than once.
type EventSubscriber interface {
	SubscribeCompletionEvent(
		ctx context.Context,
		corr Correlation,
		onEvent func(CompletionEvent),
		onError func(error),
	) (unsubscribe func(), err error)
}

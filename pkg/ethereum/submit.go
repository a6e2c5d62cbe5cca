package ethereum

import (
	"context"
	"fmt"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	"github.com/chainsafe/bridge-submitter/pkg/ethereum/contracts"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Submit signs and sends a step's transaction and waits until it is mined.
// A reverted transaction is an error. gasLimit 0 estimates at send time.
// Once the transaction is broadcast the returned handle carries its hash,
// even when an error is returned.
func (c *Client) Submit(ctx context.Context, step submission.Step, account common.Address, gasLimit uint64) (submission.TransactionHandle, error) {
	if account != c.address {
		return submission.TransactionHandle{}, fmt.Errorf("%w: %s", errAccountMismatch, account.Hex())
	}

	auth, err := c.transactor(ctx)
	if err != nil {
		return submission.TransactionHandle{}, err
	}
	auth.GasLimit = gasLimit
	auth.Value = step.NativeValue()

	tx, err := c.send(auth, step)
	if err != nil {
		return submission.TransactionHandle{}, fmt.Errorf("failed to submit %s transaction: %w", step.Kind, err)
	}

	c.logger.Info("Transaction submitted",
		zap.String("step", string(step.Kind)),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("nonce", tx.Nonce()),
		zap.Uint64("gas_limit", tx.Gas()))

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return submission.TransactionHandle{Hash: tx.Hash()}, err
	}

	metrics.GasUsed.WithLabelValues(string(step.Kind)).Observe(float64(receipt.GasUsed))

	handle := submission.TransactionHandle{
		Hash:        tx.Hash(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return handle, fmt.Errorf("%s transaction %s reverted", step.Kind, tx.Hash().Hex())
	}

	c.logger.Info("Transaction mined",
		zap.String("step", string(step.Kind)),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("block_number", handle.BlockNumber),
		zap.Uint64("gas_used", handle.GasUsed))

	return handle, nil
}

func (c *Client) send(auth *bind.TransactOpts, step submission.Step) (*types.Transaction, error) {
	switch step.Kind {
	case submission.StepMint:
		return contracts.NewToken(step.Asset, c.backend).Deposit(auth)
	case submission.StepApprove:
		return contracts.NewToken(step.Asset, c.backend).Approve(auth, c.spender, step.Amount)
	case submission.StepTransfer:
		return c.payment.RequestBridging(auth, step.Asset, step.Amount, step.Destination)
	default:
		return nil, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if c.config.ReceiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ReceiptTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	return receipt, nil
}

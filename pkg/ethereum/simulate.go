package ethereum

import (
	"context"
	"fmt"

	"github.com/chainsafe/bridge-submitter/pkg/ethereum/contracts"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// SimulateCost estimates the gas of a step's transaction without sending it
// and prices it at the current network gas price.
func (c *Client) SimulateCost(ctx context.Context, step submission.Step, account common.Address) (submission.CostEstimate, error) {
	to, data, err := c.callData(step)
	if err != nil {
		return submission.CostEstimate{}, err
	}

	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  account,
		To:    &to,
		Value: step.NativeValue(),
		Data:  data,
	})
	if err != nil {
		return submission.CostEstimate{}, fmt.Errorf("failed to estimate %s gas: %w", step.Kind, err)
	}

	price, err := c.GasPrice(ctx)
	if err != nil {
		return submission.CostEstimate{}, err
	}

	return submission.CostEstimate{GasUnits: gas, GasPrice: price}, nil
}

// callData returns the target contract and calldata of a step.
func (c *Client) callData(step submission.Step) (common.Address, []byte, error) {
	var (
		to   common.Address
		data []byte
		err  error
	)
	switch step.Kind {
	case submission.StepMint:
		to = step.Asset
		data, err = contracts.PackDeposit()
	case submission.StepApprove:
		to = step.Asset
		data, err = contracts.PackApprove(c.spender, step.Amount)
	case submission.StepTransfer:
		to = c.payment.Address()
		data, err = contracts.PackRequestBridging(step.Asset, step.Amount, step.Destination)
	default:
		return common.Address{}, nil, fmt.Errorf("unknown step kind %q", step.Kind)
	}
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to pack %s call: %w", step.Kind, err)
	}
	return to, data, nil
}

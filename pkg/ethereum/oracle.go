package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainsafe/bridge-submitter/pkg/ethereum/contracts"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// TokenInfo is display metadata of an ERC-20 token.
type TokenInfo struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// ReadAccountState reads the asset balance, the allowance granted to the
// bridge spender and the native balance of account, all at the latest block.
func (c *Client) ReadAccountState(ctx context.Context, asset, account common.Address) (submission.AccountState, error) {
	token := contracts.NewToken(asset, c.backend)
	opts := &bind.CallOpts{Context: ctx}

	owned, err := token.BalanceOf(opts, account)
	if err != nil {
		return submission.AccountState{}, fmt.Errorf("failed to read token balance: %w", err)
	}

	allowance, err := token.Allowance(opts, account, c.spender)
	if err != nil {
		return submission.AccountState{}, fmt.Errorf("failed to read allowance: %w", err)
	}

	native, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return submission.AccountState{}, fmt.Errorf("failed to read native balance: %w", err)
	}

	return submission.AccountState{
		OwnedBalance:     owned,
		GrantedAllowance: allowance,
		NativeBalance:    native,
	}, nil
}

// ReadBridgeFee reads the per-transfer fee from the bridging payment contract.
func (c *Client) ReadBridgeFee(ctx context.Context) (*big.Int, error) {
	fee, err := c.payment.Fee(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge fee: %w", err)
	}
	return fee, nil
}

// TokenInfo reads the symbol and decimals of asset.
func (c *Client) TokenInfo(ctx context.Context, asset common.Address) (TokenInfo, error) {
	token := contracts.NewToken(asset, c.backend)
	opts := &bind.CallOpts{Context: ctx}

	decimals, err := token.Decimals(opts)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("failed to read token decimals: %w", err)
	}
	symbol, err := token.Symbol(opts)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("failed to read token symbol: %w", err)
	}
	return TokenInfo{Address: asset, Symbol: symbol, Decimals: decimals}, nil
}

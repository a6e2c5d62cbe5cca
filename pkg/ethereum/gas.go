package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

// gasQuote is the network's current pricing. For EIP-1559 chains price is
// 2*baseFee+tip, which stays valid across a few full blocks.
type gasQuote struct {
	baseFee *big.Int
	tip     *big.Int
	price   *big.Int
}

func (q gasQuote) capped(ceiling *big.Int) *big.Int {
	return minBig(q.price, ceiling)
}

func (c *Client) quoteGasPrice(ctx context.Context) (gasQuote, error) {
	header, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return gasQuote{}, fmt.Errorf("failed to get latest header: %w", err)
	}

	if header.BaseFee == nil {
		price, err := c.backend.SuggestGasPrice(ctx)
		if err != nil {
			return gasQuote{}, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return gasQuote{price: price}, nil
	}

	tip, err := c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return gasQuote{}, fmt.Errorf("failed to suggest gas tip cap: %w", err)
	}
	price := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
	price.Add(price, tip)

	return gasQuote{baseFee: header.BaseFee, tip: tip, price: price}, nil
}

// GasPrice returns the per-unit price used to price step estimates, capped by
// the configured maximum.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	quote, err := c.quoteGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	if c.maxGasPrice != nil && quote.price.Cmp(c.maxGasPrice) > 0 {
		c.logger.Warn("Suggested gas price exceeds maximum",
			zap.String("suggested", quote.price.String()),
			zap.String("max", c.maxGasPrice.String()))
		return new(big.Int).Set(c.maxGasPrice), nil
	}
	return quote.price, nil
}

func minBig(a, b *big.Int) *big.Int {
	if b == nil || a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

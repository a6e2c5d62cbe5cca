package submission

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultFallbackTransferGas is used for the transfer estimate when an
// approval has to land first: 10x a plain value transfer.
const DefaultFallbackTransferGas = 21000 * 10

// Config holds the contract addresses and fee constants of a bridge deployment.
type Config struct {
	// BridgeContract receives the transfer (requestBridging) call.
	BridgeContract common.Address
	// CompletionContract emits the completion event. Defaults to BridgeContract.
	CompletionContract common.Address
	CompletionEvent    string `default:"FeePaid"`

	// BridgeFee overrides the on-chain fee when set.
	BridgeFee *big.Int

	// MintableAssets are wrapped assets that can be minted 1:1 from native currency.
	MintableAssets []common.Address

	FallbackTransferGas uint64 `default:"210000"`

	// CompletionTimeout bounds the wait for the completion event. Zero waits
	// until the context is cancelled.
	CompletionTimeout time.Duration
}

func (c *Config) setDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	if c.CompletionContract == (common.Address{}) {
		c.CompletionContract = c.BridgeContract
	}
	return nil
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.BridgeContract == (common.Address{}) {
		return errors.New("bridge_contract is required")
	}
	if c.CompletionEvent == "" {
		return errors.New("completion_event is required")
	}
	if c.BridgeFee != nil && c.BridgeFee.Sign() < 0 {
		return errors.New("bridge_fee must not be negative")
	}
	if c.CompletionTimeout < 0 {
		return errors.New("completion_timeout must not be negative")
	}
	return nil
}

func (c *Config) isMintable(asset common.Address) bool {
	for _, a := range c.MintableAssets {
		if a == asset {
			return true
		}
	}
	return false
}

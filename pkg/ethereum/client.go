package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chainsafe/bridge-submitter/pkg/config"
	"github.com/chainsafe/bridge-submitter/pkg/ethereum/contracts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is the subset of the RPC client used by the submitter.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Client signs and submits bridge steps for one account and implements the
// chain-facing capabilities of the submission orchestrator.
type Client struct {
	config     *config.EthereumConfig
	backend    Backend
	wsBackend  Backend
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	logger     *zap.Logger

	maxGasPrice *big.Int

	spender common.Address
	payment *contracts.BridgingPayment

	closers []func()
}

// NewClient dials the configured RPC endpoints and loads the signing key.
func NewClient(cfg *config.EthereumConfig, bridge *config.BridgeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	// WebSocket is only used for completion events; polling is the fallback.
	var wsClient *ethclient.Client
	if cfg.WSUrl != "" {
		wsClient, err = ethclient.Dial(cfg.WSUrl)
		if err != nil {
			logger.Warn("Failed to connect to Ethereum WebSocket, falling back to polling",
				zap.Error(err))
		}
	}

	var ws Backend
	if wsClient != nil {
		ws = wsClient
	}

	c, err := newClient(cfg, bridge, client, ws, logger)
	if err != nil {
		client.Close()
		if wsClient != nil {
			wsClient.Close()
		}
		return nil, err
	}

	c.closers = append(c.closers, client.Close)
	if wsClient != nil {
		c.closers = append(c.closers, wsClient.Close)
	}

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.Bool("websocket", wsClient != nil),
		zap.String("bridge_contract", c.payment.Address().Hex()),
		zap.String("account", c.address.Hex()))

	return c, nil
}

func newClient(cfg *config.EthereumConfig, bridge *config.BridgeConfig, backend, ws Backend, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	maxGasPrice, err := cfg.MaxGasPriceWei()
	if err != nil {
		return nil, err
	}

	if !common.IsHexAddress(bridge.BridgeContract) {
		return nil, fmt.Errorf("invalid bridge contract address %q", bridge.BridgeContract)
	}
	bridgeAddress := common.HexToAddress(bridge.BridgeContract)

	spender := bridgeAddress
	if bridge.SpenderContract != "" {
		spender = common.HexToAddress(bridge.SpenderContract)
	}

	return &Client{
		config:      cfg,
		backend:     backend,
		wsBackend:   ws,
		privateKey:  privateKey,
		address:     crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:     big.NewInt(cfg.ChainID),
		logger:      logger,
		maxGasPrice: maxGasPrice,
		spender:     spender,
		payment:     contracts.NewBridgingPayment(bridgeAddress, backend),
	}, nil
}

// Close closes the Ethereum clients
func (c *Client) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
	c.closers = nil
}

// Address returns the signing account.
func (c *Client) Address() common.Address {
	return c.address
}

// Spender returns the address allowances are granted to.
func (c *Client) Spender() common.Address {
	return c.spender
}

// GetLatestBlockNumber gets the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return n, nil
}

// Ping checks the RPC endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.GetLatestBlockNumber(ctx)
	return err
}

// transactor returns a signer for the next transaction from the account.
func (c *Client) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	nonce, err := c.backend.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)

	if c.maxGasPrice == nil {
		return auth, nil
	}

	quote, err := c.quoteGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	if quote.baseFee == nil {
		auth.GasPrice = quote.capped(c.maxGasPrice)
		return auth, nil
	}
	auth.GasFeeCap = quote.capped(c.maxGasPrice)
	auth.GasTipCap = minBig(quote.tip, auth.GasFeeCap)
	return auth, nil
}

var errAccountMismatch = errors.New("account does not match signing key")

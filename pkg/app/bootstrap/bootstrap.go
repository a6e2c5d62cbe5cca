// Package bootstrap wires the Ethereum client into a submission orchestrator
// from application config. It is shared by the API server and the CLI.
package bootstrap

import (
	"fmt"

	"github.com/chainsafe/bridge-submitter/pkg/config"
	"github.com/chainsafe/bridge-submitter/pkg/ethereum"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Submitter bundles the orchestrator with the client backing it.
type Submitter struct {
	Client       *ethereum.Client
	Orchestrator *submission.Orchestrator
}

// Close releases the Ethereum connections.
func (s *Submitter) Close() {
	if s.Client != nil {
		s.Client.Close()
	}
}

// New dials the configured Ethereum node and builds an orchestrator for the
// configured signing key.
func New(cfg *config.Config, logger *zap.Logger, opts ...submission.Option) (*Submitter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	subCfg, err := SubmissionConfig(&cfg.Bridge)
	if err != nil {
		return nil, err
	}

	client, err := ethereum.NewClient(&cfg.Ethereum, &cfg.Bridge, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize ethereum client: %w", err)
	}

	opts = append([]submission.Option{submission.WithLogger(logger)}, opts...)
	orch, err := submission.New(subCfg, client.Address(), submission.Capabilities{
		Oracle:    client,
		Simulator: client,
		Submitter: client,
		Events:    client,
	}, opts...)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("initialize orchestrator: %w", err)
	}

	return &Submitter{Client: client, Orchestrator: orch}, nil
}

// SubmissionConfig converts the bridge section of the app config.
func SubmissionConfig(bridge *config.BridgeConfig) (submission.Config, error) {
	fee, err := bridge.Fee()
	if err != nil {
		return submission.Config{}, err
	}

	cfg := submission.Config{
		BridgeContract:      common.HexToAddress(bridge.BridgeContract),
		CompletionEvent:     bridge.CompletionEvent,
		BridgeFee:           fee,
		FallbackTransferGas: bridge.FallbackTransferGas,
		CompletionTimeout:   bridge.CompletionTimeout,
	}
	if bridge.CompletionContract != "" {
		cfg.CompletionContract = common.HexToAddress(bridge.CompletionContract)
	}
	for _, asset := range bridge.MintableAssets {
		cfg.MintableAssets = append(cfg.MintableAssets, common.HexToAddress(asset))
	}
	return cfg, nil
}

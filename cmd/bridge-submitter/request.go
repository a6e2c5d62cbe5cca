package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/chainsafe/bridge-submitter/pkg/ethereum"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
)

// requestFlags are shared by submit and quote.
type requestFlags struct {
	asset       string
	amount      string
	destination string
	decimals    int
	raw         bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.asset, "asset", "", "Token contract to bridge (required)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Amount to bridge, in whole tokens unless --raw (required)")
	cmd.Flags().StringVar(&f.destination, "to", "", "Destination account, 20 or 32 bytes hex (required)")
	cmd.Flags().IntVar(&f.decimals, "decimals", -1, "Token decimals; read from the token when omitted")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Amount is given in base units")
	_ = cmd.MarkFlagRequired("asset")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("to")
}

// tokenReader is the part of the Ethereum client used to resolve decimals.
type tokenReader interface {
	TokenInfo(ctx context.Context, asset common.Address) (ethereum.TokenInfo, error)
}

// build turns the flags into an orchestrator request, reading the token's
// decimals when the amount is in whole tokens and --decimals is not given.
func (f *requestFlags) build(ctx context.Context, tokens tokenReader) (submission.TransferRequest, error) {
	req := &transfer.Request{
		Asset:       f.asset,
		Amount:      f.amount,
		Destination: f.destination,
	}

	if !f.raw {
		switch {
		case f.decimals > 255:
			return submission.TransferRequest{}, fmt.Errorf("--decimals must be between 0 and 255")
		case f.decimals >= 0:
			d := uint8(f.decimals)
			req.Decimals = &d
		default:
			if !common.IsHexAddress(f.asset) {
				return submission.TransferRequest{}, fmt.Errorf("invalid asset address %q", f.asset)
			}
			info, err := tokens.TokenInfo(ctx, common.HexToAddress(f.asset))
			if err != nil {
				return submission.TransferRequest{}, err
			}
			req.Decimals = &info.Decimals
		}
	}

	return req.ToSubmission()
}

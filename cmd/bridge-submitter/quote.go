package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainsafe/bridge-submitter/pkg/app/bootstrap"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
)

func newQuoteCmd(opts *globalOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show the steps and native cost of a transfer without submitting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			submitter, err := bootstrap.New(cfg, logger)
			if err != nil {
				return err
			}
			defer submitter.Close()

			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			req, err := flags.build(ctx, submitter.Client)
			if err != nil {
				return err
			}

			q, err := submitter.Orchestrator.Quote(ctx, req)
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), opts.output).quote(transfer.NewQuote(submitter.Orchestrator.Account(), q))
		},
	}
	flags.register(cmd)
	return cmd
}

// withTimeout bounds one-shot chain reads made outside a run.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chainsafe/bridge-submitter/pkg/app/bootstrap"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	"github.com/chainsafe/bridge-submitter/pkg/transfer"
)

func newSubmitCmd(opts *globalOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Bridge an amount of a token and wait for completion",
		Long: `Plans, prices and submits a bridging transfer from the configured account.

Nothing is submitted when the native balance cannot cover gas, the wrapped
amount and the bridge fee. Interrupting the command stops before the next step;
steps already submitted stay on-chain.`,
		Args: cobra.NoArgs,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			submitter, err := bootstrap.New(cfg, logger)
			if err != nil {
				return err
			}
			defer submitter.Close()

			req, err := flags.build(ctx, submitter.Client)
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout(), opts.output)
			prog := newProgress(cmd.ErrOrStderr(), opts.output == outputText && !color.NoColor)
			defer prog.stop()

			runID := uuid.NewString()
			res, runErr := submitter.Orchestrator.Submit(ctx, req,
				submission.WithRunID(runID),
				submission.WithRunObserver(prog.observe),
			)

			t := transfer.New(runID, submitter.Orchestrator.Account(), req, time.Now())
			if res == nil && runErr != nil {
				return runErr
			}
			t.ApplyResult(res, runErr)
			t.UpdatedAt = time.Now()

			if err := out.transfer(t); err != nil {
				return err
			}
			return runErr
		},
	}
	flags.register(cmd)
	return cmd
}

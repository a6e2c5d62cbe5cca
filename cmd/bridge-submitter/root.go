package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chainsafe/bridge-submitter/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type globalOptions struct {
	configPath string
	verbose    bool
	output     string
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func (o *globalOptions) logger() (*zap.Logger, error) {
	return config.NewCLILogger(o.verbose)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "bridge-submitter",
		Short: "Submit bridging transfers and wait for the bridge to pick them up",
		Long: `bridge-submitter works out which steps a bridging transfer needs (mint the
wrapped asset, approve the bridge, request bridging), checks the account can pay
for all of them, submits them in order and waits for the bridge's completion
event.

Examples:
  bridge-submitter quote --asset 0xA1... --amount 1.5 --to 0xE5...
  bridge-submitter submit --asset 0xA1... --amount 1.5 --to 0xE5...
  bridge-submitter serve --config config.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch opts.output {
			case outputText, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (environment only when empty)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")

	root.AddCommand(
		newServeCmd(opts),
		newSubmitCmd(opts),
		newQuoteCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

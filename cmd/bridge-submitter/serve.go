package main

import (
	"github.com/spf13/cobra"

	"github.com/chainsafe/bridge-submitter/pkg/app"
	"github.com/chainsafe/bridge-submitter/pkg/app/api"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			var runner app.Runner = api.NewServer(cfg)
			return runner.Run()
		},
	}
}

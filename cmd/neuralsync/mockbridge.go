package main

import (
	"github.com/neural-sync/tui/internal/config"
	"github.com/neural-sync/tui/internal/logx"
	"github.com/neural-sync/tui/internal/mockbridge"
	"github.com/spf13/cobra"
)

func newMockBridgeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr     string
		interval string
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "mock-bridge",
		Short: "Serve a simulated EEG bridge for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Mock.Addr = addr
			}
			if cmd.Flags().Changed("seed") {
				cfg.Mock.Seed = seed
			}
			if cmd.Flags().Changed("interval") {
				if cfg.Mock.Interval, err = parsePositiveDuration(interval); err != nil {
					return err
				}
			}

			logger := logx.WithComponent(cmd.Context(), "mockbridge")
			srv := mockbridge.New(cfg.Mock.Interval, cfg.Mock.Seed, logger)
			return srv.ListenAndServe(cmd.Context(), cfg.Mock.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8000)")
	cmd.Flags().StringVar(&interval, "interval", "", "time between predictions, e.g. 500ms")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for generated emotions")
	return cmd
}

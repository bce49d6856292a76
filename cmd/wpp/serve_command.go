package main

import (
	"github.com/spf13/cobra"

	"wpp/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts daemonrun.Options
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the intake HTTP API and the queue worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonrun.Run(cmd.Context(), ctx.configValue(), opts)
		},
	}
	addDaemonFlags(cmd, &opts)
	return cmd
}

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var opts daemonrun.Options
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run only the queue worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.WorkerOnly = true
			return daemonrun.Run(cmd.Context(), ctx.configValue(), opts)
		},
	}
	addDaemonFlags(cmd, &opts)
	return cmd
}

func addDaemonFlags(cmd *cobra.Command, opts *daemonrun.Options) {
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&opts.Development, "dev", false, "Include source locations in log records")
}

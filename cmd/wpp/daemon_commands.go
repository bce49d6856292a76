package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wpp/internal/daemonctl"
	"wpp/internal/services"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect or stop a running wpp serve/worker process",
	}
	daemonCmd.AddCommand(newDaemonStatusCommand(ctx))
	daemonCmd.AddCommand(newDaemonStopCommand(ctx))
	return daemonCmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the daemon pid and worker lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := daemonctl.Inspect(ctx.configValue())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"pid":      info.PID,
					"running":  info.Alive,
					"lockHeld": info.LockHeld,
					"pidPath":  info.PIDPath,
					"lockPath": info.LockPath,
				})
			}
			pid := "-"
			if info.PID > 0 {
				pid = strconv.Itoa(info.PID)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
				{"Running", yesNo(info.Alive)},
				{"PID", pid},
				{"Worker lock held", yesNo(info.LockHeld)},
				{"PID file", info.PIDPath},
				{"Lock file", info.LockPath},
			}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	var (
		grace time.Duration
		force bool
	)
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Send SIGTERM to the daemon and wait for it to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := daemonctl.Stop(ctx.configValue(), grace, force)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err != nil {
				return services.Wrap(services.ErrUnavailable, "cli", "daemon stop", "", err)
			}
			if result.ForcedKill {
				fmt.Fprintf(cmd.OutOrStdout(), "Daemon (pid %d) killed after %s\n", result.PID, grace)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daemon (pid %d) stopped\n", result.PID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "timeout", 10*time.Second, "How long to wait for a graceful exit")
	cmd.Flags().BoolVar(&force, "force", false, "Send SIGKILL when the daemon outlives --timeout")
	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

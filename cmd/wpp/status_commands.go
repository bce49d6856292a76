package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wpp/internal/logging"
	"wpp/internal/services"
	"wpp/internal/status"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status <txnReference>",
		Short: "Show the tracked status of a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return ctx.withStatus(func(store *status.SQLiteStore) error {
				entry, err := store.Lookup(cmd.Context(), ref)
				if err != nil {
					return err
				}
				if entry == nil {
					return services.Wrap(services.ErrNotFound, "status", "lookup", fmt.Sprintf("no status for txnReference %s", ref), nil)
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"txnReference": entry.Reference,
						"status":       entry.Status,
						"updatedAt":    entry.UpdatedAt.UTC().Format(time.RFC3339),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %s (updated %s)\n", entry.Reference, colorStatus(entry.Status, shouldColorize(out)), formatDisplayTime(entry.UpdatedAt))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.AddCommand(newStatusClearCommand(ctx))
	cmd.AddCommand(newStatusCountsCommand(ctx))
	return cmd
}

func newStatusClearCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear <txnReference>",
		Short: "Remove a status entry so the reference can be resubmitted",
		Long: "Remove a status entry so the reference can be resubmitted.\n\n" +
			"Use this to recover a reference left in-progress with nothing queued.\n" +
			"Clearing a done reference requires --force because it allows a second\n" +
			"persisted copy of the same transaction.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			return ctx.withStatus(func(store *status.SQLiteStore) error {
				current, ok, err := store.Get(cmd.Context(), ref)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintf(out, "No status for %s\n", ref)
					return nil
				}
				if current == status.Done && !force {
					return services.Wrap(services.ErrConflict, "status", "clear", fmt.Sprintf("%s is done; pass --force to clear it", ref), nil)
				}
				if err := store.Delete(cmd.Context(), ref); err != nil {
					return err
				}
				ctx.cliLogger().Info("status cleared",
					logging.String(logging.FieldReference, ref),
					logging.String("previous_status", string(current)),
					logging.String(logging.FieldEventType, "status_cleared"),
				)
				fmt.Fprintf(out, "Cleared %s (was %s)\n", ref, current)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Also clear references marked done")
	return cmd
}

func newStatusCountsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count tracked references per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStatus(func(store *status.SQLiteStore) error {
				counts, err := store.Counts(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := make([][]string, 0, 3)
				for _, s := range []status.Status{status.InProgress, status.Done, status.Failed} {
					rows = append(rows, []string{colorStatus(s, colorize), strconv.Itoa(counts[s])})
				}
				fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

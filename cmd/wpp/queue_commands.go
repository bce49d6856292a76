package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wpp/internal/queue"
	"wpp/internal/submission"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the work queue",
	}
	queueCmd.AddCommand(newQueueDepthCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueDeadLettersCommand(ctx))
	return queueCmd
}

func newQueueDepthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "depth",
		Short: "Show queue depth and dead-letter count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"dbPath":      health.DBPath,
						"depth":       health.Depth,
						"deadLetters": health.DeadLetters,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Database", health.DBPath},
					{"Queued", strconv.Itoa(health.Depth)},
					{"Dead letters", strconv.Itoa(health.DeadLetters)},
					{"Oldest queued", formatAge(health.OldestEnqueuedAt, time.Now())},
				}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued messages in processing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(store *queue.Store) error {
				messages, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(messages) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(messages))
				for _, msg := range messages {
					rows = append(rows, []string{
						strconv.FormatInt(msg.ID, 10),
						payloadReference(msg.Payload),
						formatDisplayTime(msg.EnqueuedAt),
						strconv.Itoa(len(msg.Payload)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "txnReference", "Enqueued", "Bytes"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum messages to show (0 for all)")
	return cmd
}

func newQueueDeadLettersCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "dead-letters",
		Short: "List payloads the worker could not decode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(store *queue.Store) error {
				letters, err := store.DeadLetters(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(letters) == 0 {
					fmt.Fprintln(out, "No dead letters")
					return nil
				}
				rows := make([][]string, 0, len(letters))
				for _, dl := range letters {
					rows = append(rows, []string{
						strconv.FormatInt(dl.MessageID, 10),
						formatDisplayTime(dl.FailedAt),
						dl.Reason,
						truncate(string(dl.Payload), 60),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Message", "Failed", "Reason", "Payload"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show (0 for all)")
	return cmd
}

// payloadReference extracts the txnReference for display; undecodable
// payloads show as "?".
func payloadReference(payload []byte) string {
	sub, err := submission.Decode(payload)
	if err != nil || sub.Reference() == "" {
		return "?"
	}
	return sub.Reference()
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

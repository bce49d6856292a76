package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wpp/internal/intake"
	"wpp/internal/queue"
	"wpp/internal/status"
	"wpp/internal/submission"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "submit <file.json|->",
		Short: "Queue a submission through the intake gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reader io.Reader
			if path := strings.TrimSpace(args[0]); path == "-" {
				reader = cmd.InOrStdin()
			} else {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open submission: %w", err)
				}
				defer file.Close()
				reader = file
			}

			sub, err := submission.DecodeReader(reader)
			if err != nil {
				return err
			}
			if err := sub.Validate(); err != nil {
				return err
			}

			return ctx.withStatus(func(statuses *status.SQLiteStore) error {
				return ctx.withQueue(func(q *queue.Store) error {
					gate := intake.NewGate(statuses, q, ctx.cliLogger())
					ack, err := gate.Submit(cmd.Context(), sub)
					if err != nil {
						return err
					}
					if jsonOut {
						return writeJSON(cmd, map[string]any{
							"message":      ack.Message,
							"txnReference": ack.TxnReference,
							"messageId":    ack.MessageID,
						})
					}
					fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
					return nil
				})
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"wpp/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect persisted submissions",
	}
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	recordsCmd.AddCommand(newRecordsCountsCommand(ctx))
	return recordsCmd
}

func newRecordsCountsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count rows in every records table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRecords(cmd.Context(), func(store *records.Store) error {
				counts, err := store.TableCounts(cmd.Context())
				if err != nil {
					return err
				}
				tables := make([]string, 0, len(counts))
				for table := range counts {
					tables = append(tables, table)
				}
				sort.Strings(tables)
				rows := make([][]string, 0, len(tables))
				for _, table := range tables {
					rows = append(rows, []string{table, strconv.Itoa(counts[table])})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Driver: %s\n", store.Driver())
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Table", "Rows"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <txnReference>",
		Short: "Show the persisted rows for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRecords(cmd.Context(), func(store *records.Store) error {
				chain, err := store.FindByReference(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, chain)
				}
				counts, err := store.CountByReference(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(chainFields(chain, counts)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func chainFields(chain *records.Chain, counts map[string]int) [][2]string {
	t := chain.Transaction
	id := func(v int64) string { return strconv.FormatInt(v, 10) }
	fields := [][2]string{
		{"txnReference", t.TxnReference},
		{"Transaction id", id(t.ID)},
		{"Amount", t.Amount.String() + " " + t.CurrencyCode},
		{"Payment type", t.PaymentType},
		{"Series type", t.SeriesType},
		{"Method", t.Method},
		{"Merchant", fmt.Sprintf("%s (id %d)", chain.Merchant.MerchantID, chain.Merchant.ID)},
		{"Merchant customerID", chain.Merchant.CustomerID},
		{"Customer", fmt.Sprintf("%s (id %d)", chain.Customer.CustomerID, chain.Customer.ID)},
		{"Billing name", chain.BillingAddress.FirstName + " " + chain.BillingAddress.LastName},
		{"Billing country", chain.BillingAddress.Country},
		{"Card", chain.PaymentDetail.CardType + " " + maskCard(chain.PaymentDetail.CardNumber)},
		{"Lang", chain.IntakeRecord.Lang},
		{"Recorded", formatDisplayTime(chain.IntakeRecord.CreatedAt)},
	}
	if chain.URL != nil {
		fields = append(fields,
			[2]string{"Success URL", chain.URL.SuccessURL},
			[2]string{"Fail URL", chain.URL.FailURL},
		)
	}
	if n := counts["transactions"]; n > 1 {
		fields = append(fields, [2]string{"Persisted copies", strconv.Itoa(n)})
	}
	return fields
}

// maskCard keeps the last four digits.
func maskCard(number string) string {
	if len(number) <= 4 {
		return number
	}
	return "****" + number[len(number)-4:]
}

package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"biasdetect/domain/core"
	"biasdetect/internal/errors"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [report-id]",
		Short: "List stored audit reports, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if !c.Audits.HistoryEnabled() {
				return errors.ConfigInvalid("DATABASE_URL is not set; audit history is unavailable")
			}

			if len(args) == 1 {
				id, err := core.ParseID(args[0])
				if err != nil {
					return err
				}
				report, err := c.Audits.GetReport(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				printReport(cmd.OutOrStdout(), report, c.Config.Analysis.DisparateImpactRule)
				return nil
			}

			records, err := c.Audits.ListReports(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tDATASET\tTARGET\tROWS\tBIAS %")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f\n", rec.ID,
					rec.CreatedAt.Time().Format(time.DateTime), rec.DatasetName, rec.TargetColumn, rec.RowCount, rec.BiasPercentage)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of reports to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

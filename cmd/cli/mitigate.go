package main

import (
	"context"
	"fmt"
	"strings"

	"biasdetect/adapters/excel"
	"biasdetect/app"
	"biasdetect/internal/dataset"
	"biasdetect/internal/fairness"
	"biasdetect/internal/privacy"

	"github.com/spf13/cobra"
)

func newMitigateCmd() *cobra.Command {
	var out, strategyName string
	var sensitive []string

	cmd := &cobra.Command{
		Use:   "mitigate <file>",
		Short: "Add a normalized weight column that balances sensitive groups",
		Long: `Reweight rows by the inverse frequency of their sensitive group.

With several sensitive columns the default "last" strategy weights by the last
column only; "combined" multiplies the per-column weights.

Example: biasdetect mitigate hiring_data.csv --out weighted.csv --sensitive Gender`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := fairness.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			c, err := loadContainer(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			t, err := readTable(args[0])
			if err != nil {
				return err
			}
			session := app.NewSession(t)
			session.SensitiveColumns = sensitive

			weighted, err := c.Audits.Mitigate(session, strategy)
			if err != nil {
				return err
			}
			if err := excel.WriteFile(out, weighted); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(session.WeightedBy) == 0 {
				fmt.Fprintf(w, "Warning: none of %s could be weighted; wrote %d rows unchanged to %s\n",
					strings.Join(session.SensitiveColumns, ", "), weighted.Rows(), out)
				return nil
			}
			fmt.Fprintf(w, "Wrote %d rows weighted by %s to %s\n",
				weighted.Rows(), strings.Join(session.WeightedBy, ", "), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "mitigated.csv", "Output file (.csv or .xlsx)")
	cmd.Flags().StringVar(&strategyName, "strategy", string(fairness.StrategyLastWins), "Weighting strategy: last or combined")
	cmd.Flags().StringSliceVar(&sensitive, "sensitive", nil, "Sensitive columns (detected from column names when omitted)")
	return cmd
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "List likely sensitive, personally identifying and binary target columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Dataset: %s (%d rows, %d columns)\n", t.Name(), t.Rows(), t.Width())
			printList(w, "Sensitive columns", dataset.DetectSensitiveColumns(t))
			printList(w, "Binary target candidates", fairness.BinaryColumns(t))

			pii := privacy.DetectPII(t)
			printList(w, "PII columns", pii)
			printList(w, "Privacy", privacy.Recommendations(pii))
			return nil
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"biasdetect/app"
	"biasdetect/domain/audit"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type analyzeFlags struct {
	target    string
	sensitive []string
	bins      int
	clean     bool
	predict   bool
	asJSON    bool
	save      bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.target, "target", "", "Binary (0/1) outcome column")
	cmd.Flags().StringSliceVar(&f.sensitive, "sensitive", nil, "Sensitive columns (detected from column names when omitted)")
	cmd.Flags().IntVar(&f.bins, "bins", 0, "Groups for numeric sensitive columns (default from BIAS_BINS)")
	cmd.Flags().BoolVar(&f.clean, "clean", false, "Fill missing values and drop duplicate rows first")
	cmd.Flags().BoolVar(&f.predict, "predict", false, "Train a baseline classifier on the target and report its accuracy")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&f.save, "save", false, "Store the report in the history database")
	_ = cmd.MarkFlagRequired("target")
}

func (f *analyzeFlags) request() app.AnalyzeRequest {
	return app.AnalyzeRequest{
		TargetColumn:     f.target,
		SensitiveColumns: f.sensitive,
		Bins:             f.bins,
		Clean:            f.clean,
		Predict:          f.predict,
	}
}

func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Compute fairness metrics for a CSV or XLSX dataset",
		Long: `Compute disparate impact and equalized odds for each sensitive column.

Example: biasdetect analyze hiring_data.csv --target shortlisted --sensitive Gender,Race`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), flags.save)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			report, err := analyzeFile(cmd.Context(), c.Audits, args[0], flags.request())
			if err != nil {
				return err
			}
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report, c.Config.Analysis.DisparateImpactRule)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newAnalyzeBatchCmd() *cobra.Command {
	var flags analyzeFlags
	var parallel int

	cmd := &cobra.Command{
		Use:   "analyze-batch <files...>",
		Short: "Analyze several datasets concurrently with the same settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), flags.save)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			reports := make([]*audit.Report, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(parallel, 1))
			for i, path := range args {
				g.Go(func() error {
					report, err := analyzeFile(ctx, c.Audits, path, flags.request())
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					reports[i] = report
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATASET\tROWS\tCOLUMNS\tBIAS %\tVIOLATIONS")
			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%d\n", r.DatasetName, r.Rows, len(r.SensitiveColumns),
					r.BiasPercentage, len(r.Violations(c.Config.Analysis.DisparateImpactRule)))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&parallel, "parallel", 4, "Files analyzed at the same time")
	return cmd
}

// analyzeFile runs one audit on its own session.
func analyzeFile(ctx context.Context, audits *app.AuditService, path string, req app.AnalyzeRequest) (*audit.Report, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return audits.Analyze(ctx, app.NewSession(t), req)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *audit.Report, threshold float64) {
	fmt.Fprintf(w, "Dataset: %s (%d rows)\n", r.DatasetName, r.Rows)
	fmt.Fprintf(w, "Target: %s\n", r.TargetColumn)
	if len(r.CleaningNotes) > 0 {
		fmt.Fprintf(w, "Cleaning: %s\n", strings.Join(r.CleaningNotes, "; "))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tSTATUS\tDISPARATE IMPACT\tEQUALIZED ODDS\tNOTE")
	for _, o := range r.Outcomes {
		if !o.OK() {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t%s\n", o.Column, o.Status, o.Message)
			continue
		}
		note := ""
		if o.Metrics.DisparateImpact < threshold {
			note = "below four-fifths rule"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%s\n", o.Column, o.Status,
			o.Metrics.DisparateImpact, o.Metrics.EqualizedOddsRatio, note)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nBias percentage: %.1f%%\n", r.BiasPercentage)
	fmt.Fprintf(w, "ML readiness: %d/100", r.Readiness.Score)
	if r.Readiness.Ready {
		fmt.Fprintln(w, " (ready)")
	} else {
		fmt.Fprintln(w, " (not ready)")
	}
	printList(w, "Readiness issues", r.Readiness.Issues)
	printPrediction(w, r)
	printList(w, "Recommendations", r.Recommendations)
	printList(w, "Privacy", r.PrivacyRecommendations)
}

func printPrediction(w io.Writer, r *audit.Report) {
	if r.PredictionError != "" {
		fmt.Fprintf(w, "\nSample prediction failed: %s\n", r.PredictionError)
		return
	}
	p := r.Prediction
	if p == nil {
		return
	}
	fmt.Fprintf(w, "\nSample prediction (%s, %d train / %d test rows): accuracy %.3f\n",
		p.Model, p.TrainRows, p.TestRows, p.Accuracy)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  FEATURE\tIMPORTANCE")
	for _, fi := range p.FeatureImportance {
		fmt.Fprintf(tw, "  %s\t%.3f\n", fi.Feature, fi.Importance)
	}
	tw.Flush()
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

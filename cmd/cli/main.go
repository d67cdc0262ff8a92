package main

import (
	"context"
	"fmt"
	"os"

	"biasdetect/adapters/excel"
	"biasdetect/domain/table"
	"biasdetect/internal/config"
	"biasdetect/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "biasdetect",
		Short:         "Audit tabular datasets for group fairness and reweight them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newAnalyzeBatchCmd(),
		newMitigateCmd(),
		newDetectCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

// loadContainer builds the application from the environment. History is
// only connected when asked for.
func loadContainer(ctx context.Context, withHistory bool) (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if withHistory {
		if err := c.InitWithDatabase(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func readTable(path string) (*table.Table, error) {
	return excel.NewDataReader(path).ReadTable()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"biasdetect/adapters/excel"
	"biasdetect/internal/hiring"
)

func main() {
	out := flag.String("out", "hiring_data.csv", "output file path")
	rows := flag.Int("rows", 1000, "number of candidates")
	format := flag.String("format", "", "output format: csv or xlsx (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	missing := flag.Float64("missing", 0.05, "share of DailyRate and MonthlyIncome cells left empty")
	flag.Parse()

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}

	path := *out
	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName != "" && excel.FileType(path) != fmtName {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + "." + fmtName
	}
	if excel.FileType(path) == "" {
		fmt.Fprintln(os.Stderr, "unsupported format:", filepath.Ext(path))
		os.Exit(2)
	}

	cfg := hiring.DefaultConfig()
	cfg.Rows = *rows
	cfg.Seed = *seed
	cfg.MissingFraction = *missing

	ds, err := hiring.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	if err := excel.WriteFile(path, ds); err != nil {
		fmt.Fprintln(os.Stderr, "error writing dataset:", err)
		os.Exit(1)
	}

	fmt.Printf("Synthetic hiring data saved to %s\n", path)
	fmt.Printf("Total Columns: %d | Total Rows: %d\n", ds.Width(), ds.Rows())
}

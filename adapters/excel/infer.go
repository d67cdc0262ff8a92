package excel

import (
	"math"
	"strconv"
	"strings"

	"biasdetect/domain/table"
)

// NumericThreshold is the share of parseable cells that makes a column numeric.
const NumericThreshold = 0.8

var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"<na>": true,
	"#n/a": true,
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(cell string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(cell))]
}

// InferColumn assigns a kind to raw cells. A column is Boolean when every
// present cell is true/false, Numeric when at least NumericThreshold of the
// present cells parse as numbers (the rest become missing), Categorical otherwise.
func InferColumn(name string, cells []string) *table.Column {
	null := make([]bool, len(cells))
	present := 0
	for i, c := range cells {
		null[i] = IsMissing(c)
		if !null[i] {
			present++
		}
	}

	if present > 0 {
		if bools, ok := parseBools(cells, null); ok {
			return table.NewBoolean(name, bools, null)
		}
	}

	nums := make([]float64, len(cells))
	numNull := make([]bool, len(cells))
	parsed := 0
	for i, c := range cells {
		if null[i] {
			nums[i] = math.NaN()
			numNull[i] = true
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil || math.IsInf(v, 0) {
			nums[i] = math.NaN()
			numNull[i] = true
			continue
		}
		nums[i] = v
		parsed++
	}
	if present == 0 || float64(parsed)/float64(present) >= NumericThreshold {
		return table.NewNumeric(name, nums, numNull)
	}

	return table.NewCategorical(name, cells, null)
}

func parseBools(cells []string, null []bool) ([]bool, bool) {
	out := make([]bool, len(cells))
	for i, c := range cells {
		if null[i] {
			continue
		}
		switch strings.ToLower(c) {
		case "true":
			out[i] = true
		case "false":
		default:
			return nil, false
		}
	}
	return out, true
}

package fairness

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"biasdetect/domain/core"
	"biasdetect/domain/table"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// DefaultBucketCount is the number of equal-width groups a numeric column is cut into.
const DefaultBucketCount = 5

// edgeAdjust widens the lowest edge so the minimum lands in the first group.
const edgeAdjust = 0.001

// BinLabel returns the label of the i-th group, counting from zero.
func BinLabel(i int) string {
	return fmt.Sprintf("Group_%d", i+1)
}

func binIndex(label string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(label, "Group_"))
	if err != nil {
		return -1
	}
	return n
}

// Bin cuts a numeric column into bucketCount equal-width intervals over its
// observed range. Interval i is (edge[i], edge[i+1]]; the lowest edge sits
// slightly below the minimum so the minimum falls in Group_1. Missing values
// stay missing. Infinite values are rejected. Non-numeric columns are
// returned as a copy, unchanged.
func Bin(col *table.Column, bucketCount int) (*table.Column, error) {
	if !NeedsBinning(col) {
		return col.Clone(), nil
	}
	if bucketCount < 1 {
		return nil, core.NewValidationError(col.Name(), core.ErrValidation,
			"bucket count must be at least 1, got %d", bucketCount)
	}
	if col.DistinctCount() <= 1 {
		return nil, core.NewValidationError(col.Name(), core.ErrInsufficientVariation,
			"Column %s has insufficient variation for binning.", col.Name())
	}

	values := col.Floats()
	lo, err := stats.Min(values)
	if err != nil {
		return nil, core.NewComputationError("binning "+col.Name(), err)
	}
	hi, err := stats.Max(values)
	if err != nil {
		return nil, core.NewComputationError("binning "+col.Name(), err)
	}

	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, core.NewValidationError(col.Name(), core.ErrValidation,
			"Column %s contains infinite values and cannot be binned.", col.Name())
	}

	edges := binEdges(lo, hi, bucketCount)
	labels := make([]string, col.Len())
	null := make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			null[i] = true
			continue
		}
		labels[i] = BinLabel(bucketOf(edges, v))
	}
	return table.NewCategorical(col.Name(), labels, null), nil
}

func binEdges(lo, hi float64, k int) []float64 {
	edges := floats.Span(make([]float64, k+1), lo, hi)
	edges[0] -= (hi - lo) * edgeAdjust
	return edges
}

// bucketOf finds i with edges[i] < v <= edges[i+1].
func bucketOf(edges []float64, v float64) int {
	idx := sort.SearchFloat64s(edges, v) - 1
	if idx < 0 {
		return 0
	}
	if idx > len(edges)-2 {
		return len(edges) - 2
	}
	return idx
}

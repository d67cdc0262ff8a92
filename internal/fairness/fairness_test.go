package fairness

import (
	"math"
	"testing"

	"biasdetect/domain/audit"
	"biasdetect/domain/core"
	"biasdetect/domain/table"
	"biasdetect/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// groupedTable builds a table where each group has n rows and positives of them hired.
func groupedTable(t *testing.T, groups map[string][2]int, order ...string) *table.Table {
	t.Helper()
	var labels []string
	var hired []float64
	for _, g := range order {
		n, pos := groups[g][0], groups[g][1]
		for i := 0; i < n; i++ {
			labels = append(labels, g)
			if i < pos {
				hired = append(hired, 1)
			} else {
				hired = append(hired, 0)
			}
		}
	}
	return table.MustNew(
		table.NewCategorical("group", labels, nil),
		table.NewNumeric("hired", hired, nil),
	)
}

func newTestCalculator() *Calculator {
	return NewCalculator(CalculatorConfig{Logger: internal.NewNopLogger()})
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name string
		col  *table.Column
		want bool
	}{
		{"zero one", table.NewNumeric("c", []float64{0, 1, 1, 0}, nil), true},
		{"zero one with missing", table.NewNumeric("c", []float64{0, math.NaN(), 1}, nil), true},
		{"boolean", table.NewBoolean("c", []bool{true, false}, nil), true},
		{"three values", table.NewNumeric("c", []float64{0, 1, 2}, nil), false},
		{"text", table.NewCategorical("c", []string{"Y", "N"}, nil), false},
		{"text digits", table.NewCategorical("c", []string{"0", "1"}, nil), false},
		{"single value", table.NewNumeric("c", []float64{1, 1, 1}, nil), false},
		{"other pair", table.NewNumeric("c", []float64{1, 2}, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.col))
		})
	}
}

func TestBinaryColumns(t *testing.T) {
	tbl := table.MustNew(
		table.NewNumeric("age", []float64{20, 30}, nil),
		table.NewNumeric("hired", []float64{0, 1}, nil),
		table.NewBoolean("remote", []bool{true, false}, nil),
	)
	assert.Equal(t, []string{"hired", "remote"}, BinaryColumns(tbl))
}

func TestBinIntervalMembership(t *testing.T) {
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i)
	}
	binned, err := Bin(table.NewNumeric("age", values, nil), 5)
	require.NoError(t, err)

	assert.Equal(t, table.KindCategorical, binned.Kind())
	assert.LessOrEqual(t, binned.DistinctCount(), 5)
	assert.Equal(t, "Group_1", binned.Label(0), "minimum belongs to the first group")
	assert.Equal(t, "Group_1", binned.Label(20), "upper edge is inclusive")
	assert.Equal(t, "Group_2", binned.Label(21))
	assert.Equal(t, "Group_3", binned.Label(60))
	assert.Equal(t, "Group_5", binned.Label(100))
}

func TestBinKeepsMissing(t *testing.T) {
	binned, err := Bin(table.NewNumeric("x", []float64{1, math.NaN(), 9}, nil), 2)
	require.NoError(t, err)
	assert.True(t, binned.IsNull(1))
	assert.Equal(t, []string{"Group_1", "Group_2"}, binned.Distinct())
}

func TestBinFewerGroupsThanBuckets(t *testing.T) {
	binned, err := Bin(table.NewNumeric("x", []float64{0, 0, 10, 10}, nil), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Group_1", "Group_5"}, binned.Distinct())
}

func TestBinRejectsConstantColumn(t *testing.T) {
	_, err := Bin(table.NewNumeric("age", []float64{5, 5, 5}, nil), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInsufficientVariation)
	assert.Contains(t, err.Error(), "insufficient variation")
}

func TestBinRejectsInfiniteValues(t *testing.T) {
	for _, inf := range []float64{math.Inf(1), math.Inf(-1)} {
		_, err := Bin(table.NewNumeric("age", []float64{20, 30, 40, 50, inf}, nil), 5)
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
		assert.Contains(t, err.Error(), "infinite")
	}

	tbl := table.MustNew(
		table.NewNumeric("age", []float64{20, 30, 40, math.Inf(1)}, nil),
		table.NewNumeric("hired", []float64{0, 1, 0, 1}, nil),
	)
	_, err := newTestCalculator().Compute(tbl, "age", "hired")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "infinite")
	assert.NotContains(t, err.Error(), "insufficient variation")
}

func TestBinRejectsBadBucketCount(t *testing.T) {
	_, err := Bin(table.NewNumeric("age", []float64{1, 2}, nil), 0)
	assert.True(t, core.IsValidationError(err))
}

func TestBinPassesThroughCategorical(t *testing.T) {
	col := table.NewCategorical("gender", []string{"M", "F"}, nil)
	binned, err := Bin(col, 5)
	require.NoError(t, err)
	assert.Equal(t, col.Strings(), binned.Strings())
}

func TestComputeDisparateImpact(t *testing.T) {
	tbl := groupedTable(t, map[string][2]int{"A": {100, 30}, "B": {100, 60}}, "A", "B")

	m, err := newTestCalculator().Compute(tbl, "group", "hired")
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.DisparateImpact, 1e-9)
	assert.InDelta(t, 50.0, m.BiasScore(), 1e-9)
	assert.InDelta(t, 0.3, m.SelectionRateByGroup["A"], 1e-9)
	assert.InDelta(t, 0.6, m.SelectionRateByGroup["B"], 1e-9)
	assert.True(t, m.FourFifthsViolation)
	assert.Equal(t, 1.0, m.EqualizedOddsRatio)
	require.Len(t, m.Groups, 2)
	assert.Equal(t, audit.GroupStat{Group: "A", Count: 100, Positives: 30, SelectionRate: m.Groups[0].SelectionRate}, m.Groups[0])
}

func TestComputeEqualRatesIsParity(t *testing.T) {
	tbl := groupedTable(t, map[string][2]int{"A": {10, 5}, "B": {20, 10}}, "A", "B")

	m, err := newTestCalculator().Compute(tbl, "group", "hired")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.DisparateImpact, 1e-9)
	assert.False(t, m.FourFifthsViolation)
}

func TestComputeSymmetricUnderRelabel(t *testing.T) {
	a := groupedTable(t, map[string][2]int{"A": {50, 10}, "B": {50, 40}}, "A", "B")
	b := groupedTable(t, map[string][2]int{"X": {50, 40}, "Y": {50, 10}}, "X", "Y")

	ma, err := newTestCalculator().Compute(a, "group", "hired")
	require.NoError(t, err)
	mb, err := newTestCalculator().Compute(b, "group", "hired")
	require.NoError(t, err)

	assert.InDelta(t, ma.DisparateImpact, mb.DisparateImpact, 1e-12)
	assert.Greater(t, ma.DisparateImpact, 0.0)
	assert.LessOrEqual(t, ma.DisparateImpact, 1.0)
}

func TestComputeGroupWithoutPositives(t *testing.T) {
	tbl := groupedTable(t, map[string][2]int{"A": {10, 0}, "B": {10, 5}}, "A", "B")

	m, err := newTestCalculator().Compute(tbl, "group", "hired")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.DisparateImpact)
	assert.Equal(t, 0.0, m.EqualizedOddsRatio)
}

func TestComputeBinsNumericSensitive(t *testing.T) {
	ages := []float64{20, 22, 25, 28, 30, 52, 55, 58, 60, 60}
	hired := []float64{1, 1, 1, 0, 1, 0, 0, 1, 0, 0}
	tbl := table.MustNew(
		table.NewNumeric("Age", ages, nil),
		table.NewNumeric("hired", hired, nil),
	)

	m, err := NewCalculator(CalculatorConfig{Bins: 2, Logger: internal.NewNopLogger()}).Compute(tbl, "Age", "hired")
	require.NoError(t, err)
	assert.True(t, m.Binned)
	require.Len(t, m.Groups, 2)
	assert.Equal(t, "Group_1", m.Groups[0].Group)
	assert.InDelta(t, 0.8, m.Groups[0].SelectionRate, 1e-9)
	assert.InDelta(t, 0.2, m.Groups[1].SelectionRate, 1e-9)
	assert.InDelta(t, 0.25, m.DisparateImpact, 1e-9)
}

func TestComputeValidation(t *testing.T) {
	tests := []struct {
		name     string
		tbl      *table.Table
		kind     error
		contains string
	}{
		{
			name: "non binary target",
			tbl: table.MustNew(
				table.NewCategorical("group", []string{"A", "A", "B"}, nil),
				table.NewNumeric("hired", []float64{0, 1, 2}, nil),
			),
			kind:     core.ErrNonBinaryTarget,
			contains: "binary",
		},
		{
			name: "single group",
			tbl: table.MustNew(
				table.NewCategorical("group", []string{"A", "A"}, nil),
				table.NewNumeric("hired", []float64{0, 1}, nil),
			),
			kind:     core.ErrInsufficientVariation,
			contains: "Sensitive column group",
		},
		{
			name: "constant target",
			tbl: table.MustNew(
				table.NewCategorical("group", []string{"A", "B"}, nil),
				table.NewNumeric("hired", []float64{1, 1}, nil),
			),
			kind:     core.ErrInsufficientVariation,
			contains: "Target column hired",
		},
		{
			name: "missing target",
			tbl: table.MustNew(
				table.NewCategorical("group", []string{"A", "B", "A"}, nil),
				table.NewNumeric("hired", []float64{1, 0, math.NaN()}, nil),
			),
			kind:     core.ErrMissingValues,
			contains: "missing values",
		},
		{
			name: "missing sensitive",
			tbl: table.MustNew(
				table.NewCategorical("group", []string{"A", "B", ""}, []bool{false, false, true}),
				table.NewNumeric("hired", []float64{1, 0, 1}, nil),
			),
			kind:     core.ErrMissingValues,
			contains: "missing values",
		},
		{
			name: "constant numeric sensitive",
			tbl: table.MustNew(
				table.NewNumeric("group", []float64{3, 3}, nil),
				table.NewNumeric("hired", []float64{1, 0}, nil),
			),
			kind:     core.ErrInsufficientVariation,
			contains: "binning",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newTestCalculator().Compute(tt.tbl, "group", "hired")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.True(t, core.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.contains)
			assert.True(t, m.IsEmpty())
		})
	}
}

func TestComputeUnknownColumn(t *testing.T) {
	tbl := groupedTable(t, map[string][2]int{"A": {2, 1}, "B": {2, 1}}, "A", "B")
	_, err := newTestCalculator().Compute(tbl, "nope", "hired")
	assert.True(t, core.IsValidationError(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestComputeAllTagsAndLogs(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	calc := NewCalculator(CalculatorConfig{Logger: internal.NewZapLogger(internal.LogLevelWarn, zap.New(obs))})

	tbl := groupedTable(t, map[string][2]int{"A": {100, 30}, "B": {100, 60}}, "A", "B")
	tbl, err := tbl.WithColumn(table.NewCategorical("constant", make([]string, 200), nil))
	require.NoError(t, err)

	outcomes := calc.ComputeAll(tbl, []string{"group", "constant", "missing"}, "hired")
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK())
	assert.Equal(t, audit.StatusSkipped, outcomes[1].Status)
	assert.Equal(t, audit.StatusSkipped, outcomes[2].Status)
	assert.True(t, outcomes[1].Metrics.IsEmpty())

	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.InDelta(t, 50.0, audit.BiasPercentage(outcomes), 1e-9)
}

func TestMitigateWeights(t *testing.T) {
	tbl := groupedTable(t, map[string][2]int{"small": {10, 5}, "large": {90, 45}}, "small", "large")

	out, err := NewMitigator(MitigatorConfig{Logger: internal.NewNopLogger()}).Mitigate(tbl, []string{"group"})
	require.NoError(t, err)

	w, ok := out.Column(WeightColumn)
	require.True(t, ok)
	weights := w.Floats()
	require.Len(t, weights, 100)

	var sum float64
	for _, v := range weights {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 9.0, weights[0]/weights[99], 1e-9)
	assert.False(t, tbl.Has(WeightColumn), "input table is untouched")
}

func TestMitigateLastColumnWins(t *testing.T) {
	tbl := table.MustNew(
		table.NewCategorical("a", []string{"x", "x", "x", "y"}, nil),
		table.NewCategorical("b", []string{"p", "q", "q", "q"}, nil),
	)
	m := NewMitigator(MitigatorConfig{Logger: internal.NewNopLogger()})

	both, err := m.Mitigate(tbl, []string{"a", "b"})
	require.NoError(t, err)
	onlyB, err := m.Mitigate(tbl, []string{"b"})
	require.NoError(t, err)

	wBoth, _ := both.Column(WeightColumn)
	wB, _ := onlyB.Column(WeightColumn)
	assert.Equal(t, wB.Floats(), wBoth.Floats())
}

func TestMitigateCombined(t *testing.T) {
	tbl := table.MustNew(
		table.NewCategorical("a", []string{"x", "x", "y", "y"}, nil),
		table.NewCategorical("b", []string{"p", "q", "q", "q"}, nil),
	)
	out, err := NewMitigator(MitigatorConfig{Strategy: StrategyCombined, Logger: internal.NewNopLogger()}).Mitigate(tbl, []string{"a", "b"})
	require.NoError(t, err)

	w, _ := out.Column(WeightColumn)
	// raw products: 1/2*1, 1/2*1/3, 1/2*1/3, 1/2*1/3 -> total 1
	assert.InDeltaSlice(t, []float64{0.5, 1.0 / 6, 1.0 / 6, 1.0 / 6}, w.Floats(), 1e-9)
}

func TestMitigateMissingGroupGetsNoWeight(t *testing.T) {
	tbl := table.MustNew(
		table.NewCategorical("g", []string{"a", "b", ""}, []bool{false, false, true}),
	)
	out, err := NewMitigator(MitigatorConfig{Logger: internal.NewNopLogger()}).Mitigate(tbl, []string{"g"})
	require.NoError(t, err)

	w, _ := out.Column(WeightColumn)
	assert.True(t, w.IsNull(2))
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, w.Floats(), 1e-9)
}

func TestMitigateSkipsUnknownColumns(t *testing.T) {
	tbl := table.MustNew(table.NewNumeric("x", []float64{1, 2}, nil))
	out, err := NewMitigator(MitigatorConfig{Logger: internal.NewNopLogger()}).Mitigate(tbl, []string{"ghost"})
	require.NoError(t, err)
	assert.False(t, out.Has(WeightColumn))
}

func TestMitigateOrOriginalFallsBack(t *testing.T) {
	tbl := table.MustNew(table.NewCategorical("g", []string{"", ""}, []bool{true, true}))
	out := NewMitigator(MitigatorConfig{Logger: internal.NewNopLogger()}).MitigateOrOriginal(tbl, []string{"g"})
	assert.Same(t, tbl, out)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyLastWins, s)
	s, err = ParseStrategy("combined")
	require.NoError(t, err)
	assert.Equal(t, StrategyCombined, s)
	_, err = ParseStrategy("mean")
	assert.True(t, core.IsValidationError(err))
}

func TestRecommendations(t *testing.T) {
	missing := make([]float64, 20)
	null := make([]bool, 20)
	for i := range missing {
		missing[i] = float64(i % 4)
	}
	null[0], null[1], null[2] = true, true, true // 15%

	tbl := table.MustNew(
		table.NewNumeric("income", missing, null),
		table.NewNumeric("clean", missing, nil),
		table.NewCategorical("contact", append([]string{"a@b.com"}, make([]string, 19)...), nil),
		table.NewCategorical("dept", repeat("Sales", 20), nil),
	)

	got := Recommendations(tbl, []string{"income", "clean", "contact", "dept", "ghost"})
	assert.Equal(t, []string{
		"Column income has >10% missing values. Consider imputing or removing.",
		"Column contact may contain emails. Remove for privacy.",
		"Column dept has insufficient variation. Collect more diverse data.",
	}, got)
}

func TestRecommendIsRestartableAndStoppable(t *testing.T) {
	tbl := table.MustNew(
		table.NewCategorical("a", repeat("x", 3), nil),
		table.NewCategorical("b", repeat("y", 3), nil),
	)
	seq := Recommend(tbl, []string{"a", "b"})

	first := 0
	for range seq {
		first++
		break
	}
	assert.Equal(t, 1, first)

	all := 0
	for range seq {
		all++
	}
	assert.Equal(t, 2, all)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

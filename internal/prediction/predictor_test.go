package prediction

import (
	"fmt"
	"math"
	"testing"

	"biasdetect/domain/core"
	"biasdetect/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// scoredTable has 100 rows where shortlisted is 1 exactly when score >= 50,
// plus a department label unrelated to the outcome.
func scoredTable() *table.Table {
	score := make([]float64, 100)
	shortlisted := make([]float64, 100)
	dept := make([]string, 100)
	for i := range score {
		score[i] = float64(i)
		if i >= 50 {
			shortlisted[i] = 1
		}
		dept[i] = fmt.Sprintf("D%d", i%3)
	}
	return table.MustNew(
		table.NewCategorical("dept", dept, nil),
		table.NewNumeric("score", score, nil),
		table.NewNumeric("shortlisted", shortlisted, nil),
	).WithName("scored.csv")
}

func TestPredictFindsInformativeColumn(t *testing.T) {
	p := NewPredictor(Config{})
	got, err := p.Predict(scoredTable(), "shortlisted")
	require.NoError(t, err)

	assert.Equal(t, ModelName, got.Model)
	assert.Equal(t, "shortlisted", got.TargetColumn)
	assert.Equal(t, 80, got.TrainRows)
	assert.Equal(t, 20, got.TestRows)
	assert.GreaterOrEqual(t, got.Accuracy, 0.85)

	require.Len(t, got.FeatureImportance, 2)
	assert.Equal(t, "score", got.FeatureImportance[0].Feature)
	assert.Greater(t, got.FeatureImportance[0].Importance, got.FeatureImportance[1].Importance)

	var shares []float64
	for _, fi := range got.FeatureImportance {
		shares = append(shares, fi.Importance)
	}
	assert.InDelta(t, 1.0, floats.Sum(shares), 1e-9)
}

func TestPredictIsDeterministic(t *testing.T) {
	p := NewPredictor(Config{})
	first, err := p.Predict(scoredTable(), "shortlisted")
	require.NoError(t, err)
	second, err := p.Predict(scoredTable(), "shortlisted")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPredictLabelEncodesCategories(t *testing.T) {
	var team []string
	var hired []float64
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			team = append(team, "eng")
			hired = append(hired, 1)
		} else {
			team = append(team, "ops")
			hired = append(hired, 0)
		}
	}
	tbl := table.MustNew(
		table.NewCategorical("team", team, nil),
		table.NewNumeric("hired", hired, nil),
	)

	got, err := NewPredictor(Config{}).Predict(tbl, "hired")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Accuracy)
	require.Len(t, got.FeatureImportance, 1)
	assert.Equal(t, "team", got.FeatureImportance[0].Feature)
	assert.InDelta(t, 1.0, got.FeatureImportance[0].Importance, 1e-9)
}

func TestPredictFillsMissingFeatures(t *testing.T) {
	score := make([]float64, 30)
	null := make([]bool, 30)
	hired := make([]float64, 30)
	for i := range score {
		score[i] = float64(i)
		if i >= 15 {
			hired[i] = 1
		}
	}
	null[3], null[20] = true, true
	score[7] = math.Inf(1)

	tbl := table.MustNew(
		table.NewNumeric("score", score, null),
		table.NewNumeric("empty", make([]float64, 30), allTrue(30)),
		table.NewNumeric("hired", hired, nil),
	)
	got, err := NewPredictor(Config{}).Predict(tbl, "hired")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got.Accuracy))
	require.Len(t, got.FeatureImportance, 1)
	assert.Equal(t, "score", got.FeatureImportance[0].Feature)
}

func TestPredictSkipsUnlabelledRows(t *testing.T) {
	tbl := scoredTable()
	target, _ := tbl.Column("shortlisted")
	null := make([]bool, tbl.Rows())
	for i := 0; i < 10; i++ {
		null[i] = true
	}
	tbl, err := tbl.WithColumn(table.NewNumeric("shortlisted", target.Floats(), null))
	require.NoError(t, err)

	got, err := NewPredictor(Config{}).Predict(tbl, "shortlisted")
	require.NoError(t, err)
	assert.Equal(t, 90, got.TrainRows+got.TestRows)
	assert.Equal(t, 18, got.TestRows)
}

func TestPredictRejectsBadInput(t *testing.T) {
	tiny := table.MustNew(
		table.NewNumeric("x", []float64{1, 2, 3}, nil),
		table.NewNumeric("y", []float64{0, 1, 0}, nil),
	)
	targetOnly := table.MustNew(table.NewNumeric("y", []float64{0, 1, 0, 1, 0, 1}, nil))

	tests := []struct {
		name   string
		tbl    *table.Table
		target string
		kind   error
	}{
		{"missing target", scoredTable(), "hired", core.ErrSchemaMismatch},
		{"non-binary target", scoredTable(), "score", core.ErrNonBinaryTarget},
		{"categorical target", scoredTable(), "dept", core.ErrNonBinaryTarget},
		{"too few rows", tiny, "y", core.ErrValidation},
		{"no features", targetOnly, "y", core.ErrValidation},
	}
	p := NewPredictor(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Predict(tt.tbl, tt.target)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, core.IsValidationError(err))
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestSplitHoldsOutCeilFraction(t *testing.T) {
	p := NewPredictor(Config{TestFraction: 0.25, Seed: 7})
	train, test := p.split(10)
	assert.Len(t, test, 3)
	assert.Len(t, train, 7)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	again, _ := p.split(10)
	assert.Equal(t, train, again)
}

func TestLabelCodesSorted(t *testing.T) {
	col := table.NewCategorical("c", []string{"b", "a", "c", "a", ""}, []bool{false, false, false, false, true})
	assert.Equal(t, []float64{2, 1, 3, 1, 0}, labelCodes(col, []int{0, 1, 2, 3, 4}))
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

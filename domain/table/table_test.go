package table

import (
	"math"
	"testing"

	"biasdetect/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New(
		NewNumeric("age", []float64{1, 2, 3}, nil),
		NewCategorical("gender", []string{"M", "F"}, nil),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.True(t, core.IsValidationError(err))
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		NewNumeric("age", []float64{1}, nil),
		NewNumeric("age", []float64{2}, nil),
	)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
}

func TestColumnMissingValues(t *testing.T) {
	col := NewNumeric("income", []float64{1, math.NaN(), 3, 4}, []bool{false, false, false, true})

	assert.Equal(t, 2, col.NullCount())
	assert.Equal(t, 0.5, col.MissingRate())
	assert.Equal(t, []float64{1, 3}, col.Floats())
	assert.Equal(t, "", col.Label(1))

	_, ok := col.Float(3)
	assert.False(t, ok)
}

func TestValueCountsFirstAppearanceOrder(t *testing.T) {
	col := NewCategorical("race", []string{"B", "A", "B", "", "C"}, []bool{false, false, false, true, false})

	assert.Equal(t, []ValueCount{{"B", 2}, {"A", 1}, {"C", 1}}, col.ValueCounts())
	assert.Equal(t, 3, col.DistinctCount())
}

func TestBooleanColumnStoresZeroOne(t *testing.T) {
	col := NewBoolean("hired", []bool{true, false, true}, nil)

	assert.True(t, col.IsNumeric())
	assert.Equal(t, []string{"1", "0"}, col.Distinct())
	v, ok := col.Float(0)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestWithColumnLeavesOriginalUntouched(t *testing.T) {
	orig := MustNew(NewNumeric("x", []float64{1, 2}, nil))

	added, err := orig.WithColumn(NewNumeric("weight", []float64{0.5, 0.5}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "weight"}, added.Names())
	assert.Equal(t, []string{"x"}, orig.Names())

	replaced, err := added.WithColumn(NewNumeric("weight", []float64{0.25, 0.75}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "weight"}, replaced.Names())
	w, _ := replaced.Column("weight")
	assert.Equal(t, []float64{0.25, 0.75}, w.Floats())

	_, err = orig.WithColumn(NewNumeric("short", []float64{1}, nil))
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
}

func TestSelectRowsAndRow(t *testing.T) {
	tbl := MustNew(
		NewCategorical("g", []string{"a", "b", "c"}, nil),
		NewNumeric("v", []float64{1.5, 2, 3}, nil),
	)

	sub := tbl.SelectRows([]int{2, 0})
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, []string{"c", "3"}, sub.Row(0))
	assert.Equal(t, []string{"a", "1.5"}, sub.Row(1))
	assert.Equal(t, 3, tbl.Rows())
}

func TestMissingRatio(t *testing.T) {
	tbl := MustNew(
		NewNumeric("a", []float64{1, math.NaN()}, nil),
		NewNumeric("b", []float64{1, 2}, nil),
	)
	assert.Equal(t, 0.25, tbl.MissingRatio())
}

func TestCloneIsDeep(t *testing.T) {
	tbl := MustNew(NewNumeric("a", []float64{1, 2}, nil)).WithName("data.csv")
	cp := tbl.Clone()

	assert.Equal(t, "data.csv", cp.Name())
	a1, _ := tbl.Column("a")
	a2, _ := cp.Column("a")
	assert.NotSame(t, a1, a2)
	assert.Equal(t, a1.Floats(), a2.Floats())
}

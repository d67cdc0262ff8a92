// Package profiling produces descriptive statistics for the numeric columns of a table.
package profiling

import (
	"math"

	"biasdetect/domain/audit"
	"biasdetect/domain/table"

	"gonum.org/v1/gonum/stat"
)

// Profile summarizes every Numeric column that has at least one value.
func Profile(t *table.Table) []audit.ColumnSummary {
	var out []audit.ColumnSummary
	for _, col := range numericColumns(t) {
		data := col.Floats()
		if len(data) == 0 {
			continue
		}
		summary, err := SummarizeColumn(col.Name(), data)
		if err != nil {
			continue
		}
		summary.Missing = col.NullCount()
		out = append(out, summary)
	}
	return out
}

// CorrelationMatrix computes Pearson correlation between every pair of Numeric
// columns over the rows where both values are present.
func CorrelationMatrix(t *table.Table) audit.CorrelationMatrix {
	cols := numericColumns(t)
	m := audit.CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]float64, len(cols)),
	}
	for i, a := range cols {
		m.Columns[i] = a.Name()
		m.Values[i] = make([]float64, len(cols))
		for j, b := range cols {
			switch {
			case j < i:
				m.Values[i][j] = m.Values[j][i]
			case j == i:
				m.Values[i][j] = 1
			default:
				m.Values[i][j] = pairwiseCorrelation(a, b)
			}
		}
	}
	return m
}

func pairwiseCorrelation(a, b *table.Column) float64 {
	var xs, ys []float64
	for r := 0; r < a.Len(); r++ {
		x, okX := a.Float(r)
		y, okY := b.Float(r)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0
	}
	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

func numericColumns(t *table.Table) []*table.Column {
	var out []*table.Column
	for _, c := range t.Columns() {
		if c.Kind() == table.KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

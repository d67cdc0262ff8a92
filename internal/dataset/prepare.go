// Package dataset prepares uploaded tables for a fairness audit: it detects
// likely sensitive attributes and performs basic cleaning.
package dataset

import (
	"fmt"
	"sort"
	"strings"

	"biasdetect/domain/table"

	"github.com/montanaflynn/stats"
)

// SensitiveKeywords are matched case-insensitively as substrings of column names.
var SensitiveKeywords = []string{"gender", "age", "race", "ethnicity", "religion", "disability"}

// DetectSensitiveColumns returns the columns whose name suggests a protected attribute.
func DetectSensitiveColumns(t *table.Table) []string {
	var out []string
	for _, name := range t.Names() {
		lower := strings.ToLower(name)
		for _, kw := range SensitiveKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Clean fills missing values and drops duplicate rows on a copy of t.
// Numeric columns are filled with their mean, the others with their most
// frequent value. Notes describe what was changed.
func Clean(t *table.Table) (*table.Table, []string) {
	out := t.Clone()
	var notes []string

	if out.MissingRatio() > 0 {
		for _, col := range out.Columns() {
			filled := fillMissing(col)
			out, _ = out.WithColumn(filled)
		}
		notes = append(notes, "Missing values filled (numerical: mean, categorical: mode)")
	}

	keep := uniqueRows(out)
	if removed := out.Rows() - len(keep); removed > 0 {
		out = out.SelectRows(keep)
		notes = append(notes, fmt.Sprintf("Removed %d duplicate rows", removed))
	}
	return out, notes
}

func fillMissing(col *table.Column) *table.Column {
	if !col.HasNulls() || col.NullCount() == col.Len() {
		return col
	}

	switch col.Kind() {
	case table.KindNumeric:
		mean, err := stats.Mean(col.Floats())
		if err != nil {
			return col
		}
		values := make([]float64, col.Len())
		for i := range values {
			v, ok := col.Float(i)
			if !ok {
				v = mean
			}
			values[i] = v
		}
		return table.NewNumeric(col.Name(), values, nil)

	case table.KindBoolean:
		fill := mode(col) == "1"
		values := make([]bool, col.Len())
		for i := range values {
			v, ok := col.Float(i)
			values[i] = (ok && v == 1) || (!ok && fill)
		}
		return table.NewBoolean(col.Name(), values, nil)

	default:
		fill := mode(col)
		values := make([]string, col.Len())
		for i := range values {
			if col.IsNull(i) {
				values[i] = fill
			} else {
				values[i] = col.Label(i)
			}
		}
		return table.NewCategorical(col.Name(), values, nil)
	}
}

// mode returns the most frequent value; ties go to the smallest label.
func mode(col *table.Column) string {
	counts := col.ValueCounts()
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	return counts[0].Value
}

// uniqueRows returns the index of the first occurrence of every distinct row.
func uniqueRows(t *table.Table) []int {
	seen := make(map[string]struct{}, t.Rows())
	keep := make([]int, 0, t.Rows())
	cols := t.Columns()
	var b strings.Builder
	for i := 0; i < t.Rows(); i++ {
		b.Reset()
		for _, c := range cols {
			if c.IsNull(i) {
				b.WriteString("\x00")
			} else {
				b.WriteString(c.Label(i))
			}
			b.WriteString("\x1f")
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return keep
}

// Package fairness computes group-fairness metrics over a table and produces
// reweighted tables that counteract group imbalance.
package fairness

import (
	"biasdetect/domain/table"
)

// IsBinary reports whether the non-missing values of col are exactly {0, 1}.
// Only Numeric and Boolean columns can qualify; text "0"/"1" does not.
func IsBinary(col *table.Column) bool {
	if col == nil || !col.IsNumeric() {
		return false
	}
	seen := make(map[float64]struct{}, 2)
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			continue
		}
		if v != 0 && v != 1 {
			return false
		}
		seen[v] = struct{}{}
	}
	return len(seen) == 2
}

// NeedsBinning reports whether the discretizer transforms col.
func NeedsBinning(col *table.Column) bool {
	return col != nil && col.Kind() == table.KindNumeric
}

// BinaryColumns lists the columns usable as a target, in table order.
func BinaryColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if IsBinary(c) {
			out = append(out, c.Name())
		}
	}
	return out
}

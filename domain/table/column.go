package table

import (
	"math"
	"strconv"
)

// Kind is the schema type of a column, assigned once at ingestion.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindBoolean     Kind = "boolean"
)

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNumeric, KindCategorical, KindBoolean:
		return true
	}
	return false
}

// Column is an immutable, named sequence of values of a single Kind.
// Numeric and Boolean columns keep their values in nums (Boolean as 0/1),
// Categorical columns in strs. null marks missing rows.
type Column struct {
	name string
	kind Kind
	nums []float64
	strs []string
	null []bool
}

// ValueCount is a distinct non-missing value and the number of rows holding it.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NewNumeric builds a numeric column. NaN values are treated as missing in
// addition to any row flagged in null (which may be nil).
func NewNumeric(name string, values []float64, null []bool) *Column {
	c := &Column{
		name: name,
		kind: KindNumeric,
		nums: append([]float64(nil), values...),
		null: make([]bool, len(values)),
	}
	for i, v := range values {
		c.null[i] = math.IsNaN(v) || (i < len(null) && null[i])
	}
	return c
}

// NewCategorical builds a text column. null may be nil.
func NewCategorical(name string, values []string, null []bool) *Column {
	c := &Column{
		name: name,
		kind: KindCategorical,
		strs: append([]string(nil), values...),
		null: make([]bool, len(values)),
	}
	for i := range values {
		c.null[i] = i < len(null) && null[i]
	}
	return c
}

// NewBoolean builds a boolean column stored as 0/1. null may be nil.
func NewBoolean(name string, values []bool, null []bool) *Column {
	c := &Column{
		name: name,
		kind: KindBoolean,
		nums: make([]float64, len(values)),
		null: make([]bool, len(values)),
	}
	for i, v := range values {
		if v {
			c.nums[i] = 1
		}
		c.null[i] = i < len(null) && null[i]
	}
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.null) }

// IsNumeric reports whether values are numbers (Numeric or Boolean kinds).
func (c *Column) IsNumeric() bool {
	return c.kind == KindNumeric || c.kind == KindBoolean
}

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool {
	return c.null[i]
}

// Float returns the numeric value of row i. ok is false for missing rows and
// for Categorical columns.
func (c *Column) Float(i int) (v float64, ok bool) {
	if !c.IsNumeric() || c.null[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Label returns the textual value of row i, or "" when missing.
func (c *Column) Label(i int) string {
	if c.null[i] {
		return ""
	}
	if c.kind == KindCategorical {
		return c.strs[i]
	}
	return FormatFloat(c.nums[i])
}

// NullCount returns the number of missing rows.
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// HasNulls reports whether any row is missing.
func (c *Column) HasNulls() bool {
	for _, isNull := range c.null {
		if isNull {
			return true
		}
	}
	return false
}

// MissingRate returns the fraction of missing rows (0 for an empty column).
func (c *Column) MissingRate() float64 {
	if c.Len() == 0 {
		return 0
	}
	return float64(c.NullCount()) / float64(c.Len())
}

// ValueCounts returns the distinct non-missing values in order of first appearance.
func (c *Column) ValueCounts() []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for i := 0; i < c.Len(); i++ {
		if c.null[i] {
			continue
		}
		label := c.Label(i)
		if pos, ok := index[label]; ok {
			counts[pos].Count++
			continue
		}
		index[label] = len(counts)
		counts = append(counts, ValueCount{Value: label, Count: 1})
	}
	return counts
}

// Distinct returns the distinct non-missing values in order of first appearance.
func (c *Column) Distinct() []string {
	counts := c.ValueCounts()
	out := make([]string, len(counts))
	for i, vc := range counts {
		out[i] = vc.Value
	}
	return out
}

// DistinctCount returns the number of distinct non-missing values.
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if !c.null[i] {
			seen[c.Label(i)] = struct{}{}
		}
	}
	return len(seen)
}

// Floats returns the non-missing numeric values. Nil for Categorical columns.
func (c *Column) Floats() []float64 {
	if !c.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, c.Len())
	for i, v := range c.nums {
		if !c.null[i] {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns the non-missing values as text.
func (c *Column) Strings() []string {
	out := make([]string, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.null[i] {
			out = append(out, c.Label(i))
		}
	}
	return out
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	return &Column{
		name: c.name,
		kind: c.kind,
		nums: append([]float64(nil), c.nums...),
		strs: append([]string(nil), c.strs...),
		null: append([]bool(nil), c.null...),
	}
}

// Renamed returns a copy of the column under a new name.
func (c *Column) Renamed(name string) *Column {
	cp := c.Clone()
	cp.name = name
	return cp
}

// Select returns a new column holding only the given rows, in the given order.
func (c *Column) Select(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind, null: make([]bool, len(rows))}
	if c.kind == KindCategorical {
		out.strs = make([]string, len(rows))
	} else {
		out.nums = make([]float64, len(rows))
	}
	for j, i := range rows {
		out.null[j] = c.null[i]
		if c.kind == KindCategorical {
			out.strs[j] = c.strs[i]
		} else {
			out.nums[j] = c.nums[i]
		}
	}
	return out
}

// FormatFloat renders a numeric cell the way it is grouped and exported.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package table is the in-memory tabular dataset the fairness core consumes.
//
// A Table is an ordered set of equally long, named columns. Each column has a
// schema Kind fixed when the table is built, so downstream code switches on the
// Kind instead of re-inspecting raw values. Columns are immutable; every
// transform returns a new Table and leaves the caller's table untouched.
package table

import (
	"strings"

	"biasdetect/domain/core"
)

// Table is an ordered collection of row-aligned columns.
type Table struct {
	name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// New validates the schema and builds a table. All columns must share the same
// length, carry a supported Kind and have unique, non-empty names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, col := range cols {
		if col == nil {
			return nil, core.NewValidationError("", core.ErrSchemaMismatch, "column %d is nil", i)
		}
		if strings.TrimSpace(col.Name()) == "" {
			return nil, core.NewValidationError("", core.ErrSchemaMismatch, "column %d has an empty name", i)
		}
		if !col.Kind().Valid() {
			return nil, core.NewValidationError(col.Name(), core.ErrSchemaMismatch, "column %s has unsupported kind %q", col.Name(), col.Kind())
		}
		if _, dup := t.index[col.Name()]; dup {
			return nil, core.NewValidationError(col.Name(), core.ErrSchemaMismatch, "duplicate column name %s", col.Name())
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, core.NewValidationError(col.Name(), core.ErrSchemaMismatch,
				"column %s has %d rows, expected %d", col.Name(), col.Len(), t.rows)
		}
		t.index[col.Name()] = i
		t.cols = append(t.cols, col)
	}
	return t, nil
}

// MustNew is New for statically known schemas; it panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name is an optional label, usually the source file name.
func (t *Table) Name() string { return t.name }

// WithName returns a shallow copy labelled name.
func (t *Table) WithName(name string) *Table {
	cp := t.shallow()
	cp.name = name
	return cp
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cp := &Table{name: t.name, rows: t.rows, index: make(map[string]int, len(t.cols))}
	for i, c := range t.cols {
		cp.cols = append(cp.cols, c.Clone())
		cp.index[c.Name()] = i
	}
	return cp
}

// WithColumn returns a copy of the table with col appended, or replacing the
// column of the same name in place.
func (t *Table) WithColumn(col *Column) (*Table, error) {
	if col.Len() != t.rows && len(t.cols) > 0 {
		return nil, core.NewValidationError(col.Name(), core.ErrSchemaMismatch,
			"column %s has %d rows, expected %d", col.Name(), col.Len(), t.rows)
	}
	cp := t.shallow()
	if i, ok := cp.index[col.Name()]; ok {
		cp.cols[i] = col
		return cp, nil
	}
	if len(cp.cols) == 0 {
		cp.rows = col.Len()
	}
	cp.index[col.Name()] = len(cp.cols)
	cp.cols = append(cp.cols, col)
	return cp, nil
}

// SelectRows returns a new table holding only the given rows, in order.
func (t *Table) SelectRows(rows []int) *Table {
	cp := &Table{name: t.name, rows: len(rows), index: make(map[string]int, len(t.cols))}
	for i, c := range t.cols {
		cp.cols = append(cp.cols, c.Select(rows))
		cp.index[c.Name()] = i
	}
	return cp
}

// Row returns the textual cells of row i; missing cells are "".
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Label(i)
	}
	return out
}

// MissingRatio returns the fraction of missing cells over the whole table.
func (t *Table) MissingRatio() float64 {
	cells := t.rows * len(t.cols)
	if cells == 0 {
		return 0
	}
	missing := 0
	for _, c := range t.cols {
		missing += c.NullCount()
	}
	return float64(missing) / float64(cells)
}

func (t *Table) shallow() *Table {
	cp := &Table{
		name:  t.name,
		rows:  t.rows,
		cols:  append([]*Column(nil), t.cols...),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		cp.index[k] = v
	}
	return cp
}

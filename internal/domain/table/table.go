// Package table implements the in-memory columnar table shared by the
// tabular tools: an ordered list of named columns with a uniform row count.
// Tables are request-scoped values; nothing here retains state between calls.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
)

var (
	ErrRaggedColumns    = errors.New("table: columns have differing row counts")
	ErrDuplicateColumn  = errors.New("table: duplicate column name")
	ErrEmptyColumnName  = errors.New("table: empty column name")
	ErrAmbiguousInput   = errors.New("table: input must set exactly one variant")
	ErrNotTabular       = errors.New("table: input cannot be normalized to a table")
)

// Column is a named, ordered list of cell values. Cells hold int64, float64,
// bool, string or nil (missing).
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered collection of equally sized columns.
type Table struct {
	Columns []Column
}

// New validates the column set (non-empty names, no duplicates, uniform row
// count) and returns a Table over it.
func New(columns []Column) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	rows := -1
	for _, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, ErrEmptyColumnName
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = struct{}{}
		if rows == -1 {
			rows = len(col.Values)
		} else if len(col.Values) != rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, col.Name, len(col.Values), rows)
		}
	}
	return &Table{Columns: columns}, nil
}

// NumRows returns the row count (uniform across columns).
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or false when absent.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Row materializes row i as a name→value map.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.Columns))
	for _, col := range t.Columns {
		row[col.Name] = col.Values[i]
	}
	return row
}

// Select returns a new Table containing only the given row indexes, in order.
// Column set and order are preserved; zero indexes yield a zero-row table
// with the same columns.
func (t *Table) Select(indexes []int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for ci, col := range t.Columns {
		values := make([]any, 0, len(indexes))
		for _, ri := range indexes {
			values = append(values, col.Values[ri])
		}
		out.Columns[ci] = Column{Name: col.Name, Values: values}
	}
	return out
}

// Preview renders up to n leading rows as aligned text for diagnostics.
func (t *Table) Preview(n int) string {
	if n > t.NumRows() {
		n = t.NumRows()
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.ColumnNames(), "\t")) //nolint:errcheck
	for i := 0; i < n; i++ {
		cells := make([]string, len(t.Columns))
		for ci, col := range t.Columns {
			cells[ci] = FormatCell(col.Values[i])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")) //nolint:errcheck
	}
	_ = w.Flush()
	return b.String()
}

// FormatCell renders a cell value as text. nil renders empty; floats keep a
// decimal marker so a written value parses back to the same type.
func FormatCell(v any) string {
	switch cell := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(cell, 10)
	case float64:
		s := strconv.FormatFloat(cell, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && s != "NaN" {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(cell)
	case string:
		return cell
	default:
		return fmt.Sprintf("%v", cell)
	}
}

// CellType enumerates the storable column types, ordered by promotion
// priority (an Int64 column with one Float64 cell promotes to Float64, any
// other mix demotes to String).
type CellType int

const (
	TypeInt64 CellType = iota
	TypeFloat64
	TypeBool
	TypeString
)

// ColumnType infers the narrowest CellType covering every non-nil cell.
func ColumnType(values []any) CellType {
	current := CellType(-1)
	for _, v := range values {
		var t CellType
		switch v.(type) {
		case nil:
			continue
		case int64:
			t = TypeInt64
		case float64:
			t = TypeFloat64
		case bool:
			t = TypeBool
		default:
			t = TypeString
		}
		switch {
		case current == -1:
			current = t
		case current == t:
		case (current == TypeInt64 && t == TypeFloat64) || (current == TypeFloat64 && t == TypeInt64):
			current = TypeFloat64
		default:
			return TypeString
		}
	}
	if current == -1 {
		return TypeString
	}
	return current
}

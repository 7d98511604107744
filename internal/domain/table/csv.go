// Delimited text I/O. The first row is always the header; cell types are
// inferred per column on read (int64 → float64 → bool → string, empty = nil)
// so a written table reads back with equal cell values.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ReadCSV parses the delimited file at path into a Table.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: empty file")
	}

	header := records[0]
	rows := records[1:]

	columns := make([]Column, len(header))
	for ci, name := range header {
		raw := make([]string, len(rows))
		for ri, row := range rows {
			raw[ri] = row[ci]
		}
		columns[ci] = Column{Name: name, Values: inferColumn(raw)}
	}
	return New(columns)
}

// WriteCSV serializes t to a delimited file at path, header row first.
func WriteCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close() //nolint:errcheck

	writer := csv.NewWriter(f)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for ri := 0; ri < t.NumRows(); ri++ {
		row := make([]string, t.NumCols())
		for ci, col := range t.Columns {
			row[ci] = FormatCell(col.Values[ri])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", ri, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// inferColumn converts raw text cells to the narrowest uniform type that
// parses every non-empty cell. Empty cells become nil and do not influence
// the inferred type.
func inferColumn(raw []string) []any {
	parse := func(kind CellType, s string) (any, bool) {
		switch kind {
		case TypeInt64:
			v, err := strconv.ParseInt(s, 10, 64)
			return v, err == nil
		case TypeFloat64:
			v, err := strconv.ParseFloat(s, 64)
			return v, err == nil
		case TypeBool:
			v, err := strconv.ParseBool(s)
			return v, err == nil
		default:
			return s, true
		}
	}

	for _, kind := range []CellType{TypeInt64, TypeFloat64, TypeBool, TypeString} {
		values := make([]any, len(raw))
		ok := true
		for i, s := range raw {
			if s == "" {
				values[i] = nil
				continue
			}
			v, parsed := parse(kind, s)
			if !parsed {
				ok = false
				break
			}
			values[i] = v
		}
		if ok {
			return values
		}
	}

	// Unreachable: TypeString always parses.
	values := make([]any, len(raw))
	for i, s := range raw {
		values[i] = s
	}
	return values
}

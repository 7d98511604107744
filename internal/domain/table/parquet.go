// Columnar binary export. Tables persist to parquet with one optional leaf
// per column and snappy-compressed pages.
package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// DefaultParquetPath derives the parquet output path from a delimited input
// path by replacing its final extension; extensionless inputs get .parquet
// appended.
func DefaultParquetPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".parquet"
}

// WriteParquet persists t to a parquet file at path.
func WriteParquet(t *Table, path string) error {
	schema, types := parquetSchema(t)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}
	defer f.Close() //nolint:errcheck

	writer := parquet.NewGenericWriter[map[string]any](f, schema, parquet.Compression(&parquet.Snappy))

	rows := make([]map[string]any, t.NumRows())
	for ri := range rows {
		row := make(map[string]any, t.NumCols())
		for ci, col := range t.Columns {
			cell := col.Values[ri]
			if cell == nil {
				continue // optional leaf, absent cell stays null
			}
			row[col.Name] = coerceCell(cell, types[ci])
		}
		rows[ri] = row
	}

	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

// parquetSchema maps each column to an optional parquet leaf node.
func parquetSchema(t *Table) (*parquet.Schema, []CellType) {
	group := parquet.Group{}
	types := make([]CellType, t.NumCols())
	for ci, col := range t.Columns {
		kind := ColumnType(col.Values)
		types[ci] = kind
		switch kind {
		case TypeInt64:
			group[col.Name] = parquet.Optional(parquet.Int(64))
		case TypeFloat64:
			group[col.Name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		case TypeBool:
			group[col.Name] = parquet.Optional(parquet.Leaf(parquet.BooleanType))
		default:
			group[col.Name] = parquet.Optional(parquet.String())
		}
	}
	return parquet.NewSchema("table", group), types
}

// coerceCell aligns a cell with its column's inferred type (an int cell in a
// float column widens; anything in a string column renders as text).
func coerceCell(v any, kind CellType) any {
	switch kind {
	case TypeFloat64:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
		return v
	case TypeString:
		if _, ok := v.(string); !ok {
			return FormatCell(v)
		}
		return v
	default:
		return v
	}
}

// Covers: read_csv
// Covers: write_csv
package table

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	original := mustTable(t, []Column{
		{Name: "name", Values: []any{"ana", "bob"}},
		{Name: "age", Values: []any{int64(31), int64(25)}},
		{Name: "score", Values: []any{1.5, float64(3)}},
		{Name: "active", Values: []any{true, false}},
	})

	path := filepath.Join(t.TempDir(), "people.csv")
	if err := WriteCSV(original, path); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}

	if !reflect.DeepEqual(got.ColumnNames(), original.ColumnNames()) {
		t.Fatalf("ColumnNames = %v; want %v", got.ColumnNames(), original.ColumnNames())
	}
	if got.NumRows() != original.NumRows() {
		t.Fatalf("NumRows = %d; want %d", got.NumRows(), original.NumRows())
	}
	if !reflect.DeepEqual(got.Columns, original.Columns) {
		t.Fatalf("round-trip mismatch:\ngot  %#v\nwant %#v", got.Columns, original.Columns)
	}
}

func TestReadCSV_TypeInference(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mixed.csv")
	content := "id,ratio,flag,label,gap\n1,0.5,true,x,\n2,2,false,7,3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tbl, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}

	id, _ := tbl.Column("id")
	if id.Values[0] != int64(1) {
		t.Errorf("id cell = %v (%T); want int64", id.Values[0], id.Values[0])
	}
	ratio, _ := tbl.Column("ratio")
	if ratio.Values[1] != float64(2) {
		t.Errorf("ratio cell = %v (%T); want float64(2)", ratio.Values[1], ratio.Values[1])
	}
	flag, _ := tbl.Column("flag")
	if flag.Values[0] != true {
		t.Errorf("flag cell = %v (%T); want bool", flag.Values[0], flag.Values[0])
	}
	// "x" forces the whole label column to string, including the "7" cell.
	label, _ := tbl.Column("label")
	if label.Values[1] != "7" {
		t.Errorf("label cell = %v (%T); want string %q", label.Values[1], label.Values[1], "7")
	}
	gap, _ := tbl.Column("gap")
	if gap.Values[0] != nil {
		t.Errorf("empty cell = %v; want nil", gap.Values[0])
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadCSV_RaggedRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ragged.csv")
	if err := os.WriteFile(path, []byte("a,b\n1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadCSV(path); err == nil {
		t.Fatal("expected parse error for ragged rows")
	}
}

func TestWriteCSV_DictShape(t *testing.T) {
	t.Parallel()

	in, err := ParseInputJSON([]byte(`{"a":[1,2],"b":[3,4]}`))
	if err != nil {
		t.Fatalf("ParseInputJSON returned error: %v", err)
	}
	tbl, err := in.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dict.csv")
	if err := WriteCSV(tbl, path); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	back, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if back.NumRows() != 2 || back.NumCols() != 2 {
		t.Fatalf("shape = %dx%d; want 2x2", back.NumRows(), back.NumCols())
	}
	if !reflect.DeepEqual(back.Columns, tbl.Columns) {
		t.Fatalf("parsed-back content differs:\ngot  %#v\nwant %#v", back.Columns, tbl.Columns)
	}
}

// Tagged-variant input normalization: the filter and write tools accept a
// Table, a column→values mapping, or a row-oriented record list, and every
// variant canonicalizes to a Table before any further processing. No runtime
// type sniffing happens past this file.
package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColumnMapping is the dict form {"a":[1,2],"b":[3,4]} with the key order of
// the source document preserved.
type ColumnMapping struct {
	Names  []string
	Values map[string][]any
}

// Record is one row of the record-list form.
type Record struct {
	Keys   []string
	Fields map[string]any
}

// Input is the tagged variant accepted by filter_table and write_csv.
// Exactly one field must be set.
type Input struct {
	Table   *Table
	Mapping *ColumnMapping
	Records []Record
}

// Normalize canonicalizes the set variant into a Table.
func (in Input) Normalize() (*Table, error) {
	set := 0
	if in.Table != nil {
		set++
	}
	if in.Mapping != nil {
		set++
	}
	if in.Records != nil {
		set++
	}
	if set != 1 {
		return nil, ErrAmbiguousInput
	}

	switch {
	case in.Table != nil:
		return New(in.Table.Columns)
	case in.Mapping != nil:
		return normalizeMapping(in.Mapping)
	default:
		return normalizeRecords(in.Records)
	}
}

func normalizeMapping(m *ColumnMapping) (*Table, error) {
	columns := make([]Column, 0, len(m.Names))
	for _, name := range m.Names {
		values, ok := m.Values[name]
		if !ok {
			return nil, fmt.Errorf("%w: mapping key %q has no values", ErrNotTabular, name)
		}
		columns = append(columns, Column{Name: name, Values: values})
	}
	return New(columns)
}

// normalizeRecords takes the union of record keys ordered by first
// appearance; cells missing from a record are nil.
func normalizeRecords(records []Record) (*Table, error) {
	var order []string
	seen := make(map[string]int)
	for _, rec := range records {
		for _, key := range rec.Keys {
			if _, ok := seen[key]; !ok {
				seen[key] = len(order)
				order = append(order, key)
			}
		}
	}

	columns := make([]Column, len(order))
	for i, name := range order {
		values := make([]any, len(records))
		for ri, rec := range records {
			values[ri] = rec.Fields[name] // nil when absent
		}
		columns[i] = Column{Name: name, Values: values}
	}
	return New(columns)
}

// MarshalJSON emits the explicit wire form {"columns":[{"name","values"}...]},
// which ParseInputJSON accepts back: any table a tool returns is structurally
// valid input to any tool that accepts tables.
func (t *Table) MarshalJSON() ([]byte, error) {
	type wireColumn struct {
		Name   string `json:"name"`
		Values []any  `json:"values"`
	}
	doc := struct {
		Columns []wireColumn `json:"columns"`
	}{Columns: make([]wireColumn, len(t.Columns))}
	for i, col := range t.Columns {
		values := col.Values
		if values == nil {
			values = []any{}
		}
		doc.Columns[i] = wireColumn{Name: col.Name, Values: values}
	}
	return json.Marshal(doc)
}

// ParseInputJSON decodes the wire form of the tagged variant:
//   - a JSON array of objects  → record list
//   - {"columns":[{"name":...,"values":[...]}...]} → explicit table
//   - any other JSON object    → column mapping
func ParseInputJSON(raw json.RawMessage) (Input, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Input{}, fmt.Errorf("%w: empty input", ErrNotTabular)
	}

	switch trimmed[0] {
	case '[':
		records, err := parseRecords(trimmed)
		if err != nil {
			return Input{}, err
		}
		return Input{Records: records}, nil
	case '{':
		if isExplicitTable(trimmed) {
			t, err := parseExplicitTable(trimmed)
			if err != nil {
				return Input{}, err
			}
			return Input{Table: t}, nil
		}
		mapping, err := parseMapping(trimmed)
		if err != nil {
			return Input{}, err
		}
		return Input{Mapping: mapping}, nil
	default:
		return Input{}, fmt.Errorf("%w: expected JSON object or array", ErrNotTabular)
	}
}

// isExplicitTable reports whether the object is the serialized Table form.
func isExplicitTable(raw []byte) bool {
	var probe struct {
		Columns []struct {
			Name   *string           `json:"name"`
			Values []json.RawMessage `json:"values"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Columns == nil {
		return false
	}
	for _, col := range probe.Columns {
		if col.Name == nil || col.Values == nil {
			return false
		}
	}
	// A present-but-empty column list is still the Table form: a zero-column
	// table marshals to {"columns":[]} and must parse back as one.
	return true
}

func parseExplicitTable(raw []byte) (*Table, error) {
	var doc struct {
		Columns []struct {
			Name   string            `json:"name"`
			Values []json.RawMessage `json:"values"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}

	columns := make([]Column, len(doc.Columns))
	for i, col := range doc.Columns {
		values := make([]any, len(col.Values))
		for vi, cell := range col.Values {
			v, err := decodeScalar(cell)
			if err != nil {
				return nil, err
			}
			values[vi] = v
		}
		columns[i] = Column{Name: col.Name, Values: values}
	}
	return New(columns)
}

func parseMapping(raw []byte) (*ColumnMapping, error) {
	keys, fields, err := decodeOrderedObject(raw)
	if err != nil {
		return nil, err
	}

	mapping := &ColumnMapping{Names: keys, Values: make(map[string][]any, len(keys))}
	for _, key := range keys {
		arr, ok := fields[key].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: mapping value for %q is not an array", ErrNotTabular, key)
		}
		mapping.Values[key] = arr
	}
	return mapping, nil
}

func parseRecords(raw []byte) ([]Record, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}

	records := make([]Record, len(elems))
	for i, elem := range elems {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrNotTabular, i)
		}
		keys, fields, err := decodeOrderedObject(trimmed)
		if err != nil {
			return nil, err
		}
		records[i] = Record{Keys: keys, Fields: fields}
	}
	return records, nil
}

// decodeOrderedObject decodes a one-level JSON object preserving key order.
// Values decode as int64/float64/bool/string/nil scalars; arrays decode
// element-wise; nested objects are rejected (not tabular).
func decodeOrderedObject(raw []byte) ([]string, map[string]any, error) {
	var shallow map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shallow); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}

	keys, err := objectKeyOrder(raw)
	if err != nil {
		return nil, nil, err
	}

	fields := make(map[string]any, len(shallow))
	for key, cell := range shallow {
		trimmed := bytes.TrimSpace(cell)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var elems []json.RawMessage
			if err := json.Unmarshal(trimmed, &elems); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
			}
			arr := make([]any, len(elems))
			for i, e := range elems {
				v, err := decodeScalar(e)
				if err != nil {
					return nil, nil, err
				}
				arr[i] = v
			}
			fields[key] = arr
			continue
		}
		v, err := decodeScalar(cell)
		if err != nil {
			return nil, nil, err
		}
		fields[key] = v
	}
	return keys, fields, nil
}

// objectKeyOrder walks the object's top-level tokens to recover key order,
// which Go maps discard.
func objectKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // consume '{'
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string object key", ErrNotTabular)
		}
		keys = append(keys, key)

		// Skip the value, whatever its shape.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
		}
	}
	return keys, nil
}

// decodeScalar decodes one JSON scalar into a cell value. Integral numbers
// become int64, others float64; nested containers are rejected.
func decodeScalar(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{', '[':
		return nil, fmt.Errorf("%w: nested container in cell position", ErrNotTabular)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}

	if num, ok := v.(json.Number); ok {
		if i, err := num.Int64(); err == nil && !bytes.ContainsAny(trimmed, ".eE") {
			return i, nil
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrNotTabular, num.String())
		}
		return f, nil
	}
	return v, nil
}

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/haobosang/datax-mcp-server/internal/domain/table"
)

// ReadCSVExecutor parses a delimited file into a table. Contract:
// best-effort, report and return null — parse and I/O failures are logged
// and converted into a `{"table":null}` sentinel result with a nil error;
// they never reach the dispatch boundary.
type ReadCSVExecutor struct {
	previewRows int
	logger      *log.Logger
}

func NewReadCSVExecutor(previewRows int, logger *log.Logger) Executor {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &ReadCSVExecutor{previewRows: previewRows, logger: logger}
}

type readCSVParams struct {
	FilePath    string `json:"file_path"`
	DisplayData *bool  `json:"display_data"` // default true
	ToParquet   bool   `json:"to_parquet"`
	ParquetPath string `json:"parquet_path"`
}

var nullTableResult = json.RawMessage(`{"table":null}`)

func (e *ReadCSVExecutor) Execute(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var in readCSVParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if in.FilePath == "" {
		return nil, fmt.Errorf("%w: file_path is required", ErrBuiltinExecutionFailed)
	}

	t, err := table.ReadCSV(in.FilePath)
	if err != nil {
		e.logf("read_csv: %v", err)
		return nullTableResult, nil
	}

	if in.DisplayData == nil || *in.DisplayData {
		e.logf("read_csv: %s (first %d rows)\n%s", in.FilePath, e.previewRows, t.Preview(e.previewRows))
	}

	result := map[string]any{"table": t}

	if in.ToParquet {
		parquetPath := in.ParquetPath
		if parquetPath == "" {
			parquetPath = table.DefaultParquetPath(in.FilePath)
		}
		if err := table.WriteParquet(t, parquetPath); err != nil {
			e.logf("read_csv: parquet export: %v", err)
			return nullTableResult, nil
		}
		e.logf("read_csv: converted and saved to parquet: %s", parquetPath)
		result["parquet_path"] = parquetPath
	}

	out, err := json.Marshal(result)
	if err != nil {
		e.logf("read_csv: marshal result: %v", err)
		return nullTableResult, nil
	}
	return out, nil
}

func (e *ReadCSVExecutor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// FilterTableExecutor filters a normalized table with a boolean expression.
// Contract: never fail the caller — a malformed expression, unknown column
// or even an un-normalizable table input degrades to returning the input
// unchanged (identity transform), logging the cause. This silently hides
// filter errors from the caller; it reproduces the documented historical
// behavior and must not be "fixed" here.
type FilterTableExecutor struct {
	logger *log.Logger
}

func NewFilterTableExecutor(logger *log.Logger) Executor {
	return &FilterTableExecutor{logger: logger}
}

type filterTableParams struct {
	Table      json.RawMessage `json:"table"`
	FilterExpr string          `json:"filter_expr"`
}

func (e *FilterTableExecutor) Execute(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var in filterTableParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}

	identity := func() json.RawMessage {
		out, _ := json.Marshal(map[string]any{"table": in.Table})
		return out
	}

	input, err := table.ParseInputJSON(in.Table)
	if err != nil {
		e.logf("filter_table: %v", err)
		return identity(), nil
	}
	t, err := input.Normalize()
	if err != nil {
		e.logf("filter_table: %v", err)
		return identity(), nil
	}

	filtered, err := table.Filter(t, in.FilterExpr)
	if err != nil {
		e.logf("filter_table: %v", err)
		out, merr := json.Marshal(map[string]any{"table": t})
		if merr != nil {
			return identity(), nil
		}
		return out, nil
	}

	out, err := json.Marshal(map[string]any{"table": filtered})
	if err != nil {
		e.logf("filter_table: marshal result: %v", err)
		return identity(), nil
	}
	return out, nil
}

func (e *FilterTableExecutor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// WriteCSVExecutor serializes a normalized table to a delimited file.
// Contract split: input that does not normalize into a table is a hard type
// error; I/O and serialization failures are logged and reported as
// `{"written":false}` with a nil error.
type WriteCSVExecutor struct {
	logger *log.Logger
}

func NewWriteCSVExecutor(logger *log.Logger) Executor {
	return &WriteCSVExecutor{logger: logger}
}

type writeCSVParams struct {
	Table      json.RawMessage `json:"table"`
	OutputPath string          `json:"output_path"`
}

func (e *WriteCSVExecutor) Execute(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var in writeCSVParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if in.OutputPath == "" {
		return nil, fmt.Errorf("%w: output_path is required", ErrBuiltinExecutionFailed)
	}

	input, err := table.ParseInputJSON(in.Table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuiltinExecutionFailed, err)
	}
	t, err := input.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuiltinExecutionFailed, err)
	}

	e.logf("write_csv: table with %d rows and %d columns", t.NumRows(), t.NumCols())

	if err := table.WriteCSV(t, in.OutputPath); err != nil {
		e.logf("write_csv: %v", err)
		return json.RawMessage(`{"written":false}`), nil
	}

	e.logf("write_csv: table written to %s", in.OutputPath)
	return json.RawMessage(`{"written":true}`), nil
}

func (e *WriteCSVExecutor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/haobosang/datax-mcp-server/internal/domain/chart"
)

// PlotDictExecutor renders a key->value mapping as a bar-chart PNG.
// Validation errors (non-mapping data, non-numeric values, missing
// save_path) surface to the caller and create no file.
type PlotDictExecutor struct {
	renderer BarRenderer
}

func NewPlotDictExecutor(renderer BarRenderer) Executor {
	return &PlotDictExecutor{renderer: renderer}
}

type plotDictParams struct {
	Data     json.RawMessage `json:"data"`
	Title    string          `json:"title"`
	XLabel   string          `json:"xlabel"`
	YLabel   string          `json:"ylabel"`
	SavePath string          `json:"save_path"`
}

func (e *PlotDictExecutor) Execute(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	if e.renderer == nil {
		return nil, fmt.Errorf("%w: renderer not configured", ErrBuiltinExecutionFailed)
	}

	var in plotDictParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if in.SavePath == "" {
		return nil, fmt.Errorf("%w: save_path is required", ErrBuiltinExecutionFailed)
	}

	data, err := decodeNumericMapping(in.Data)
	if err != nil {
		return nil, err
	}

	err = e.renderer.RenderBar(chart.Spec{
		Data:     data,
		Title:    in.Title,
		XLabel:   in.XLabel,
		YLabel:   in.YLabel,
		SavePath: in.SavePath,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuiltinExecutionFailed, err)
	}

	out, _ := json.Marshal(map[string]any{"saved": in.SavePath})
	return out, nil
}

// decodeNumericMapping enforces the mapping shape: a JSON object whose
// values are all numbers.
func decodeNumericMapping(raw json.RawMessage) (map[string]float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: data must be a mapping", ErrBuiltinExecutionFailed)
	}

	var data map[string]float64
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return nil, fmt.Errorf("%w: data values must be numeric", ErrBuiltinExecutionFailed)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: data must not be empty", ErrBuiltinExecutionFailed)
	}
	return data, nil
}

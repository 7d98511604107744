// Package chart renders category→value mappings as bar-chart PNG files.
// Rendering state lives entirely inside RenderBar: the plot canvas is built,
// streamed to disk and dropped before the call returns.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	ErrNoData      = errors.New("chart: data must be a non-empty mapping")
	ErrNoSavePath  = errors.New("chart: save_path is required")
)

// Default labels applied when the caller leaves them empty.
const (
	DefaultTitle  = "Dict Plot"
	DefaultXLabel = "Keys"
	DefaultYLabel = "Values"
)

// Spec describes one bar chart: one bar per key, value = bar height.
type Spec struct {
	Data     map[string]float64
	Title    string
	XLabel   string
	YLabel   string
	SavePath string
}

// Renderer holds the figure geometry, in inches.
type Renderer struct {
	WidthIn  float64
	HeightIn float64
}

// NewRenderer returns a Renderer with the given figure size; non-positive
// dimensions fall back to the 8x5 default canvas.
func NewRenderer(widthIn, heightIn float64) *Renderer {
	if widthIn <= 0 {
		widthIn = 8
	}
	if heightIn <= 0 {
		heightIn = 5
	}
	return &Renderer{WidthIn: widthIn, HeightIn: heightIn}
}

// RenderBar validates spec, creates missing parent directories and writes the
// PNG. Validation failures happen before any filesystem effect.
//
// Keys are sorted so the bar order is deterministic regardless of map
// iteration order.
func (r *Renderer) RenderBar(spec Spec) error {
	if len(spec.Data) == 0 {
		return ErrNoData
	}
	if spec.SavePath == "" {
		return ErrNoSavePath
	}

	keys := make([]string, 0, len(spec.Data))
	for key := range spec.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make(plotter.Values, len(keys))
	for i, key := range keys {
		values[i] = spec.Data[key]
	}

	p := plot.New()
	p.Title.Text = labelOr(spec.Title, DefaultTitle)
	p.X.Label.Text = labelOr(spec.XLabel, DefaultXLabel)
	p.Y.Label.Text = labelOr(spec.YLabel, DefaultYLabel)
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff} // skyblue
	bars.LineStyle.Color = color.Black
	bars.LineStyle.Width = vg.Points(1)
	p.Add(bars)
	p.NominalX(keys...)

	if dir := filepath.Dir(spec.SavePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart directory: %w", err)
		}
	}

	writer, err := p.WriterTo(vg.Length(r.WidthIn)*vg.Inch, vg.Length(r.HeightIn)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	f, err := os.Create(spec.SavePath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if _, err := writer.WriteTo(f); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}

func labelOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

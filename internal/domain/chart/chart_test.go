// Covers: plot_dict
package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderBar_CreatesDirAndNonEmptyPNG(t *testing.T) {
	t.Parallel()

	savePath := filepath.Join(t.TempDir(), "out", "dir", "chart.png")
	err := NewRenderer(8, 5).RenderBar(Spec{
		Data:     map[string]float64{"x": 1, "y": 2},
		SavePath: savePath,
	})
	if err != nil {
		t.Fatalf("RenderBar returned error: %v", err)
	}

	data, err := os.ReadFile(savePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("chart file is empty")
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("chart file does not start with PNG magic: % x", data[:8])
	}
}

func TestRenderBar_EmptyDataFailsWithoutFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	savePath := filepath.Join(dir, "nope", "chart.png")

	err := NewRenderer(8, 5).RenderBar(Spec{Data: nil, SavePath: savePath})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	// Validation must precede any filesystem effect.
	if _, statErr := os.Stat(filepath.Join(dir, "nope")); !os.IsNotExist(statErr) {
		t.Fatal("directory was created despite validation failure")
	}
}

func TestRenderBar_MissingSavePath(t *testing.T) {
	t.Parallel()

	err := NewRenderer(8, 5).RenderBar(Spec{Data: map[string]float64{"x": 1}})
	if !errors.Is(err, ErrNoSavePath) {
		t.Fatalf("expected ErrNoSavePath, got %v", err)
	}
}

func TestNewRenderer_DefaultsOnNonPositive(t *testing.T) {
	t.Parallel()

	r := NewRenderer(0, -1)
	if r.WidthIn != 8 || r.HeightIn != 5 {
		t.Fatalf("geometry = %vx%v; want 8x5", r.WidthIn, r.HeightIn)
	}
}

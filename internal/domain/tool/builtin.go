package tool

import (
	"context"
	"encoding/json"
	"log"

	"github.com/haobosang/datax-mcp-server/internal/domain/chart"
)

// Builtin tool names.
const (
	BuiltinAdd               = "add"
	BuiltinGetSecretWord     = "get_secret_word"
	BuiltinGetCurrentWeather = "get_current_weather"
	BuiltinReadCSV           = "read_csv"
	BuiltinFilterTable       = "filter_table"
	BuiltinPlotDict          = "plot_dict"
	BuiltinWriteCSV          = "write_csv"
)

// WeatherFetcher is the outbound dependency of get_current_weather.
// internal/infra/weather.Client satisfies it.
type WeatherFetcher interface {
	Current(ctx context.Context, city string) (string, error)
}

// BarRenderer is the rendering dependency of plot_dict.
// internal/domain/chart.Renderer satisfies it.
type BarRenderer interface {
	RenderBar(spec chart.Spec) error
}

// Picker selects a uniform random index in [0,n). Injectable so
// get_secret_word is deterministic under test seeding.
type Picker func(n int) int

// BuiltinServices carries the dependencies of the builtin executors.
type BuiltinServices struct {
	Weather     WeatherFetcher
	Renderer    BarRenderer
	Pick        Picker
	PreviewRows int
	Logger      *log.Logger
}

func builtinDefinitions() []Definition {
	return []Definition{
		{
			Name:        BuiltinAdd,
			Description: "Add two integers",
			InputSchema: json.RawMessage(`{"type":"object","required":["a","b"],"properties":{"a":{"type":"integer"},"b":{"type":"integer"}},"additionalProperties":false}`),
			Enabled:     true,
		},
		{
			Name:        BuiltinGetSecretWord,
			Description: "Return a random secret word",
			InputSchema: json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`),
			Enabled:     true,
		},
		{
			Name:        BuiltinGetCurrentWeather,
			Description: "Fetch the current weather report for a city from wttr.in",
			InputSchema: json.RawMessage(`{"type":"object","required":["city"],"properties":{"city":{"type":"string"}},"additionalProperties":false}`),
			Enabled:     true,
		},
		{
			Name:        BuiltinReadCSV,
			Description: "Read a CSV file into a table, optionally previewing rows and exporting parquet",
			InputSchema: json.RawMessage(`{"type":"object","required":["file_path"],"properties":{"file_path":{"type":"string"},"display_data":{"type":"boolean"},"to_parquet":{"type":"boolean"},"parquet_path":{"type":"string"}},"additionalProperties":false}`),
			Enabled:     true,
		},
		{
			Name:        BuiltinFilterTable,
			Description: "Filter a table (or dict / record list) with a boolean expression like \"age > 30 and country == 'AR'\"",
			InputSchema: json.RawMessage(`{"type":"object","required":["table","filter_expr"],"properties":{"table":{},"filter_expr":{"type":"string"}},"additionalProperties":false}`),
			Enabled:     true,
		},
		{
			Name:        BuiltinPlotDict,
			Description: "Render a key->value mapping as a bar chart PNG",
			InputSchema: json.RawMessage(`{"type":"object","required":["data","save_path"],"properties":{"data":{"type":"object"},"title":{"type":"string"},"xlabel":{"type":"string"},"ylabel":{"type":"string"},"save_path":{"type":"string"}},"additionalProperties":false}`),
			Enabled:     true,
		},
		{
			Name:        BuiltinWriteCSV,
			Description: "Write a table (or dict / record list) to a CSV file",
			InputSchema: json.RawMessage(`{"type":"object","required":["table","output_path"],"properties":{"table":{},"output_path":{"type":"string"}},"additionalProperties":false}`),
			Enabled:     true,
		},
	}
}

// RegisterBuiltins registers every builtin tool, applying manifest overrides
// when one is provided.
func RegisterBuiltins(registry *Registry, services BuiltinServices, manifest *Manifest) error {
	executors := map[string]Executor{
		BuiltinAdd:               NewAddExecutor(),
		BuiltinGetSecretWord:     NewSecretWordExecutor(services.Pick),
		BuiltinGetCurrentWeather: NewWeatherExecutor(services.Weather),
		BuiltinReadCSV:           NewReadCSVExecutor(services.PreviewRows, services.Logger),
		BuiltinFilterTable:       NewFilterTableExecutor(services.Logger),
		BuiltinPlotDict:          NewPlotDictExecutor(services.Renderer),
		BuiltinWriteCSV:          NewWriteCSVExecutor(services.Logger),
	}

	defs := builtinDefinitions()
	if manifest != nil {
		defs = manifest.Apply(defs)
	}

	for _, def := range defs {
		if err := registry.Register(def, executors[def.Name]); err != nil && err != ErrExecutorAlreadyRegistered {
			return err
		}
	}
	return nil
}

// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup.
package config

import (
	"os"
	"strconv"
)

// Config holds runtime configuration for the datax tool server.
type Config struct {
	// HTTP transport
	Addr      string // DATAX_ADDR — default: "0.0.0.0:8080"
	JWTSecret string // DATAX_JWT_SECRET — empty disables the bearer guard

	// Weather tool
	WeatherBaseURL string // DATAX_WEATHER_BASE_URL — default: "https://wttr.in"

	// Tabular tools
	CSVPreviewRows int    // DATAX_CSV_PREVIEW_ROWS — default: 5
	ToolManifest   string // DATAX_TOOL_MANIFEST — optional YAML overrides, empty = none

	// Chart tool (figure size in inches, matching the 8x5 default canvas)
	ChartWidthIn  float64 // DATAX_CHART_WIDTH_IN — default: 8
	ChartHeightIn float64 // DATAX_CHART_HEIGHT_IN — default: 5
}

const (
	envKeyAddr           = "DATAX_ADDR"
	envKeyJWTSecret      = "DATAX_JWT_SECRET"
	envKeyWeatherBaseURL = "DATAX_WEATHER_BASE_URL"
	envKeyCSVPreviewRows = "DATAX_CSV_PREVIEW_ROWS"
	envKeyToolManifest   = "DATAX_TOOL_MANIFEST"
	envKeyChartWidthIn   = "DATAX_CHART_WIDTH_IN"
	envKeyChartHeightIn  = "DATAX_CHART_HEIGHT_IN"
)

// Load reads configuration from environment variables, applying defaults for
// missing or unparsable values.
func Load() Config {
	return Config{
		Addr:           envOr(envKeyAddr, "0.0.0.0:8080"),
		JWTSecret:      os.Getenv(envKeyJWTSecret),
		WeatherBaseURL: envOr(envKeyWeatherBaseURL, "https://wttr.in"),
		CSVPreviewRows: envIntOr(envKeyCSVPreviewRows, 5),
		ToolManifest:   os.Getenv(envKeyToolManifest),
		ChartWidthIn:   envFloatOr(envKeyChartWidthIn, 8),
		ChartHeightIn:  envFloatOr(envKeyChartHeightIn, 5),
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses key as a positive integer, falling back on absence or garbage.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envFloatOr parses key as a positive float, falling back on absence or garbage.
func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

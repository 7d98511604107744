// DataX - MCP data-tool server entry point.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haobosang/datax-mcp-server/internal/domain/chart"
	"github.com/haobosang/datax-mcp-server/internal/domain/tool"
	"github.com/haobosang/datax-mcp-server/internal/infra/config"
	"github.com/haobosang/datax-mcp-server/internal/infra/eventbus"
	"github.com/haobosang/datax-mcp-server/internal/infra/weather"
	"github.com/haobosang/datax-mcp-server/internal/server"
	"github.com/haobosang/datax-mcp-server/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	if len(args) > 0 && args[0] == "serve" {
		return runServe(args[1:], out)
	}

	fs := flag.NewFlagSet("datax", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	// Default: print version
	fmt.Fprintln(out, version.String()) //nolint:errcheck
	return 0
}

func runServe(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("datax serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	transport := fs.String("transport", "stdio", "Transport: stdio, http or sse")
	addr := fs.String("addr", "", "HTTP listen address (overrides DATAX_ADDR)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *transport != "stdio" && *transport != "http" && *transport != "sse" {
		fmt.Fprintf(out, "unknown transport %q\n", *transport) //nolint:errcheck
		return 2
	}

	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}

	// On stdio, stdout belongs to the protocol; all diagnostics go to stderr.
	logger := log.New(os.Stderr, "datax ", log.LstdFlags)

	srv, err := buildServer(cfg, logger)
	if err != nil {
		logger.Printf("startup: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *transport == "stdio" {
		if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("stdio transport: %v", err)
			return 1
		}
		return 0
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http transport: %v", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
			return 1
		}
	}
	return 0
}

// buildServer wires config, event bus, outbound clients and the builtin
// tools into a ready server.
func buildServer(cfg config.Config, logger *log.Logger) (*server.Server, error) {
	bus := eventbus.New()
	go server.LogInvocations(context.Background(), bus, logger)

	var manifest *tool.Manifest
	if cfg.ToolManifest != "" {
		m, err := tool.LoadManifest(cfg.ToolManifest)
		if err != nil {
			return nil, err
		}
		manifest = m
	}

	registry := tool.NewRegistry(bus)
	err := tool.RegisterBuiltins(registry, tool.BuiltinServices{
		Weather:     weather.NewClient(cfg.WeatherBaseURL),
		Renderer:    chart.NewRenderer(cfg.ChartWidthIn, cfg.ChartHeightIn),
		PreviewRows: cfg.CSVPreviewRows,
		Logger:      logger,
	}, manifest)
	if err != nil {
		return nil, err
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Addr
	srvCfg.JWTSecret = []byte(cfg.JWTSecret)
	return server.New(srvCfg, registry, logger)
}

func printHelp(out io.Writer) {
	helpText := `DataX - MCP data-tool server

Usage:
  datax [options]
  datax serve [options]

Options:
  --version    Show version information
  --help       Show this help message

Serve options:
  --transport  Transport to serve on: stdio (default), http or sse
  --addr       HTTP listen address (overrides DATAX_ADDR)

Examples:
  datax --version
  datax serve
  datax serve --transport http --addr 0.0.0.0:8080`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}

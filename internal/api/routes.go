// Route registration and go-chi router setup for the HTTP transports.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apmiddleware "github.com/haobosang/datax-mcp-server/internal/api/middleware"
	"github.com/haobosang/datax-mcp-server/internal/version"
)

// RouterDeps carries the transport handlers and the optional JWT secret.
// Streamable serves the MCP streamable-HTTP protocol at /mcp; SSE serves
// the legacy SSE protocol at /sse. Both are built by internal/server.
type RouterDeps struct {
	JWTSecret  []byte
	Streamable http.Handler
	SSE        http.Handler
}

// NewRouter creates and configures a chi router with all routes.
// Public routes (/health, /version) never require auth; the MCP endpoints
// are guarded by BearerAuth only when a JWT secret is configured.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version.String())) //nolint:errcheck
	})

	// ===== MCP ROUTES (JWT-guarded when a secret is configured) =====

	r.Group(func(r chi.Router) {
		if len(deps.JWTSecret) > 0 {
			r.Use(apmiddleware.BearerAuth(deps.JWTSecret))
		}
		if deps.Streamable != nil {
			r.Handle("/mcp", deps.Streamable)  // streamable HTTP transport
			r.Handle("/mcp/*", deps.Streamable)
		}
		if deps.SSE != nil {
			r.Handle("/sse", deps.SSE) // legacy SSE transport
			r.Handle("/sse/*", deps.SSE)
		}
	})

	return r
}

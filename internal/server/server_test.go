package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haobosang/datax-mcp-server/internal/api"
	"github.com/haobosang/datax-mcp-server/internal/domain/tool"
	"github.com/haobosang/datax-mcp-server/internal/infra/eventbus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != "0.0.0.0:8080" {
		t.Fatalf("Addr = %q; want %q", cfg.Addr, "0.0.0.0:8080")
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Fatalf("ReadTimeout = %v; want %v", cfg.ReadTimeout, 15*time.Second)
	}
	if cfg.WriteTimeout != 15*time.Second {
		t.Fatalf("WriteTimeout = %v; want %v", cfg.WriteTimeout, 15*time.Second)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Fatalf("IdleTimeout = %v; want %v", cfg.IdleTimeout, 60*time.Second)
	}
}

func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry(nil)
	err := tool.RegisterBuiltins(r, tool.BuiltinServices{PreviewRows: 5}, nil)
	if err != nil {
		t.Fatalf("RegisterBuiltins returned error: %v", err)
	}
	return r
}

func TestNew_ConfiguresAddressAndHandler(t *testing.T) {
	cfg := Config{Addr: "127.0.0.1:18080", ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, IdleTimeout: 3 * time.Second}
	s, err := New(cfg, testRegistry(t), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if s.http == nil {
		t.Fatal("server.http should not be nil")
	}
	if s.http.Addr != "127.0.0.1:18080" {
		t.Fatalf("Addr = %q; want %q", s.http.Addr, "127.0.0.1:18080")
	}
	if s.http.Handler == nil {
		t.Fatal("Handler should not be nil")
	}
}

func TestNew_RejectsBrokenToolSchema(t *testing.T) {
	r := tool.NewRegistry(nil)
	err := r.Register(tool.Definition{
		Name:        "broken",
		InputSchema: json.RawMessage(`[1,2]`),
		Enabled:     true,
	}, tool.ExecutorFunc(func(context.Context, json.RawMessage) (json.RawMessage, error) {
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := New(DefaultConfig(), r, nil); err == nil {
		t.Fatal("expected schema decode error")
	}
}

func TestHandler_ServesHealth(t *testing.T) {
	s, err := New(DefaultConfig(), testRegistry(t), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
}

func TestRenderResult(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"object passes through", `{"sum":5}`, `{"sum":5}`},
		{"object is compacted", "{\n  \"sum\": 5\n}", `{"sum":5}`},
		{"bare string rendered verbatim", `"London: +21°C"`, "London: +21°C"},
		{"null passes through", `null`, `null`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := renderResult(json.RawMessage(tc.in)); got != tc.want {
				t.Fatalf("renderResult(%s) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogCaller(t *testing.T) {
	buf := &syncBuffer{}
	s, err := New(DefaultConfig(), testRegistry(t), log.New(buf, "", 0))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// No subject in context (stdio, or HTTP without the bearer guard).
	s.logCaller(context.Background(), "add")
	if buf.String() != "" {
		t.Fatalf("logged without a subject: %q", buf.String())
	}

	// Subject injected by the bearer guard.
	s.logCaller(api.WithSubject(context.Background(), "alice"), "add")
	line := buf.String()
	if !strings.Contains(line, "tool=add") || !strings.Contains(line, "subject=alice") {
		t.Fatalf("unexpected caller log line: %q", line)
	}
}

func TestLogInvocations(t *testing.T) {
	bus := eventbus.New()
	buf := &syncBuffer{}
	logger := log.New(buf, "", 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		LogInvocations(ctx, bus, logger)
	}()

	bus.Publish(eventbus.TopicToolInvoked, eventbus.Invocation{
		ID: "inv-1", Tool: "add", DurationMS: 2, Outcome: "ok",
	})

	deadline := time.After(time.Second)
	for buf.String() == "" {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for invocation log line")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	line := buf.String()
	if !strings.Contains(line, "tool=add") || !strings.Contains(line, "outcome=ok") {
		t.Fatalf("unexpected log line: %q", line)
	}
}

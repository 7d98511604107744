// Covers: get_current_weather
package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCurrent_ReturnsRawBody(t *testing.T) {
	t.Parallel()

	const report = "Weather report: Tokyo\n\n      \\   /     Sunny\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Tokyo" {
			t.Errorf("path = %q; want %q", r.URL.Path, "/Tokyo")
		}
		_, _ = w.Write([]byte(report))
	}))
	t.Cleanup(server.Close)

	got, err := NewClient(server.URL).Current(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if got != report {
		t.Fatalf("Current = %q; want raw body %q", got, report)
	}
}

func TestCurrent_CityPassedThroughUnescaped(t *testing.T) {
	t.Parallel()

	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	// "London?m" is a meaningful wttr.in request (metric units); the client
	// must not escape it into %3F.
	if _, err := NewClient(server.URL).Current(context.Background(), "London?m"); err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if !strings.HasPrefix(gotURI, "/London?m") {
		t.Fatalf("request URI = %q; want unescaped /London?m", gotURI)
	}
}

func TestCurrent_Non2xxBodyStillReturned(t *testing.T) {
	t.Parallel()

	// wttr.in answers unknown locations with a 404 whose body is the
	// explanatory report; that text must reach the caller, not an error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("ERROR: Unknown location: nowhere"))
	}))
	t.Cleanup(server.Close)

	got, err := NewClient(server.URL).Current(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("404 must not error; got %v", err)
	}
	if got != "ERROR: Unknown location: nowhere" {
		t.Fatalf("Current = %q; want the 404 body verbatim", got)
	}
}

func TestCurrent_TransportErrorPropagates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	if _, err := NewClient(server.URL).Current(context.Background(), "Tokyo"); err == nil {
		t.Fatal("expected transport error for closed server")
	}
}

func TestCurrent_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(server.URL).Current(ctx, "Tokyo"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

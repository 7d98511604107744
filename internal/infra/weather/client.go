// Package weather — wttr.in text client.
// Client calls the wttr.in console-weather service using stdlib net/http and
// returns the plain-text report body verbatim; no parsing happens here.
//
// Contract note: this client deliberately performs no local error recovery.
// A failed fetch (DNS, refused connection, context cancel) returns an error
// to the tool layer, which surfaces it to the caller — the weather tool is
// the one tool whose failures are hard failures. The response status is never
// inspected; whatever body the service sends comes back verbatim.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client fetches current-weather reports for a city.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client against baseURL (e.g. "https://wttr.in").
// No client-side timeout is set: cancellation is the caller's business via
// the request context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Current fetches the weather report for city via GET {base}/{city} and
// returns the raw response body.
//
// The city is interpolated into the path as-is, without URL escaping. That
// matches the service's own behavior of treating the path as free text
// ("Buenos Aires", "~Eiffel+Tower" and unit suffixes like "London?m" are all
// meaningful to wttr.in) and is preserved on purpose.
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+city, nil)
	if err != nil {
		return "", fmt.Errorf("build weather request: %w", err)
	}
	// wttr.in sniffs User-Agent; curl gets the console report.
	req.Header.Set("User-Agent", "curl/8.5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather fetch: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read weather response: %w", err)
	}

	// The status code is deliberately not inspected: wttr.in answers unknown
	// locations with a 404 whose body is the explanatory report, and the
	// caller gets that text like any other.
	return string(body), nil
}

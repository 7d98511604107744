// Shared context helpers for API middleware.
package api

import (
	"context"

	"github.com/haobosang/datax-mcp-server/internal/api/ctxkeys"
)

// WithSubject adds the authenticated subject to the request context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxkeys.Subject, subject)
}

// GetSubject retrieves the authenticated subject from context.
func GetSubject(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(ctxkeys.Subject).(string)
	if !ok || subject == "" {
		return "", ErrMissingSubject
	}
	return subject, nil
}

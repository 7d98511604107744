package api

import "errors"

// ErrMissingSubject is returned when no authenticated subject is in context.
var ErrMissingSubject = errors.New("missing subject in context")

package tool

import (
	"context"
	"encoding/json"
)

// Executor defines the runtime contract for executable tools. Params arrive
// as the raw JSON arguments object; the returned message is the tool result.
//
// Error discipline is per-tool and deliberately uneven (it reproduces the
// historical contracts): some tools convert their failures into sentinel
// results and return a nil error, others surface hard errors. Each builtin
// documents which side it is on.
type Executor interface {
	Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	return f(ctx, params)
}

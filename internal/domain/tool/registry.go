package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haobosang/datax-mcp-server/internal/infra/eventbus"
	"github.com/haobosang/datax-mcp-server/pkg/uuid"
)

var (
	ErrExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrExecutorNotRegistered     = errors.New("tool executor not registered")
	ErrValidationFailed          = errors.New("tool params validation failed")
)

// Definition is the registry-facing description of one tool: its wire name,
// human description and raw JSON input schema.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Enabled     bool
}

// Registry maps tool names to executors and keeps the ordered definition
// catalog. All state is in-memory and fixed after startup; Dispatch takes no
// locks because nothing mutates past registration.
type Registry struct {
	bus       eventbus.EventBus
	order     []string
	defs      map[string]Definition
	executors map[string]Executor
}

// NewRegistry creates an empty registry. bus may be nil when no invocation
// events are wanted (tests).
func NewRegistry(bus eventbus.EventBus) *Registry {
	return &Registry{
		bus:       bus,
		defs:      make(map[string]Definition),
		executors: make(map[string]Executor),
	}
}

// Register adds a tool definition with its executor. Disabled definitions are
// recorded but never dispatchable.
func (r *Registry) Register(def Definition, executor Executor) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" || executor == nil {
		return ErrExecutorNotRegistered
	}
	if _, exists := r.executors[def.Name]; exists {
		return ErrExecutorAlreadyRegistered
	}
	if len(def.InputSchema) == 0 {
		def.InputSchema = json.RawMessage(`{"type":"object","additionalProperties":false,"properties":{}}`)
	}
	if !json.Valid(def.InputSchema) {
		return fmt.Errorf("%w: input schema must be valid json", ErrValidationFailed)
	}

	r.order = append(r.order, def.Name)
	r.defs[def.Name] = def
	r.executors[def.Name] = executor
	return nil
}

// Get returns the executor for an enabled tool.
func (r *Registry) Get(name string) (Executor, error) {
	def, ok := r.defs[name]
	if !ok || !def.Enabled {
		return nil, ErrExecutorNotRegistered
	}
	return r.executors[name], nil
}

// Definitions returns the enabled definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		if def := r.defs[name]; def.Enabled {
			out = append(out, def)
		}
	}
	return out
}

// Dispatch validates params against the tool's schema, runs the executor and
// publishes an invocation record on the bus.
func (r *Registry) Dispatch(ctx context.Context, name string, params json.RawMessage) (json.RawMessage, error) {
	executor, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if err := r.ValidateParams(name, params); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := executor.Execute(ctx, params)
	r.publishInvocation(name, start, err)
	return out, err
}

func (r *Registry) publishInvocation(name string, start time.Time, err error) {
	if r.bus == nil {
		return
	}
	inv := eventbus.Invocation{
		ID:         uuid.NewV7().String(),
		Tool:       name,
		DurationMS: time.Since(start).Milliseconds(),
		Outcome:    "ok",
	}
	if err != nil {
		inv.Outcome = "error"
		inv.Detail = err.Error()
	}
	r.bus.Publish(eventbus.TopicToolInvoked, inv)
}

// ValidateParams checks params against the named tool's input schema:
// required keys must be present, and unknown keys are rejected when the
// schema sets additionalProperties=false. Full JSON-schema typing is the
// transport's business; this is the registry's own guard.
func (r *Registry) ValidateParams(name string, params json.RawMessage) error {
	def, ok := r.defs[name]
	if !ok {
		return ErrExecutorNotRegistered
	}

	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	var input map[string]any
	if err := json.Unmarshal(params, &input); err != nil {
		return fmt.Errorf("%w: params must be a json object", ErrValidationFailed)
	}

	var schema map[string]any
	if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
		return fmt.Errorf("%w: invalid registered schema", ErrValidationFailed)
	}

	return validateAgainstMinimalSchema(input, schema)
}

func validateAgainstMinimalSchema(input, schema map[string]any) error {
	for _, key := range extractStringSlice(schema["required"]) {
		if _, ok := input[key]; !ok {
			return fmt.Errorf("%w: missing required field %q", ErrValidationFailed, key)
		}
	}

	allowAdditional := true
	if v, ok := schema["additionalProperties"].(bool); ok {
		allowAdditional = v
	}

	allowedProps := map[string]struct{}{}
	if props, ok := schema["properties"].(map[string]any); ok {
		for key := range props {
			allowedProps[key] = struct{}{}
		}
	}

	if !allowAdditional {
		for key := range input {
			if _, ok := allowedProps[key]; !ok {
				return fmt.Errorf("%w: unknown field %q", ErrValidationFailed, key)
			}
		}
	}

	return nil
}

func extractStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

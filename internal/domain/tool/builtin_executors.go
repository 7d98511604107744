package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrBuiltinExecutionFailed = errors.New("builtin tool execution failed")

// secretWords is the fixed pick set of get_secret_word.
var secretWords = []string{"apple", "banana", "cherry"}

// AddExecutor returns the sum of two integers. Hard failures: invalid params
// only.
type AddExecutor struct{}

func NewAddExecutor() Executor { return &AddExecutor{} }

type addParams struct {
	A *int64 `json:"a"`
	B *int64 `json:"b"`
}

func (e *AddExecutor) Execute(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var in addParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: a and b must be integers", ErrBuiltinExecutionFailed)
	}
	if in.A == nil || in.B == nil {
		return nil, fmt.Errorf("%w: a and b are required", ErrBuiltinExecutionFailed)
	}

	out, _ := json.Marshal(map[string]any{"sum": *in.A + *in.B})
	return out, nil
}

// SecretWordExecutor picks one word uniformly at random from secretWords.
type SecretWordExecutor struct {
	pick Picker
}

func NewSecretWordExecutor(pick Picker) Executor {
	if pick == nil {
		pick = rand.IntN
	}
	return &SecretWordExecutor{pick: pick}
}

func (e *SecretWordExecutor) Execute(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	word := secretWords[e.pick(len(secretWords))]
	out, _ := json.Marshal(map[string]any{"word": word})
	return out, nil
}

// WeatherExecutor fetches the wttr.in report for a city and returns the body
// verbatim. This is the one builtin whose transport failures are NOT caught:
// fetch errors surface to the dispatch boundary untouched.
type WeatherExecutor struct {
	weather WeatherFetcher
}

func NewWeatherExecutor(weather WeatherFetcher) Executor {
	return &WeatherExecutor{weather: weather}
}

type weatherParams struct {
	City string `json:"city"`
}

func (e *WeatherExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if e.weather == nil {
		return nil, fmt.Errorf("%w: weather client not configured", ErrBuiltinExecutionFailed)
	}

	var in weatherParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}
	if in.City == "" {
		return nil, fmt.Errorf("%w: city is required", ErrBuiltinExecutionFailed)
	}

	report, err := e.weather.Current(ctx, in.City)
	if err != nil {
		return nil, err
	}

	// A bare JSON string: the transport renders string results verbatim.
	out, _ := json.Marshal(report)
	return out, nil
}

package agent

import (
	"context"

	"github.com/etnz/fincalc/metrics"
	"google.golang.org/genai"
)

// Library answers the function calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is something a model can call: an expert or a calculator.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary dispatches calls to functions by name. Responses carrying an
// "error" key count as failed calls.
func NewLibrary[T Function](functions []T) Library {
	byName := make(map[string]Function, len(functions))
	for _, f := range functions {
		byName[f.Declaration().Name] = f
	}
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		f, ok := byName[call.Name]
		if !ok {
			metrics.ToolCalls.WithLabelValues("unknown", "error").Inc()
			return &genai.FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: map[string]any{"error": "unknown function " + call.Name},
			}
		}
		resp := f.Call(ctx, call.ID, call.Args)
		outcome := "ok"
		if _, failed := resp.Response["error"]; failed {
			outcome = "error"
		}
		metrics.ToolCalls.WithLabelValues(call.Name, outcome).Inc()
		return resp
	}
}

// NewDeclaration returns the declarations of functions, in order.
func NewDeclaration[T Function](functions []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}

package providers

import (
	"context"
	"errors"
)

// ErrLLMUnavailable marks a generation backend that is not configured or
// cannot be reached. The pipeline treats it as a soft failure and falls back
// to template generation.
var ErrLLMUnavailable = errors.New("llm backend unavailable")

// LLMProvider generates free text from a prompt. Implementations must honor
// context cancellation; the pipeline gives the call its own deadline.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

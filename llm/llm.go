package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrGeneration wraps transport, auth and quota failures from the text
// generation capability. Callers that distinguish hard provider faults from
// content-level rejections should test with errors.Is.
var ErrGeneration = errors.New("text generation failed")

// Generator is the text generation capability consumed by the script and
// term generators.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationError returns an error classified as a provider-level
// generation failure.
func GenerationError(cause error) error {
	return fmt.Errorf("%w: %v", ErrGeneration, cause)
}

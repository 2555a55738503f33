// Package strategy holds the pluggable processing behaviors an embate is
// bound to, the registry that resolves them by type tag, and the mediator
// that enforces validate-before-process.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/Promptonauts/embate/pkg/models"
)

var (
	ErrNoStrategy     = errors.New("no strategy set")
	ErrInvalidContext = errors.New("invalid strategy context")
	ErrUnknownType    = errors.New("unknown strategy type")
)

// ProcessingError reports that a strategy's backend failed or returned
// something unusable. Partial carries whatever the strategy produced before
// failing, e.g. the stage results of a halted pipeline.
type ProcessingError struct {
	Strategy string
	Stage    string
	Err      error
	Partial  any
}

func (e *ProcessingError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: stage %s failed: %v", e.Strategy, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Input is the sub-context a strategy receives for one embate.
type Input struct {
	EmbateID string
	Type     string
	Task     string
	Config   models.EmbateConfig
	// Params is a copy of the embate's full context mapping.
	Params map[string]any
}

// Strategy is a pluggable processing behavior.
//
// Validate must be cheap and side-effect free. Process must only be called
// after Validate returned true for the same input. Metrics is advisory.
type Strategy interface {
	Name() string
	Validate(in Input) bool
	Process(ctx context.Context, in Input) (any, error)
	Metrics() map[string]any
}

// Execute validates in against s and, if valid, processes it. The result is
// returned unchanged; there is no wrapping and no retry.
func Execute(ctx context.Context, s Strategy, in Input) (any, error) {
	if s == nil {
		return nil, ErrNoStrategy
	}
	if !s.Validate(in) {
		return nil, fmt.Errorf("%w: %s rejected embate %q", ErrInvalidContext, s.Name(), in.EmbateID)
	}
	return s.Process(ctx, in)
}

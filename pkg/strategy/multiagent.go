package strategy

import (
	"context"
	"errors"
	"strings"

	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/pipeline"
)

const TypeMultiAgent = "multiagent"

// MultiAgent runs the four-stage pipeline over the embate's task.
type MultiAgent struct {
	runner *pipeline.Runner
	stats  *callStats
}

// MultiAgentFactory returns a factory whose instances share runner and stats.
func MultiAgentFactory(runner *pipeline.Runner) Factory {
	stats := newCallStats()
	return func() Strategy {
		return &MultiAgent{runner: runner, stats: stats}
	}
}

func (m *MultiAgent) Name() string { return TypeMultiAgent }

func (m *MultiAgent) Validate(in Input) bool {
	return in.EmbateID != "" && strings.TrimSpace(in.Task) != ""
}

// Process returns a models.PipelineResult. A halted pipeline becomes a
// ProcessingError whose Partial holds the stages that ran.
func (m *MultiAgent) Process(ctx context.Context, in Input) (result any, err error) {
	done := m.stats.begin()
	defer func() { done(err) }()

	stages := m.runner.Run(ctx, in.Task)
	res := models.PipelineResult{Stages: stages}
	if failed, ok := res.Failed(); ok {
		return nil, &ProcessingError{
			Strategy: TypeMultiAgent,
			Stage:    failed.Agent,
			Err:      errors.New(failed.Result),
			Partial:  res,
		}
	}
	out, ok := pipeline.Output(stages)
	if !ok {
		return nil, &ProcessingError{
			Strategy: TypeMultiAgent,
			Err:      errors.New("pipeline returned an incomplete result"),
			Partial:  res,
		}
	}
	res.Output = out
	return res, nil
}

func (m *MultiAgent) Metrics() map[string]any {
	return m.stats.snapshot()
}

// Package pipeline runs the fixed researcher -> analyst -> improver ->
// synthesizer sequence over a single task.
//
// Stage failures never escape as errors. A failing stage is recorded with
// status failure and its error text as the result, and the run stops there,
// so callers can see exactly how far the pipeline progressed.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Promptonauts/embate/pkg/capability"
	"github.com/Promptonauts/embate/pkg/logging"
	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/observability"
)

type operation int

const (
	opGenerate operation = iota
	opAnalyze
)

type stage struct {
	name string
	op   operation
}

var stages = []stage{
	{name: models.StageResearcher, op: opGenerate},
	{name: models.StageAnalyst, op: opAnalyze},
	{name: models.StageImprover, op: opGenerate},
	{name: models.StageSynthesizer, op: opGenerate},
}

// Runner drives the stages through a capability provider.
type Runner struct {
	provider capability.Provider
	spec     models.PipelineSpec
	logger   *logging.Logger
	metrics  *observability.Metrics
}

type Option func(*Runner)

// WithSpec overrides the default prompt templates.
func WithSpec(spec models.PipelineSpec) Option {
	return func(r *Runner) { r.spec = spec }
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.logger = l.Named("pipeline") }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func NewRunner(provider capability.Provider, opts ...Option) *Runner {
	r := &Runner{
		provider: provider,
		spec:     models.DefaultPipelineSpec(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every stage in order, feeding each stage the previous stage's
// output. It returns one StageResult per attempted stage.
func (r *Runner) Run(ctx context.Context, task string) []models.StageResult {
	results := make([]models.StageResult, 0, len(stages))
	input := task

	for _, st := range stages {
		prompt := r.spec.Render(st.name, input)
		r.logger.Debug(ctx, "stage started", zap.String("stage", st.name))

		start := time.Now()
		out, err := r.call(ctx, st.op, prompt)
		elapsed := time.Since(start)

		if err != nil {
			results = append(results, models.StageResult{
				Agent:     st.name,
				Result:    err.Error(),
				Status:    models.StageFailure,
				LatencyMs: elapsed.Milliseconds(),
			})
			r.metrics.ObserveStage(st.name, string(models.StageFailure), elapsed)
			r.logger.Warn(ctx, "stage failed, halting pipeline",
				zap.String("stage", st.name), zap.Duration("elapsed", elapsed), zap.Error(err))
			return results
		}

		results = append(results, models.StageResult{
			Agent:     st.name,
			Result:    out,
			Status:    models.StageSuccess,
			LatencyMs: elapsed.Milliseconds(),
		})
		r.metrics.ObserveStage(st.name, string(models.StageSuccess), elapsed)
		r.logger.Debug(ctx, "stage completed", zap.String("stage", st.name), zap.Duration("elapsed", elapsed))
		input = out
	}
	return results
}

func (r *Runner) call(ctx context.Context, op operation, prompt string) (string, error) {
	if op == opAnalyze {
		return r.provider.Analyze(ctx, prompt)
	}
	return r.provider.Generate(ctx, prompt)
}

// Output returns the result of the last stage when every stage succeeded.
func Output(results []models.StageResult) (string, bool) {
	p := models.PipelineResult{Stages: results}
	if len(results) != len(stages) || !p.Succeeded() {
		return "", false
	}
	return results[len(results)-1].Result, true
}

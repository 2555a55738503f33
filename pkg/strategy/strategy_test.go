package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/pipeline"
)

// MockStrategy is a mock implementation of Strategy
type MockStrategy struct {
	mock.Mock
}

func (m *MockStrategy) Name() string { return "mock" }

func (m *MockStrategy) Validate(in Input) bool {
	return m.Called(in).Bool(0)
}

func (m *MockStrategy) Process(ctx context.Context, in Input) (any, error) {
	args := m.Called(ctx, in)
	return args.Get(0), args.Error(1)
}

func (m *MockStrategy) Metrics() map[string]any {
	return map[string]any{}
}

// MockProvider is a mock implementation of capability.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Analyze(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func validInput() Input {
	return Input{EmbateID: "e1", Type: TypeMultiAgent, Task: "Summarize X"}
}

func TestExecute_NoStrategy(t *testing.T) {
	_, err := Execute(context.Background(), nil, validInput())
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestExecute_ValidatesBeforeProcess(t *testing.T) {
	s := &MockStrategy{}
	s.On("Validate", mock.Anything).Return(false)

	_, err := Execute(context.Background(), s, validInput())

	assert.ErrorIs(t, err, ErrInvalidContext)
	s.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestExecute_PassesResultThrough(t *testing.T) {
	boom := errors.New("boom")
	s := &MockStrategy{}
	s.On("Validate", mock.Anything).Return(true)
	s.On("Process", mock.Anything, mock.Anything).Return("value", nil).Once()
	s.On("Process", mock.Anything, mock.Anything).Return(nil, boom).Once()

	out, err := Execute(context.Background(), s, validInput())
	require.NoError(t, err)
	assert.Equal(t, "value", out)

	_, err = Execute(context.Background(), s, validInput())
	assert.ErrorIs(t, err, boom)
	s.AssertNumberOfCalls(t, "Validate", 2)
}

func TestContext_SetAndExecute(t *testing.T) {
	c := NewContext(nil)
	_, err := c.ExecuteStrategy(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrNoStrategy)

	first := &MockStrategy{}
	first.On("Validate", mock.Anything).Return(true)
	first.On("Process", mock.Anything, mock.Anything).Return("first", nil)
	second := &MockStrategy{}
	second.On("Validate", mock.Anything).Return(true)
	second.On("Process", mock.Anything, mock.Anything).Return("second", nil)

	c.SetStrategy(first)
	c.SetStrategy(second)
	out, err := c.ExecuteStrategy(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "second", out)
	first.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(TypeMultiAgent)
	_, err := r.Resolve("anything")
	assert.ErrorIs(t, err, ErrUnknownType)

	r.Register(TypeMultiAgent, MultiAgentFactory(pipeline.NewRunner(&MockProvider{})))
	r.Register(TypeAnalysis, AnalysisFactory(NewProviderAnalyzer(&MockProvider{})))

	s, err := r.Resolve(TypeAnalysis)
	require.NoError(t, err)
	assert.Equal(t, TypeAnalysis, s.Name())

	s, err = r.Resolve("debate")
	require.NoError(t, err)
	assert.Equal(t, TypeMultiAgent, s.Name(), "unknown types fall back")

	assert.Equal(t, []string{TypeAnalysis, TypeMultiAgent}, r.Types())
}

func TestMultiAgent_Validate(t *testing.T) {
	s := MultiAgentFactory(pipeline.NewRunner(&MockProvider{}))()
	assert.True(t, s.Validate(validInput()))
	assert.False(t, s.Validate(Input{EmbateID: "e1", Task: "   "}))
	assert.False(t, s.Validate(Input{Task: "Summarize X"}))
}

func TestMultiAgent_ProcessSuccess(t *testing.T) {
	p := &MockProvider{}
	p.On("Generate", mock.Anything, mock.Anything).Return("text", nil)
	p.On("Analyze", mock.Anything, mock.Anything).Return("notes", nil)
	factory := MultiAgentFactory(pipeline.NewRunner(p))

	out, err := Execute(context.Background(), factory(), validInput())
	require.NoError(t, err)

	res, ok := out.(models.PipelineResult)
	require.True(t, ok)
	assert.Len(t, res.Stages, 4)
	assert.Equal(t, "text", res.Output)

	metrics := factory().Metrics()
	assert.Equal(t, int64(1), metrics["counter.calls"], "instances share stats")
	assert.Equal(t, int64(0), metrics["counter.failures"])
	assert.Equal(t, int64(0), metrics["gauge.in_flight"])
	assert.Equal(t, int64(1), metrics["histogram.latency_ms.count"])
}

func TestMultiAgent_ProcessFailureCarriesPartial(t *testing.T) {
	p := &MockProvider{}
	p.On("Generate", mock.Anything, mock.Anything).Return("draft", nil)
	p.On("Analyze", mock.Anything, mock.Anything).Return("", errors.New("analyst offline"))
	s := MultiAgentFactory(pipeline.NewRunner(p))()

	_, err := Execute(context.Background(), s, validInput())

	var perr *ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.StageAnalyst, perr.Stage)
	assert.Contains(t, err.Error(), "analyst offline")
	partial, ok := perr.Partial.(models.PipelineResult)
	require.True(t, ok)
	assert.Len(t, partial.Stages, 2)
	assert.Equal(t, int64(1), s.Metrics()["counter.failures"])
}

func TestAnalysis_Validate(t *testing.T) {
	s := AnalysisFactory(NewProviderAnalyzer(&MockProvider{}))()
	assert.False(t, s.Validate(Input{EmbateID: "a1"}))
	assert.True(t, s.Validate(Input{EmbateID: "a1", Params: map[string]any{ParamProjectID: "proj"}}))
}

func TestAnalysis_Process(t *testing.T) {
	p := &MockProvider{}
	p.On("Analyze", mock.Anything, mock.MatchedBy(func(text string) bool {
		for _, want := range []string{"Project: proj", "- main.go", "- util.go", "Focus: tighten errors"} {
			if !strings.Contains(text, want) {
				return false
			}
		}
		return true
	})).Return("Overall fine.\n- add tests\n* handle EOF\nnot a bullet", nil)

	s := AnalysisFactory(NewProviderAnalyzer(p))()
	in := Input{
		EmbateID: "a1",
		Type:     TypeAnalysis,
		Task:     "tighten errors",
		Params: map[string]any{
			ParamProjectID: "proj",
			ParamFiles:     []any{"main.go", "util.go", 7},
			ParamConfig:    map[string]any{"depth": 2},
		},
	}

	out, err := Execute(context.Background(), s, in)
	require.NoError(t, err)

	res, ok := out.(models.AnalysisResult)
	require.True(t, ok)
	assert.Equal(t, "reviewer", res.Agent)
	assert.Equal(t, []string{"add tests", "handle EOF"}, res.Recommendations)
	assert.Equal(t, 2, res.Priority)
	assert.Contains(t, res.Findings["summary"], "Overall fine.")
	p.AssertExpectations(t)
}

func TestAnalysis_ProcessError(t *testing.T) {
	p := &MockProvider{}
	p.On("Analyze", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)
	s := AnalysisFactory(NewProviderAnalyzer(p))()

	_, err := Execute(context.Background(), s, Input{EmbateID: "a1", Params: map[string]any{ParamProjectID: "p"}})

	var perr *ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "reviewer", perr.Stage)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 1, priority(0))
	assert.Equal(t, 3, priority(3))
	assert.Equal(t, 5, priority(12))
}

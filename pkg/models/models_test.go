package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbateStatusValid(t *testing.T) {
	assert.True(t, EmbateActive.Valid())
	assert.True(t, EmbateFailed.Valid())
	assert.False(t, EmbateStatus("completed").Valid())
	assert.False(t, EmbateStatus("").Valid())
}

func TestEmbateRecordClone(t *testing.T) {
	rec := &EmbateRecord{
		ID:      "e1",
		Context: map[string]any{ContextType: "multiagent", ContextTask: "Summarize X"},
		Config:  EmbateConfig{MaxTokens: 10, Tools: []string{"search"}},
	}
	cp := rec.Clone()
	cp.Context[ContextTask] = "changed"
	cp.Config.Tools[0] = "other"

	assert.Equal(t, "Summarize X", rec.Task())
	assert.Equal(t, "multiagent", rec.Type())
	assert.Equal(t, []string{"search"}, rec.Config.Tools)
	assert.Nil(t, (*EmbateRecord)(nil).Clone())
}

func TestRecordAccessorsWithoutContext(t *testing.T) {
	rec := &EmbateRecord{Context: map[string]any{ContextType: 3}}
	assert.Empty(t, rec.Type())
	assert.Empty(t, rec.Task())
}

func TestPipelineResult(t *testing.T) {
	assert.False(t, PipelineResult{}.Succeeded())

	ok := PipelineResult{Stages: []StageResult{{Agent: StageResearcher, Status: StageSuccess}}}
	assert.True(t, ok.Succeeded())
	_, failed := ok.Failed()
	assert.False(t, failed)

	bad := PipelineResult{Stages: []StageResult{
		{Agent: StageResearcher, Status: StageSuccess},
		{Agent: StageAnalyst, Status: StageFailure, Result: "boom"},
	}}
	assert.False(t, bad.Succeeded())
	stage, failed := bad.Failed()
	require.True(t, failed)
	assert.Equal(t, StageAnalyst, stage.Agent)
}

func TestPipelineSpecRender(t *testing.T) {
	spec := DefaultPipelineSpec()
	require.NoError(t, spec.Validate())

	assert.Equal(t, "draft", spec.Render(StageAnalyst, "draft"))
	assert.Contains(t, spec.Render(StageResearcher, "Summarize X"), "Summarize X")
	assert.Equal(t, "raw", spec.Render("missing", "raw"))
}

func TestLoadPipelineSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
description: terse
stages:
  improver:
    prompt: "fix: {{input}}"
`), 0o600))

	spec, err := LoadPipelineSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "terse", spec.Description)
	assert.Equal(t, "fix: d", spec.Render(StageImprover, "d"))
	assert.Len(t, spec.Stages, len(StageOrder()))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("stages:\n  critic:\n    prompt: x\n"), 0o600))
	_, err = LoadPipelineSpec(bad)
	assert.ErrorContains(t, err, `unknown pipeline stage "critic"`)

	_, err = LoadPipelineSpec(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestEmbateRecordJSONKeepsResultType(t *testing.T) {
	created := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	pipeline := PipelineResult{
		Stages: []StageResult{{Agent: StageResearcher, Result: "draft", Status: StageSuccess, LatencyMs: 4}},
		Output: "draft",
	}
	analysis := AnalysisResult{Agent: "reviewer", Findings: map[string]any{"summary": "ok"}, Recommendations: []string{"x"}, Priority: 1}

	for name, result := range map[string]any{"pipeline": pipeline, "analysis": analysis, "none": nil} {
		t.Run(name, func(t *testing.T) {
			rec := &EmbateRecord{
				ID:        "e1",
				Status:    EmbateActive,
				Context:   map[string]any{ContextType: "multiagent"},
				CreatedAt: created,
				UpdatedAt: created,
				Result:    result,
			}
			data, err := json.Marshal(rec)
			require.NoError(t, err)

			var got EmbateRecord
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, rec, &got)
		})
	}
}

func TestEmbateRecordJSONUntypedResult(t *testing.T) {
	var got EmbateRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","result":{"note":"free form"}}`), &got))
	assert.Equal(t, map[string]any{"note": "free form"}, got.Result)

	err := json.Unmarshal([]byte(`{"id":"e1","resultKind":"pipeline","result":{"stages":"nope"}}`), &got)
	assert.ErrorContains(t, err, "decode pipeline result")
}

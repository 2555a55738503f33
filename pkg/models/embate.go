package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

type EmbateStatus string

const (
	EmbateActive EmbateStatus = "active"
	EmbateFailed EmbateStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s EmbateStatus) Valid() bool {
	switch s {
	case EmbateActive, EmbateFailed:
		return true
	}
	return false
}

// Context keys every embate carries.
const (
	ContextType = "type"
	ContextTask = "task"
)

type EmbateConfig struct {
	MaxTokens   int      `yaml:"max_tokens" json:"maxTokens"`
	Temperature float64  `yaml:"temperature" json:"temperature"`
	Model       string   `yaml:"model" json:"model"`
	Tools       []string `yaml:"tools" json:"tools,omitempty"`
}

// Snapshot returns a copy that shares no memory with c.
func (c EmbateConfig) Snapshot() EmbateConfig {
	c.Tools = slices.Clone(c.Tools)
	return c
}

type EmbateRecord struct {
	ID        string         `json:"id"`
	Status    EmbateStatus   `json:"status"`
	Context   map[string]any `json:"context"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Config    EmbateConfig   `json:"config"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Type returns the strategy type tag stored in the context, or "".
func (r *EmbateRecord) Type() string {
	s, _ := r.Context[ContextType].(string)
	return s
}

// Task returns the unit of work stored in the context, or "".
func (r *EmbateRecord) Task() string {
	s, _ := r.Context[ContextTask].(string)
	return s
}

// Clone copies the record so callers cannot mutate stored state. Result is
// copied by reference; strategies treat it as immutable once returned.
func (r *EmbateRecord) Clone() *EmbateRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Context = maps.Clone(r.Context)
	out.Config = r.Config.Snapshot()
	return &out
}

// Result kinds written next to a record's result so decoding restores the
// concrete type.
const (
	ResultPipeline = "pipeline"
	ResultAnalysis = "analysis"
)

type recordFields EmbateRecord

func (r EmbateRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordFields
		ResultKind string `json:"resultKind,omitempty"`
	}{recordFields(r), resultKind(r.Result)})
}

func (r *EmbateRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		recordFields
		ResultKind string          `json:"resultKind"`
		Result     json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result, err := decodeResult(raw.ResultKind, raw.Result)
	if err != nil {
		return fmt.Errorf("decode %s result: %w", raw.ResultKind, err)
	}
	*r = EmbateRecord(raw.recordFields)
	r.Result = result
	return nil
}

func resultKind(v any) string {
	switch v.(type) {
	case PipelineResult, *PipelineResult:
		return ResultPipeline
	case AnalysisResult, *AnalysisResult:
		return ResultAnalysis
	}
	return ""
}

func decodeResult(kind string, data json.RawMessage) (any, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	switch kind {
	case ResultPipeline:
		var v PipelineResult
		err := json.Unmarshal(data, &v)
		return v, err
	case ResultAnalysis:
		var v AnalysisResult
		err := json.Unmarshal(data, &v)
		return v, err
	}
	var v any
	err := json.Unmarshal(data, &v)
	return v, err
}

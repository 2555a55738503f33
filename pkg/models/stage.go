package models

type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageFailure StageStatus = "failure"
)

type StageResult struct {
	Agent     string      `json:"agent"`
	Result    string      `json:"result"`
	Status    StageStatus `json:"status"`
	LatencyMs int64       `json:"latencyMs"`
}

// PipelineResult is what the multi-agent strategy attaches to a record.
type PipelineResult struct {
	Stages []StageResult `json:"stages"`
	Output string        `json:"output,omitempty"`
}

// Succeeded reports whether every attempted stage succeeded and at least one ran.
func (p PipelineResult) Succeeded() bool {
	if len(p.Stages) == 0 {
		return false
	}
	for _, s := range p.Stages {
		if s.Status != StageSuccess {
			return false
		}
	}
	return true
}

// Failed returns the first failed stage, if any.
func (p PipelineResult) Failed() (StageResult, bool) {
	for _, s := range p.Stages {
		if s.Status == StageFailure {
			return s, true
		}
	}
	return StageResult{}, false
}

package models

type AnalysisContext struct {
	ProjectID string            `yaml:"projectId" json:"projectId"`
	Files     []string          `yaml:"files" json:"files"`
	Config    map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
	Metadata  map[string]any    `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

type AnalysisResult struct {
	Agent           string         `json:"agent"`
	Findings        map[string]any `json:"findings"`
	Recommendations []string       `json:"recommendations"`
	Priority        int            `json:"priority"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/Promptonauts/embate/pkg/capability"
	"github.com/Promptonauts/embate/pkg/models"
)

const TypeAnalysis = "analysis"

// Context keys read by the analysis strategy.
const (
	ParamProjectID = "project_id"
	ParamFiles     = "files"
	ParamConfig    = "config"
	ParamMetadata  = "metadata"
)

// Analyzer reviews a project and reports findings.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, ac models.AnalysisContext) (models.AnalysisResult, error)
}

// Analysis binds an embate to an Analyzer instead of the generative pipeline.
type Analysis struct {
	analyzer Analyzer
	stats    *callStats
}

func AnalysisFactory(a Analyzer) Factory {
	stats := newCallStats()
	return func() Strategy {
		return &Analysis{analyzer: a, stats: stats}
	}
}

func (a *Analysis) Name() string { return TypeAnalysis }

func (a *Analysis) Validate(in Input) bool {
	return in.EmbateID != "" && analysisContext(in).ProjectID != ""
}

func (a *Analysis) Process(ctx context.Context, in Input) (result any, err error) {
	done := a.stats.begin()
	defer func() { done(err) }()

	res, err := a.analyzer.Analyze(ctx, analysisContext(in))
	if err != nil {
		return nil, &ProcessingError{Strategy: TypeAnalysis, Stage: a.analyzer.Name(), Err: err}
	}
	if res.Findings == nil {
		return nil, &ProcessingError{Strategy: TypeAnalysis, Stage: a.analyzer.Name(), Err: fmt.Errorf("analyzer returned no findings")}
	}
	return res, nil
}

func (a *Analysis) Metrics() map[string]any {
	return a.stats.snapshot()
}

func analysisContext(in Input) models.AnalysisContext {
	ac := models.AnalysisContext{Metadata: map[string]any{}}
	ac.ProjectID, _ = in.Params[ParamProjectID].(string)
	ac.Files = stringSlice(in.Params[ParamFiles])
	if cfg, ok := in.Params[ParamConfig].(map[string]any); ok {
		ac.Config = make(map[string]string, len(cfg))
		for k, v := range cfg {
			ac.Config[k] = fmt.Sprint(v)
		}
	}
	if md, ok := in.Params[ParamMetadata].(map[string]any); ok {
		for k, v := range md {
			ac.Metadata[k] = v
		}
	}
	if in.Task != "" {
		ac.Metadata["task"] = in.Task
	}
	return ac
}

// stringSlice accepts both []string and the []any produced by JSON decoding.
func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// ProviderAnalyzer asks the capability provider to review the project and
// turns bullet lines of the reply into recommendations.
type ProviderAnalyzer struct {
	provider capability.Provider
}

func NewProviderAnalyzer(p capability.Provider) *ProviderAnalyzer {
	return &ProviderAnalyzer{provider: p}
}

func (p *ProviderAnalyzer) Name() string { return "reviewer" }

func (p *ProviderAnalyzer) Analyze(ctx context.Context, ac models.AnalysisContext) (models.AnalysisResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", ac.ProjectID)
	if task, ok := ac.Metadata["task"].(string); ok {
		fmt.Fprintf(&b, "Focus: %s\n", task)
	}
	if len(ac.Files) > 0 {
		b.WriteString("Files:\n")
		for _, f := range ac.Files {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	out, err := p.provider.Analyze(ctx, b.String())
	if err != nil {
		return models.AnalysisResult{}, err
	}

	recs := bullets(out)
	return models.AnalysisResult{
		Agent:           p.Name(),
		Findings:        map[string]any{"summary": out},
		Recommendations: recs,
		Priority:        priority(len(recs)),
		Metadata:        map[string]any{"project_id": ac.ProjectID},
	}, nil
}

func bullets(text string) []string {
	recs := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"- ", "* "} {
			if strings.HasPrefix(line, prefix) {
				if rec := strings.TrimSpace(strings.TrimPrefix(line, prefix)); rec != "" {
					recs = append(recs, rec)
				}
				break
			}
		}
	}
	return recs
}

// priority maps the number of recommendations onto 1 (lowest) .. 5.
func priority(n int) int {
	return max(1, min(n, 5))
}

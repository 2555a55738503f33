// Package capability defines the generate/analyze backend the pipeline calls
// and the implementations the engine ships with.
package capability

import (
	"context"
	"fmt"
	"time"
)

// Provider is the opaque content backend. Both calls may fail; callers treat
// any error, including a deadline, as a failure of the calling stage.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Analyze(ctx context.Context, text string) (string, error)
}

const (
	KindStatic = "static"
	KindOpenAI = "openai"
	KindOllama = "ollama"
)

type Config struct {
	Kind    string        `yaml:"kind"`
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// New builds the provider named by cfg.Kind and applies cfg.Timeout.
func New(cfg Config, opts GenerationOptions) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Kind {
	case "", KindStatic:
		p = NewStatic()
	case KindOpenAI, KindOllama:
		p, err = NewLLM(cfg, opts)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}

type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

// WithTimeout bounds every call to next by d.
func WithTimeout(next Provider, d time.Duration) Provider {
	return &timeoutProvider{next: next, timeout: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, prompt)
}

func (t *timeoutProvider) Analyze(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Analyze(ctx, text)
}

package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("capability: empty completion")

const analyzePrompt = "Analyze the following content. List its strengths, weaknesses and concrete gaps.\n\n"

// GenerationOptions are the sampling settings applied to every call.
type GenerationOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// LLM adapts a langchaingo model to Provider.
type LLM struct {
	model llms.Model
	opts  GenerationOptions
}

// NewLLM connects to the backend named by cfg.Kind.
func NewLLM(cfg Config, opts GenerationOptions) (*LLM, error) {
	var (
		model llms.Model
		err   error
	)
	switch cfg.Kind {
	case KindOpenAI:
		o := []openai.Option{openai.WithModel(opts.Model)}
		if cfg.APIKey != "" {
			o = append(o, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			o = append(o, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(o...)
	case KindOllama:
		o := []ollama.Option{ollama.WithModel(opts.Model)}
		if cfg.BaseURL != "" {
			o = append(o, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(o...)
	default:
		return nil, fmt.Errorf("provider kind %q is not an llm backend", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Kind, err)
	}
	return NewLLMFromModel(model, opts), nil
}

// NewLLMFromModel wraps an already constructed langchaingo model.
func NewLLMFromModel(model llms.Model, opts GenerationOptions) *LLM {
	return &LLM{model: model, opts: opts}
}

func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.call(ctx, prompt)
}

func (l *LLM) Analyze(ctx context.Context, text string) (string, error) {
	return l.call(ctx, analyzePrompt+text)
}

func (l *LLM) call(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, l.callOptions()...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

func (l *LLM) callOptions() []llms.CallOption {
	var opts []llms.CallOption
	if l.opts.Model != "" {
		opts = append(opts, llms.WithModel(l.opts.Model))
	}
	if l.opts.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(l.opts.MaxTokens))
	}
	opts = append(opts, llms.WithTemperature(l.opts.Temperature))
	return opts
}

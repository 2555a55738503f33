package models

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage names, in execution order.
const (
	StageResearcher  = "researcher"
	StageAnalyst     = "analyst"
	StageImprover    = "improver"
	StageSynthesizer = "synthesizer"
)

// StageOrder returns the fixed pipeline order.
func StageOrder() []string {
	return []string{StageResearcher, StageAnalyst, StageImprover, StageSynthesizer}
}

// PipelineSpec holds the prompt templates for each stage. A template receives
// the previous stage's output (or the task for the first stage) through the
// {{input}} placeholder.
type PipelineSpec struct {
	Description string               `yaml:"description" json:"description"`
	Stages      map[string]StageSpec `yaml:"stages" json:"stages"`
}

type StageSpec struct {
	Prompt string `yaml:"prompt" json:"prompt"`
}

const InputPlaceholder = "{{input}}"

func DefaultPipelineSpec() PipelineSpec {
	return PipelineSpec{
		Description: "researcher -> analyst -> improver -> synthesizer",
		Stages: map[string]StageSpec{
			StageResearcher:  {Prompt: "Research the following task and write a detailed draft:\n\n" + InputPlaceholder},
			StageAnalyst:     {Prompt: InputPlaceholder},
			StageImprover:    {Prompt: "Improve the draft using this analysis:\n\n" + InputPlaceholder},
			StageSynthesizer: {Prompt: "Synthesize a final answer from the improved draft:\n\n" + InputPlaceholder},
		},
	}
}

// Render substitutes input into the stage's template. Stages without a
// template pass input through unchanged.
func (p PipelineSpec) Render(stage, input string) string {
	s, ok := p.Stages[stage]
	if !ok || s.Prompt == "" {
		return input
	}
	return strings.ReplaceAll(s.Prompt, InputPlaceholder, input)
}

// Validate rejects templates for stages outside the fixed order.
func (p PipelineSpec) Validate() error {
	known := StageOrder()
	for name := range p.Stages {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown pipeline stage %q", name)
		}
	}
	return nil
}

// LoadPipelineSpec reads a YAML spec and fills missing stages from the default.
func LoadPipelineSpec(path string) (PipelineSpec, error) {
	spec := DefaultPipelineSpec()
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read pipeline spec: %w", err)
	}
	var override PipelineSpec
	if err := yaml.Unmarshal(data, &override); err != nil {
		return spec, fmt.Errorf("parse pipeline spec: %w", err)
	}
	if err := override.Validate(); err != nil {
		return spec, err
	}
	if override.Description != "" {
		spec.Description = override.Description
	}
	for name, s := range override.Stages {
		spec.Stages[name] = s
	}
	return spec, nil
}

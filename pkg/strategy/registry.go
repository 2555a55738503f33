package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Promptonauts/embate/pkg/pipeline"
)

// Factory builds the strategy instance bound to one embate.
type Factory func() Strategy

// Registry maps type tags to strategy factories. Types that are not
// registered resolve to the fallback type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  string
}

func NewRegistry(fallback string) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		fallback:  fallback,
	}
}

// Register adds or replaces the factory for typ.
func (r *Registry) Register(typ string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = f
}

// Resolve returns a fresh strategy for typ, falling back to the default type.
func (r *Registry) Resolve(typ string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.factories[typ]; ok {
		return f(), nil
	}
	if f, ok := r.factories[r.fallback]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%w: %q (no fallback %q registered)", ErrUnknownType, typ, r.fallback)
}

// Types lists registered type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NewDefaultRegistry registers the built-in strategies, falling back to the
// multi-agent pipeline for any other type tag.
func NewDefaultRegistry(runner *pipeline.Runner, analyzer Analyzer) *Registry {
	r := NewRegistry(TypeMultiAgent)
	r.Register(TypeMultiAgent, MultiAgentFactory(runner))
	if analyzer != nil {
		r.Register(TypeAnalysis, AnalysisFactory(analyzer))
	}
	return r
}

package strategy

import (
	"context"
	"sync"
)

// Context holds at most one strategy. SetStrategy replaces it outright.
//
// The slot is shared mutable state: two goroutines interleaving SetStrategy
// and ExecuteStrategy would run each other's strategy. Callers executing
// different strategies concurrently should use Execute directly or give each
// embate its own Context.
type Context struct {
	mu      sync.RWMutex
	current Strategy
}

func NewContext(s Strategy) *Context {
	return &Context{current: s}
}

func (c *Context) SetStrategy(s Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
}

func (c *Context) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// ExecuteStrategy runs the current strategy against in.
func (c *Context) ExecuteStrategy(ctx context.Context, in Input) (any, error) {
	return Execute(ctx, c.Strategy(), in)
}

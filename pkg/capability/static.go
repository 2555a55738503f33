package capability

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// Static is a deterministic provider used for dry runs. It echoes a short
// digest of its input so each pipeline stage's output is traceable.
type Static struct {
	calls atomic.Int64
}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := s.calls.Add(1)
	return fmt.Sprintf("generated#%d: %s", n, digest(prompt)), nil
}

func (s *Static) Analyze(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := s.calls.Add(1)
	return fmt.Sprintf("analysis#%d (%d words): %s", n, len(strings.Fields(text)), digest(text)), nil
}

func (s *Static) Calls() int64 {
	return s.calls.Load()
}

// digest collapses whitespace and truncates to at most 80 bytes on a rune boundary.
func digest(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	n := 80
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

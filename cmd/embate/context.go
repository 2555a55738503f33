package main

import (
	"fmt"
	"strings"

	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/strategy"
)

// buildContext assembles an embate context from CLI flags. Repeated "files"
// params accumulate into a list.
func buildContext(typ, task string, params []string) (map[string]any, error) {
	ctx := map[string]any{models.ContextType: typ}
	if task != "" {
		ctx[models.ContextTask] = task
	}
	var files []string
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		if key == strategy.ParamFiles {
			files = append(files, value)
			continue
		}
		ctx[key] = value
	}
	if len(files) > 0 {
		ctx[strategy.ParamFiles] = files
	}
	return ctx, nil
}

package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithEmbateID tags ctx so every log line emitted with it carries embate_id.
func WithEmbateID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// EmbateID returns the id stored by WithEmbateID.
func EmbateID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// ContextFields extracts log fields carried on ctx.
func ContextFields(ctx context.Context) []zap.Field {
	if id, ok := EmbateID(ctx); ok {
		return []zap.Field{zap.String("embate_id", id)}
	}
	return nil
}

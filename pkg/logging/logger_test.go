package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "console", mutate: func(c *Config) { c.Format = "console" }},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }, wantErr: "format"},
		{name: "bad level", mutate: func(c *Config) { c.Level = "loud" }, wantErr: "invalid level"},
		{name: "empty field value", mutate: func(c *Config) { c.Fields = map[string]string{"k": ""} }, wantErr: "empty value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger.Underlying())

	_, err = NewLogger(Config{Format: "json", Level: "nope"})
	assert.Error(t, err)
}

func TestLogger_ContextFields(t *testing.T) {
	logger := NewTestLogger()
	ctx := WithEmbateID(context.Background(), "e1")

	logger.Named("controller").Info(ctx, "embate created", zap.String("status", "active"))

	logger.AssertLogged(t, zapcore.InfoLevel, "embate created")
	logger.AssertField(t, "embate created", "embate_id", "e1")
	logger.AssertField(t, "embate created", "status", "active")
}

func TestEmbateID_Missing(t *testing.T) {
	_, ok := EmbateID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, ContextFields(context.Background()))
}

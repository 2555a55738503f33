// Package config loads engine configuration from an optional YAML file and
// EMBATE_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/Promptonauts/embate/pkg/capability"
	"github.com/Promptonauts/embate/pkg/logging"
	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/store"
)

type Config struct {
	Engine   models.EmbateConfig `yaml:"engine"`
	Provider capability.Config   `yaml:"provider"`
	Storage  store.Config        `yaml:"storage"`
	Server   ServerConfig        `yaml:"server"`
	Log      logging.Config      `yaml:"log"`
	// Pipeline optionally points at a YAML file of stage prompt templates.
	Pipeline string `yaml:"pipeline"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	// MetricsAddr, when set, serves /metrics on a separate listener.
	MetricsAddr     string        `yaml:"metrics_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		Engine: models.EmbateConfig{
			MaxTokens:   2048,
			Temperature: 0.7,
			Model:       "gpt-4o-mini",
		},
		Provider: capability.Config{
			Kind:    capability.KindStatic,
			Timeout: 60 * time.Second,
		},
		Storage: store.Config{
			Driver: store.DriverMemory,
			Path:   "embates.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: logging.NewDefaultConfig(),
	}
}

// GenerationOptions derives the provider sampling settings from the engine config.
func (c Config) GenerationOptions() capability.GenerationOptions {
	return capability.GenerationOptions{
		Model:       c.Engine.Model,
		MaxTokens:   c.Engine.MaxTokens,
		Temperature: c.Engine.Temperature,
	}
}

func (c Config) Validate() error {
	if c.Engine.MaxTokens < 0 {
		return fmt.Errorf("engine.max_tokens must be >= 0, got %d", c.Engine.MaxTokens)
	}
	if c.Engine.Temperature < 0 || c.Engine.Temperature > 2 {
		return fmt.Errorf("engine.temperature must be within [0, 2], got %v", c.Engine.Temperature)
	}
	switch c.Provider.Kind {
	case capability.KindStatic:
	case capability.KindOpenAI, capability.KindOllama:
		if c.Engine.Model == "" {
			return fmt.Errorf("engine.model is required for provider %q", c.Provider.Kind)
		}
	default:
		return fmt.Errorf("provider.kind must be one of static, openai, ollama; got %q", c.Provider.Kind)
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must be >= 0")
	}
	switch c.Storage.Driver {
	case store.DriverMemory:
	case store.DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be memory or sqlite; got %q", c.Storage.Driver)
	}
	if c.Storage.CacheSize < 0 {
		return fmt.Errorf("storage.cache_size must be >= 0")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

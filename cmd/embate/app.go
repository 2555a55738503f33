package main

import (
	"fmt"

	"github.com/Promptonauts/embate/pkg/capability"
	"github.com/Promptonauts/embate/pkg/config"
	"github.com/Promptonauts/embate/pkg/embate"
	"github.com/Promptonauts/embate/pkg/logging"
	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/observability"
	"github.com/Promptonauts/embate/pkg/pipeline"
	"github.com/Promptonauts/embate/pkg/store"
	"github.com/Promptonauts/embate/pkg/strategy"
)

// app is the wired engine. Every collaborator is constructed here and passed
// down explicitly.
type app struct {
	cfg        config.Config
	logger     *logging.Logger
	store      store.Store
	controller *embate.Controller
}

func newApp(cfg config.Config) (*app, error) {
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	spec := models.DefaultPipelineSpec()
	if cfg.Pipeline != "" {
		if spec, err = models.LoadPipelineSpec(cfg.Pipeline); err != nil {
			return nil, err
		}
	}

	provider, err := capability.New(cfg.Provider, cfg.GenerationOptions())
	if err != nil {
		return nil, fmt.Errorf("build capability provider: %w", err)
	}

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	metrics := observability.DefaultMetrics()
	runner := pipeline.NewRunner(provider,
		pipeline.WithSpec(spec),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
	)
	registry := strategy.NewDefaultRegistry(runner, strategy.NewProviderAnalyzer(provider))
	controller := embate.NewController(cfg.Engine, st, registry,
		embate.WithLogger(logger),
		embate.WithMetrics(metrics),
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		controller: controller,
	}, nil
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.store.Close()
}

// Package embate owns the embate lifecycle: it creates records, binds each to
// a strategy resolved from the embate's type, runs it, and stores the outcome.
package embate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Promptonauts/embate/pkg/logging"
	"github.com/Promptonauts/embate/pkg/models"
	"github.com/Promptonauts/embate/pkg/observability"
	"github.com/Promptonauts/embate/pkg/store"
	"github.com/Promptonauts/embate/pkg/strategy"
)

// Controller is the embate registry. It is safe for concurrent use; a strategy
// runs outside the registry lock, so slow pipelines do not block lookups.
type Controller struct {
	config     models.EmbateConfig
	store      store.Store
	strategies *strategy.Registry
	logger     *logging.Logger
	metrics    *observability.Metrics
	now        func() time.Time

	mu sync.Mutex
	// pending holds ids whose creation is in progress but not yet saved.
	pending map[string]struct{}
}

type Option func(*Controller)

func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) { c.logger = l.Named("controller") }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController binds cfg to a registry backed by st. cfg is snapshotted so
// later changes by the caller do not leak into records.
func NewController(cfg models.EmbateConfig, st store.Store, strategies *strategy.Registry, opts ...Option) *Controller {
	c := &Controller{
		config:     cfg.Snapshot(),
		store:      st,
		strategies: strategies,
		logger:     logging.NewNop(),
		now:        time.Now,
		pending:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns a copy of the controller's configuration.
func (c *Controller) Config() models.EmbateConfig {
	return c.config.Snapshot()
}

// Create registers a new embate and runs its strategy. An empty id is replaced
// by a generated one. Strategy failures never surface as errors: they produce
// a record with status failed. Only a duplicate id or a storage failure is
// returned as an error.
func (c *Controller) Create(ctx context.Context, id string, embateCtx map[string]any) (*models.EmbateRecord, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := c.reserve(ctx, id); err != nil {
		return nil, err
	}
	defer c.release(id)

	ctx = logging.WithEmbateID(ctx, id)
	now := c.now().UTC()
	rec := &models.EmbateRecord{
		ID:        id,
		Status:    models.EmbateActive,
		Context:   maps.Clone(embateCtx),
		CreatedAt: now,
		UpdatedAt: now,
		Config:    c.config.Snapshot(),
	}
	if rec.Context == nil {
		rec.Context = map[string]any{}
	}

	c.metrics.IncInFlight()
	result, err := c.execute(ctx, rec)
	c.metrics.DecInFlight()

	if err != nil {
		rec.Status = models.EmbateFailed
		rec.Error = err.Error()
		c.logger.Warn(ctx, "embate failed", zap.String("type", rec.Type()), zap.Error(err))
	} else {
		rec.Result = result
		c.logger.Info(ctx, "embate created", zap.String("type", rec.Type()))
	}
	c.metrics.IncCreated(rec.Type(), string(rec.Status))

	if err := c.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save embate %q: %w", id, err)
	}
	return rec, nil
}

func (c *Controller) execute(ctx context.Context, rec *models.EmbateRecord) (any, error) {
	s, err := c.strategies.Resolve(rec.Type())
	if err != nil {
		return nil, err
	}
	// Each embate gets its own Context, so concurrent creates never swap
	// strategies under one another.
	result, err := strategy.NewContext(s).ExecuteStrategy(ctx, strategy.Input{
		EmbateID: rec.ID,
		Type:     rec.Type(),
		Task:     rec.Task(),
		Config:   rec.Config.Snapshot(),
		Params:   maps.Clone(rec.Context),
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &strategy.ProcessingError{Strategy: s.Name(), Err: errors.New("strategy returned no result")}
	}
	return result, nil
}

func (c *Controller) reserve(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEmbate, id)
	}
	existing, err := c.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup embate %q: %w", id, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateEmbate, id)
	}
	c.pending[id] = struct{}{}
	return nil
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// Get returns the record for id, or nil when it does not exist.
func (c *Controller) Get(ctx context.Context, id string) (*models.EmbateRecord, error) {
	return c.store.Get(ctx, id)
}

// List returns every stored record.
func (c *Controller) List(ctx context.Context) ([]*models.EmbateRecord, error) {
	return c.store.List(ctx)
}

// Delete removes id. Deleting an absent id is not an error.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Delete(ctx, id)
}

// UpdateStatus overwrites the status of an existing record. Transitions are
// not checked: failed -> active is allowed.
func (c *Controller) UpdateStatus(ctx context.Context, id string, status models.EmbateStatus) (*models.EmbateRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup embate %q: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	prev := rec.Status
	rec.Status = status
	rec.UpdatedAt = c.now().UTC()
	if err := c.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save embate %q: %w", id, err)
	}
	c.logger.Info(logging.WithEmbateID(ctx, id), "embate status updated",
		zap.String("from", string(prev)), zap.String("to", string(status)))
	return rec, nil
}

// StrategyMetrics reports Metrics for every registered strategy type.
func (c *Controller) StrategyMetrics() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, typ := range c.strategies.Types() {
		s, err := c.strategies.Resolve(typ)
		if err != nil {
			continue
		}
		out[typ] = s.Metrics()
	}
	return out
}

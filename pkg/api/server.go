// Package api exposes the embate registry over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Promptonauts/embate/pkg/embate"
	"github.com/Promptonauts/embate/pkg/logging"
	"github.com/Promptonauts/embate/pkg/models"
)

// Registry is the subset of the embate controller the server needs.
type Registry interface {
	Create(ctx context.Context, id string, embateCtx map[string]any) (*models.EmbateRecord, error)
	Get(ctx context.Context, id string) (*models.EmbateRecord, error)
	List(ctx context.Context) ([]*models.EmbateRecord, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status models.EmbateStatus) (*models.EmbateRecord, error)
	StrategyMetrics() map[string]map[string]any
}

type Server struct {
	registry Registry
	logger   *logging.Logger
	engine   *gin.Engine
}

func NewServer(registry Registry, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		registry: registry,
		logger:   logger.Named("api"),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"status": "ok"}})
	})
	s.engine.GET("/metrics", gin.WrapH(MetricsHandler()))

	v1 := s.engine.Group("/v1")
	v1.POST("/embates", s.createEmbate)
	v1.GET("/embates", s.listEmbates)
	v1.GET("/embates/:id", s.getEmbate)
	v1.PATCH("/embates/:id/status", s.updateStatus)
	v1.DELETE("/embates/:id", s.deleteEmbate)
	v1.GET("/strategies/metrics", s.strategyMetrics)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	return Serve(ctx, &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}, s.logger, shutdownTimeout)
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Serve runs srv until ctx is cancelled, then shuts it down within shutdownTimeout.
func Serve(ctx context.Context, srv *http.Server, logger *logging.Logger, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server %s: %w", srv.Addr, err)
	}
	logger.Info(ctx, "http server stopped", zap.String("addr", srv.Addr))
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) createEmbate(c *gin.Context) {
	var req CreateEmbateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	rec, err := s.registry.Create(c.Request.Context(), req.ID, req.Context)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: rec})
}

func (s *Server) listEmbates(c *gin.Context) {
	recs, err := s.registry.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if recs == nil {
		recs = []*models.EmbateRecord{}
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: recs})
}

func (s *Server) getEmbate(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.registry.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, APIResponse{Error: fmt.Sprintf("embate %q not found", id)})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: rec})
}

func (s *Server) updateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	rec, err := s.registry.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: rec})
}

func (s *Server) deleteEmbate(c *gin.Context) {
	if err := s.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) strategyMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: s.registry.StrategyMetrics()})
}

// fail maps registry errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, embate.ErrDuplicateEmbate):
		status = http.StatusConflict
	case errors.Is(err, embate.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, embate.ErrInvalidStatus):
		status = http.StatusBadRequest
	default:
		s.logger.Error(c.Request.Context(), "request failed", zap.Error(err))
	}
	c.JSON(status, APIResponse{Error: err.Error()})
}

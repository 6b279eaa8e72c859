// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/requirements-engine/internal/history"
	"github.com/pdiddy/requirements-engine/internal/pipeline"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// History is the subset of the run store the server uses.
type History interface {
	Save(ctx context.Context, req *types.ProjectRequirements, pl *types.Plan, fingerprint string) (history.Summary, error)
	Get(ctx context.Context, id string) (*history.Run, error)
	List(ctx context.Context, limit int) ([]history.Summary, error)
	Search(ctx context.Context, q string, limit int) ([]history.Summary, error)
	ForEntity(ctx context.Context, entity string, limit int) ([]history.Summary, error)
}

// Server serves the extract, plan and history endpoints.
type Server struct {
	pipeline *pipeline.Pipeline
	history  History
	version  string
	logger   *zap.Logger
	engine   *gin.Engine
}

// New builds a Server. hist may be nil, in which case runs are not recorded
// and the /api/runs routes answer 404.
func New(p *pipeline.Pipeline, hist History, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pipeline: p,
		history:  hist,
		version:  version,
		logger:   logger.Named("server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler for the server's routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/health", s.health)
	r.GET("/version", s.versionInfo)

	api := r.Group("/api")
	{
		api.POST("/extract", s.extract)
		api.POST("/plan", s.plan)
		api.GET("/runs", s.listRuns)
		api.GET("/runs/:id", s.getRun)
	}
	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// requestLogger logs every request at debug level.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}

// Package httpapi serves the public listing API next to the health, readiness
// and metrics endpoints of the worker process.
package httpapi

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"realty-workers/internal/common/logger"
	"realty-workers/internal/models"
)

// Store is what the API reads from. *store.Store satisfies it.
type Store interface {
	ListListings(ctx context.Context) ([]models.Listing, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Address         string
	DefaultPageSize int
	ResultLimit     int
	ShutdownTimeout time.Duration
}

type Server struct {
	opts   Options
	store  Store
	logger logger.Logger
	engine *gin.Engine
	srv    *http.Server
}

func NewServer(opts Options, store Store, log logger.Logger) *Server {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 12
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		opts:   opts,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()

	s.srv = &http.Server{
		Addr:              opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/ready", s.ready)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.GET("/listings", s.listListings)
	api.GET("/listings/:id", s.getListing)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"address": s.opts.Address})
		if err := s.srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped", nil)
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			return
		}
		s.logger.Debug("http request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

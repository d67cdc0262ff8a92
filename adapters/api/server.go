// Package api exposes the fairness audit over HTTP with gin.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"biasdetect/app"
	"biasdetect/internal"

	"github.com/gin-gonic/gin"
)

const defaultMaxUploadMB = 200

// ServerConfig tunes the HTTP server. Zero values select the defaults.
type ServerConfig struct {
	MaxUploadMB int
	Logger      *internal.Logger
}

// Server represents the HTTP API
type Server struct {
	router    *gin.Engine
	audits    *app.AuditService
	maxUpload int64
	logger    *internal.Logger
}

// NewServer builds the router; gin's mode is left to the caller.
func NewServer(audits *app.AuditService, config ServerConfig) *Server {
	if config.MaxUploadMB <= 0 {
		config.MaxUploadMB = defaultMaxUploadMB
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:    gin.New(),
		audits:    audits,
		maxUpload: int64(config.MaxUploadMB) << 20,
		logger:    logger,
	}
	s.router.MaxMultipartMemory = 32 << 20
	s.router.Use(gin.Recovery(), requestLogger(logger))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/mitigate", s.handleMitigate)
	api.GET("/reports", s.handleListReports)
	api.GET("/reports/:id", s.handleGetReport)
}

// Handler returns the router for use with net/http.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request at a level matching the status.
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("[API] %s %s -> %d (%s) %s", c.Request.Method, c.Request.URL.Path, status, duration, c.Errors.String())
		case status >= http.StatusBadRequest:
			logger.Warn("[API] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, duration)
		default:
			logger.Info("[API] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, duration)
		}
	}
}

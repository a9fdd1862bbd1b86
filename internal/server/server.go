// Package server exposes the webhook and the issued receipts over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
	"github.com/Veraticus/the-receipts-must-flow/internal/linebot"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// WebhookHandler verifies and handles one webhook delivery.
type WebhookHandler interface {
	ServeWebhook(ctx context.Context, req *http.Request, baseURL string) error
}

// Config configures the HTTP server.
type Config struct {
	Addr      string
	OutputDir string
	// PublicURL overrides the base URL derived from request headers.
	PublicURL string
}

// Server is the bot's HTTP front end.
type Server struct {
	webhook WebhookHandler
	router  *gin.Engine
	logger  *slog.Logger
	config  Config
}

// New creates a server with the health, callback and receipt routes.
func New(config Config, webhook WebhookHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	s := &Server{
		config:  config,
		webhook: webhook,
		router:  router,
		logger:  logger,
	}

	router.Use(s.requestID(), s.accessLog(), gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.POST("/callback", s.handleCallback)
	router.StaticFS(batch.ArtifactRoute, visibleFS{gin.Dir(config.OutputDir, false)})

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr, "output_dir", s.config.OutputDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// handleCallback detaches the webhook work from the request context so a
// client disconnect cannot cut a batch short.
func (s *Server) handleCallback(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	err := s.webhook.ServeWebhook(ctx, c.Request, s.baseURL(c.Request))
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, linebot.ErrInvalidSignature) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "webhook rejected",
			"request_id", c.GetString(requestIDKey),
			"error", err)
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}
	c.String(http.StatusOK, "OK")
}

// baseURL is the externally visible origin used in receipt links.
func (s *Server) baseURL(r *http.Request) string {
	if s.config.PublicURL != "" {
		return s.config.PublicURL
	}

	proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))
	if proto == "" {
		proto = "http"
		if r.TLS != nil {
			proto = "https"
		}
	}

	host := firstHeaderValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}

	return proto + "://" + host
}

// firstHeaderValue returns the client-most entry of a comma separated header.
func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// visibleFS hides dot-prefixed names such as in-flight temp files.
type visibleFS struct {
	http.FileSystem
}

func (v visibleFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return nil, fs.ErrNotExist
		}
	}
	return v.FileSystem.Open(name)
}

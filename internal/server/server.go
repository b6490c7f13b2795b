package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/phishscan/internal/model"
)

const (
	maxRequestBody    = 64 << 10
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// missingURLMessage is returned with 400 when the request has no url.
const missingURLMessage = `Missing "url" parameter`

// AnalyzeFunc analyses one URL. It must be safe for concurrent use.
type AnalyzeFunc func(ctx context.Context, rawURL string) *model.Report

// Server serves the analyzer over HTTP.
type Server struct {
	engine  *gin.Engine
	analyze AnalyzeFunc
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and lifecycle logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server that answers requests with analyze.
func New(analyze AnalyzeFunc, opts ...Option) *Server {
	s := &Server{analyze: analyze}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	router := gin.New()
	router.Use(requestContext(s.logger))
	router.Use(recovery(s.logger))
	router.Use(limitBody(maxRequestBody))

	router.POST("/analyze", s.handleAnalyze)
	router.GET("/healthz", s.handleHealth)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	s.engine = router
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, letting in-flight analyses finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("server listening", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx) //nolint:contextcheck // parent is already done
	}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingURLMessage})
		return
	}

	report := s.analyze(c.Request.Context(), req.URL)
	if report.Error != nil {
		s.logger.Warn("analysis failed",
			"request_id", c.GetString(requestIDKey),
			"url", req.URL,
			"error", report.Error,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": report.ErrorMessage})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Package gin exposes the price check over HTTP: a manual trigger that
// returns the report as plain text, and a health endpoint.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/gin-gonic/gin"
)

var releaseMode sync.Once

// ErrRunInProgress is returned by Server.Run while another run holds the
// run guard.
var ErrRunInProgress = errors.New("a run is already in progress")

// RunFunc performs a run and returns the rendered report.
type RunFunc func(ctx context.Context) (string, error)

// Server serves the manual trigger.
type Server struct {
	run    RunFunc
	token  string
	logger *slog.Logger
	start  time.Time

	// running serializes scheduled and manual runs.
	running sync.Mutex

	mu      sync.Mutex
	lastRun time.Time
	lastErr string
}

// NewServer creates a Server that calls run for each trigger. When token is
// set, the trigger requires it as a bearer token or X-API-Key header.
func NewServer(run RunFunc, token string, logger *slog.Logger) *Server {
	return &Server{run: run, token: token, logger: logger, start: time.Now()}
}

// Handler returns the configured Gin engine.
//
// Routes:
//
//	GET /        run now, respond with the report
//	POST /run    same as GET /
//	GET /health  liveness and last run time, never authenticated
func (s *Server) Handler() http.Handler {
	releaseMode.Do(func() { gin.SetMode(gin.ReleaseMode) })

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.logRequests())

	r.GET("/health", s.health)

	trigger := r.Group("")
	trigger.Use(s.auth())
	trigger.GET("/", s.trigger)
	trigger.POST("/run", s.trigger)

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Run performs a run unless one is already in progress, in which case it
// returns ErrRunInProgress. Scheduled runs go through Run so that they
// share the guard with the HTTP trigger.
func (s *Server) Run(ctx context.Context) (string, error) {
	if !s.running.TryLock() {
		return "", ErrRunInProgress
	}
	defer s.running.Unlock()

	report, err := s.run(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = pricewatch.ErrorMessage(err)
	s.mu.Unlock()

	return report, err
}

func (s *Server) trigger(c *gin.Context) {
	report, err := s.Run(c.Request.Context())
	if errors.Is(err, ErrRunInProgress) {
		c.String(http.StatusConflict, "%s\n", err)
		return
	}
	if err != nil {
		s.logger.Error("manual run failed", "err", err)
		c.String(statusFor(err), "error: %s\n", pricewatch.ErrorMessage(err))
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	LastRun   string `json:"last_run,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	s.mu.Lock()
	resp := healthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.start).Round(time.Second).String(),
		LastError: s.lastErr,
	}
	if !s.lastRun.IsZero() {
		resp.LastRun = s.lastRun.UTC().Format(time.RFC3339)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, resp)
}

func (s *Server) auth() gin.HandlerFunc {
	if s.token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if requestToken(c) != s.token {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// requestToken tries X-API-Key first, then Authorization: Bearer.
func requestToken(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(begin),
		)
	}
}

// statusFor maps application error codes to HTTP status codes.
func statusFor(err error) int {
	switch pricewatch.ErrorCode(err) {
	case pricewatch.EINVALID:
		return http.StatusBadRequest
	case pricewatch.ENOTFOUND:
		return http.StatusNotFound
	case pricewatch.EUPSTREAM:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Package web serves the navigation engine over HTTP and pushes recomputed
// views to websocket clients whenever the result set changes.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vreport/internal/core/app"
	"vreport/internal/core/config"
	"vreport/internal/core/ports"
	"vreport/internal/shared/util"
)

// HealthChecker reports component health for /health.
type HealthChecker interface {
	Check(ctx context.Context) app.HealthStatus
}

type Server struct {
	cfg      config.Server
	svc      ports.ReportService
	health   HealthChecker
	hub      *Hub
	limiters *util.LimiterRegistry
	router   *gin.Engine
	server   *http.Server
	metrics  bool
}

type Options struct {
	Server        config.Server
	Service       ports.ReportService
	Health        HealthChecker
	EnableMetrics bool
}

func NewServer(opts Options) *Server {
	s := &Server{
		cfg:      opts.Server,
		svc:      opts.Service,
		health:   opts.Health,
		hub:      NewHub(opts.Service, opts.Server.AllowedOrigins),
		limiters: util.NewLimiterRegistry(util.PerMinute(opts.Server.RequestsPerMinute), opts.Server.Burst, 10*time.Minute),
		metrics:  opts.EnableMetrics,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(tracing())
	router.Use(cors(s.cfg.AllowedOrigins))

	limited := router.Group("/", rateLimit(s.limiters))
	{
		limited.GET("/", s.handleIndex)
		limited.GET("/test-result/:id", s.handleTestResult)
		limited.GET("/ws", s.hub.ServeWS)

		api := limited.Group("/api")
		api.GET("/results", s.handleResults)
		api.GET("/results/:id", s.handleResult)
		api.GET("/tree", s.handleTree)
		api.GET("/navigation", s.handleNavigation)
		api.GET("/report", s.handleReport)
	}

	router.GET("/health", s.handleHealth)
	if s.metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return router
}

// Start listens on the configured address and runs the hub until ctx is
// done. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("report server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("report server failed", "error", err)
		}
	}()
	return nil
}

// Stop drains HTTP connections within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	defer s.limiters.Stop()
	if s.server == nil {
		return nil
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	slog.Info("report server shutting down")
	return s.server.Shutdown(ctx)
}

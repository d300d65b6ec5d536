package server

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minimapd/minimapd/internal/api/middleware"
	"github.com/minimapd/minimapd/internal/config"
	"github.com/minimapd/minimapd/internal/fetch"
	"github.com/minimapd/minimapd/internal/http"
	"github.com/minimapd/minimapd/internal/logging"
	"github.com/minimapd/minimapd/internal/monitoring"
	"github.com/minimapd/minimapd/internal/service"
	"github.com/minimapd/minimapd/internal/ws"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router *gin.Engine
	srv    *nethttp.Server
	svc    *service.Service
	log    *zap.Logger
	cfg    *config.Config
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	metrics := monitoring.New()
	fetcher := fetch.New(fetch.Config{
		Timeout:    time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		RetryCount: cfg.Fetch.RetryCount,
		MaxBody:    cfg.Fetch.MaxBodyBytes,
		UserAgent:  "minimapd/1.0",
	})
	svc := service.New(log, fetcher, metrics, cfg.Minimap)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(metrics.GinMiddleware())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(svc)
	wsHandler := ws.NewHandler(svc, metrics, log)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", metrics.Handler())

	// Instance lifecycle
	router.POST("/instances", handlers.CreateInstance)
	router.GET("/instances", handlers.ListInstances)
	router.GET("/instances/:id", handlers.GetInstance)
	router.DELETE("/instances/:id", handlers.DeleteInstance)

	// Operations
	router.POST("/instances/:id/show", handlers.OpInstance("show"))
	router.POST("/instances/:id/hide", handlers.OpInstance("hide"))
	router.POST("/instances/:id/toggle", handlers.OpInstance("toggle"))
	router.PATCH("/instances/:id/config", handlers.UpdateConfig)
	router.POST("/instances/:id/events", handlers.DispatchEvent)

	// Inspection
	router.GET("/instances/:id/snapshot", handlers.Snapshot)
	router.GET("/instances/:id/patches", handlers.Patches)
	router.POST("/instances/:id/query", handlers.Query)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		router: router,
		svc:    svc,
		log:    log,
		cfg:    cfg,
	}, nil
}

// Run starts the server and blocks until it exits.
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.log.Info("starting minimapd", zap.String("addr", addr))

	s.srv = &nethttp.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes every live instance.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}
	s.svc.Shutdown()
	_ = s.log.Sync()
	return err
}

// Package api implements app.Runner for the submitter API server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/bridge-submitter/pkg/app/bootstrap"
	apphttp "github.com/chainsafe/bridge-submitter/pkg/app/http"
	"github.com/chainsafe/bridge-submitter/pkg/app/httpserver"
	"github.com/chainsafe/bridge-submitter/pkg/auth"
	"github.com/chainsafe/bridge-submitter/pkg/config"
	transferservice "github.com/chainsafe/bridge-submitter/pkg/transfer/service"
)

const defaultRequestTimeout = 60 * time.Second

// Pinger reports whether the chain backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run starts the orchestrator and the HTTP API. It blocks until an OS
// shutdown signal is received or a fatal server error occurs.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bridge submitter API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	submitter, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	defer submitter.Close()

	transfers := transferservice.NewService(submitter.Orchestrator, logger)

	router, err := NewRouter(cfg, transferservice.NewLog(transfers, logger), submitter.Client, logger)
	if err != nil {
		transfers.Close()
		return err
	}

	err = httpserver.ServeAndWait(ctx, logger, httpserver.New(&cfg.Server, router), cfg.Shutdown.Timeout)

	// Stop in-flight runs before the client is closed.
	transfers.Close()

	return err
}

// NewRouter builds the API routes. The /api/v1 group requires a bearer token
// when auth is enabled.
func NewRouter(cfg *config.Config, svc transferservice.Service, pinger Pinger, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apphttp.Metrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		validator, err := auth.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("setup auth: %w", err)
		}
		authMiddleware = auth.Middleware(validator, logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Cancelling waits for the run to stop, so the timeout applies here too.
		r.Use(middleware.Timeout(defaultRequestTimeout))
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		transferservice.RegisterRoutes(r, svc, logger)
	})

	return r, nil
}

// Package server assembles the persistence backend, sync layer, and HTTP
// surface into a runnable process.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"pool-tracker-service/internal/config"
	httpserver "pool-tracker-service/internal/http"
	"pool-tracker-service/internal/http/handlers"
	"pool-tracker-service/internal/http/middleware"
	"pool-tracker-service/internal/http/ws"
	"pool-tracker-service/internal/logging"
	"pool-tracker-service/internal/metrics"
	"pool-tracker-service/internal/scoring"
	"pool-tracker-service/internal/store/local"
	"pool-tracker-service/internal/store/remote"
	"pool-tracker-service/internal/sync"
	"pool-tracker-service/internal/user"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	metrics    *metrics.Recorder
	svc        *sync.Service
	reconciler *sync.Reconciler
	hub        *ws.Hub
	gateway    *remote.Gateway

	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server for the configured backend mode.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}

	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, nil)

	// The embedded store is always opened: it is the backend in local mode
	// and the migration source in remote mode.
	localStore := local.Open(cfg.SQLitePath, logger)

	var (
		backend sync.Backend
		gateway *remote.Gateway
		migrate handlers.MigrateFunc
	)
	switch cfg.Backend {
	case config.BackendRemote:
		g, err := remote.Open(cfg.DatabaseURL, logger, remote.RetryPolicy{
			Attempts: cfg.LinkRetryAttempts,
			Delay:    cfg.LinkRetryDelay,
		})
		if err != nil {
			return nil, fmt.Errorf("remote backend: %w", err)
		}
		gateway = g
		remoteBackend := sync.NewRemoteBackend(g)
		backend = remoteBackend
		migrate = func(ctx context.Context) (sync.MigrationReport, error) {
			return sync.MigrateLocalToRemote(ctx, localStore, remoteBackend, logger), nil
		}
	default:
		backend = sync.NewLocalBackend(localStore)
	}

	hub := ws.NewHub(logger)
	svc := sync.NewService(backend, sync.Options{
		Logger:   logger,
		Metrics:  recorder,
		Notifier: sync.NewLogNotifier(logger),
		Sink:     hub,
	})
	reconciler := sync.NewReconciler(svc, logger, cfg.ReconcileInterval)

	handler := handlers.NewHandler(svc, scoring.NewManager(), user.NewRegistry(), migrate, logger, reconciler.Status)
	router := httpserver.NewRouter(handler, hub)
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		svc:           svc,
		reconciler:    reconciler,
		hub:           hub,
		gateway:       gateway,
		httpServer:    netHTTPServer{srv: srv},
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}, nil
}

// Run starts the reconciler and HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)

	if err := s.svc.StartLiveSync(); err != nil {
		logging.Warn(s.logger, "live sync unavailable, relying on interval reconciles", "error", err)
	}
	s.reconciler.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.reconciler.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop reconciler", err)
	}
	s.svc.Close()
	s.hub.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.gateway != nil {
		if err := s.gateway.Close(); err != nil {
			logging.Warn(s.logger, "remote store close failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

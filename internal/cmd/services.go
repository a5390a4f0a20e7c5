package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"focusguard/internal/config"
	"focusguard/internal/core/notify"
	"focusguard/internal/core/session"
	"focusguard/internal/logging"
	"focusguard/internal/metrics"
	"focusguard/internal/platform"
	"focusguard/internal/storage"

	"go.uber.org/zap"
)

// services is the wired object graph shared by every command.
type services struct {
	config     *config.Config
	logger     *zap.Logger
	store      *storage.AppMapStore
	hub        *notify.Hub
	metrics    *metrics.Metrics
	controller *session.Controller
	server     *http.Server
}

func newServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newServicesWithConfig(cfg)
}

func newServicesWithConfig(cfg *config.Config) (*services, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
		File:        cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store := storage.NewAppMapStore(cfg.MappingPath)
	hub := notify.NewHub()
	recorder := metrics.New()
	controller := session.NewController(store, platform.NewProcessTable(), hub, session.Options{
		Timings: cfg.Timings(),
		Logger:  logger,
		Metrics: recorder,
	})

	return &services{
		config:     cfg,
		logger:     logger,
		store:      store,
		hub:        hub,
		metrics:    recorder,
		controller: controller,
	}, nil
}

// serveMetrics exposes /metrics when an address is configured.
func (svc *services) serveMetrics() {
	if svc.config.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", svc.metrics.Handler())
	svc.server = &http.Server{
		Addr:              svc.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	server := svc.server
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			svc.logger.Error("metrics endpoint", zap.String("addr", server.Addr), zap.Error(err))
		}
	}()
	svc.logger.Info("metrics endpoint listening", zap.String("addr", server.Addr))
}

// Close stops any running session and releases shared resources.
func (svc *services) Close() {
	if svc.controller.Active() {
		_, _ = svc.controller.Stop()
	}
	if svc.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := svc.server.Shutdown(ctx); err != nil {
			svc.logger.Warn("metrics endpoint shutdown", zap.Error(err))
		}
	}
	svc.hub.Close()
	_ = svc.logger.Sync()
}

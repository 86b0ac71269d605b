// Package server собирает HTTP и HTTPS серверы вокруг router'а
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/phoneauth/internal/config"
	"github.com/iudanet/phoneauth/internal/server/middleware"
)

// MetricsPath путь Prometheus метрик, обслуживается вне таблицы маршрутизации
const MetricsPath = "/metrics"

// ShutdownTimeout ограничивает время graceful shutdown
const ShutdownTimeout = 10 * time.Second

// Server обслуживает один dispatcher на HTTP и, если настроен TLS, на HTTPS
type Server struct {
	logger  *slog.Logger
	handler http.Handler
	http    *http.Server
	https   *http.Server
	tls     config.HTTPSConfig
}

// New создает Server. routes передаются в метрики как допустимые значения метки route.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	dispatcher http.Handler,
	registry *prometheus.Registry,
	routes []string,
) *Server {
	metrics := middleware.NewMetrics(registry, routes)

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.Handle("/", middleware.RecoveryMiddleware(logger)(dispatcher))

	// logging -> metrics -> recovery -> dispatcher
	handler := middleware.LoggingWithSkip(logger, []string{MetricsPath})(metrics.Middleware(mux))

	s := &Server{
		logger:  logger,
		handler: handler,
		tls:     cfg.HTTPS,
		http:    newHTTPServer(cfg.HTTP.Addr, handler),
	}

	if cfg.HTTPS.Enabled() {
		s.https = newHTTPServer(cfg.HTTPS.Addr, handler)
	}

	return s
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Handler returns the full middleware chain, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run запускает серверы и блокируется до отмены ctx или ошибки одного из них.
// После этого выполняется graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		s.logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.https != nil {
		go func() {
			s.logger.InfoContext(ctx, "HTTPS server listening", slog.String("addr", s.https.Addr))
			if err := s.https.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("https server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "shutting down servers")
	case runErr = <-errCh:
		s.logger.ErrorContext(ctx, "server failed", slog.Any("error", runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, s.Shutdown(shutdownCtx))
}

// Shutdown gracefully stops both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if s.https != nil {
		if err := s.https.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown https server: %w", err))
		}
	}
	return errors.Join(errs...)
}

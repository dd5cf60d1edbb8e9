package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	readyCheckTimeout = 3 * time.Second
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes health, readiness, metrics and the optional API mount.
type Server struct {
	pinger     Pinger
	port       int
	logger     *zerolog.Logger
	apiPrefix  string
	apiHandler http.Handler
}

// NewServer creates a server. pinger may be nil when no database is configured.
func NewServer(pinger Pinger, port int, logger *zerolog.Logger) *Server {
	return &Server{
		pinger: pinger,
		port:   port,
		logger: logger,
	}
}

// NewServerWithAPI creates a server that also routes prefix to apiHandler.
func NewServerWithAPI(pinger Pinger, port int, prefix string, apiHandler http.Handler, logger *zerolog.Logger) *Server {
	s := NewServer(pinger, port, logger)
	s.apiPrefix = prefix
	s.apiHandler = apiHandler

	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/readyz", s.handleReady)

	mux.Handle("/metrics", promhttp.Handler())

	if s.apiHandler != nil && s.apiPrefix != "" {
		mux.Handle(s.apiPrefix, s.apiHandler)
	}

	return mux
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			readinessChecks.WithLabelValues(readinessFailed).Inc()
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, "DB unavailable")

			s.logger.Warn().Err(err).Msg("readiness check failed")

			return
		}
	}

	readinessChecks.WithLabelValues(readinessOK).Inc()
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("HTTP server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

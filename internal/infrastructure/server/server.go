package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
)

const (
	maxMessageBytes   = 64 << 10
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	outcomeOK    = "ok"
	outcomeError = "error"
)

// Server exposes a background MessageHandler over HTTP, along with the
// WebSocket endpoint pages subscribe on.
type Server struct {
	handler  repositories.MessageHandler
	pages    *messaging.PageHub
	router   chi.Router
	metrics  *metrics
	registry *prometheus.Registry
}

// New creates a server for handler with its own metrics registry. Pages
// attach to pages through GET /pages.
func New(handler repositories.MessageHandler, pages *messaging.PageHub) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		handler:  handler,
		pages:    pages,
		router:   chi.NewRouter(),
		metrics:  newMetrics(registry, pages.PageCount),
		registry: registry,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Post(messaging.MessagesPath, s.handleMessage)
	s.router.Get(messaging.PagesPath, pages.HandleWebSocket)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	httpServer.RegisterOnShutdown(s.pages.Close)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Background listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("background server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down background server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		s.metrics.rejectedTotal.Inc()
		writeJSON(w, http.StatusBadRequest, entities.ErrorResponse(err))
		return
	}

	msg, err := entities.DecodeMessage(body)
	if err != nil {
		s.metrics.rejectedTotal.Inc()
		writeJSON(w, http.StatusBadRequest, entities.ErrorResponse(err))
		return
	}

	action := string(msg.Action())
	start := time.Now()
	resp := s.handler.Handle(r.Context(), msg)
	s.metrics.messageDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	outcome := outcomeOK
	if resp.Error != "" {
		outcome = outcomeError
	}
	s.metrics.messagesTotal.WithLabelValues(action, outcome).Inc()
	logger.Debugf("[%s] %s -> %s", middleware.GetReqID(r.Context()), action, outcome)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.handler.Handle(r.Context(), entities.CheckStatusMessage{}))
}

func writeJSON(w http.ResponseWriter, status int, resp entities.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}

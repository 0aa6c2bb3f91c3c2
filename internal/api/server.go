package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agroeye/internal/classify"
	"agroeye/internal/config"
	"agroeye/internal/metrics"
	"agroeye/internal/model"
	"agroeye/internal/snapshot"
	"agroeye/internal/storage"
)

type Server struct {
	cfg        *config.Manager
	store      *snapshot.Store
	classifier atomic.Pointer[classify.Classifier]
	logger     *slog.Logger
	version    string
}

type statusResponse struct {
	Status          string       `json:"status"`
	Time            string       `json:"time"`
	Version         string       `json:"version"`
	ConfigPath      string       `json:"config_path"`
	SnapshotVersion uint64       `json:"snapshot_version"`
	Source          string       `json:"source"`
	Ingest          ingestStatus `json:"ingest"`
	API             apiStatus    `json:"api"`
}

type ingestStatus struct {
	Kafka bool `json:"kafka"`
}

type apiStatus struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

func NewServer(cfg *config.Manager, store *snapshot.Store, logger *slog.Logger, version string) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("api: config and store are required")
	}
	s := &Server{cfg: cfg, store: store, logger: logger, version: version}
	if err := s.UpdateConfig(cfg.Get()); err != nil {
		return nil, err
	}
	metrics.SnapshotVersion.Set(float64(store.Version()))
	return s, nil
}

// UpdateConfig swaps in a classifier built from the thresholds in cfg. The
// current classifier stays in place when cfg is rejected.
func (s *Server) UpdateConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("api: nil config")
	}
	c, err := classify.FromConfig(cfg.Thresholds)
	if err != nil {
		return err
	}
	s.classifier.Store(c)
	return nil
}

func (s *Server) Classifier() *classify.Classifier {
	return s.classifier.Load()
}

// Handler returns the routed API with request ids, logging, recovery and,
// when origins are configured, CORS applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
	router.Use(s.logging, s.recovery)

	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	api.HandleFunc("/sensors", s.handleSensors).Methods(http.MethodGet)
	api.HandleFunc("/sensors/{id}", s.handleSensor).Methods(http.MethodGet)

	api.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/read", s.handleMarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}/read", s.handleMarkRead).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}", s.handleDeleteAlert).Methods(http.MethodDelete)

	api.HandleFunc("/datasets", s.handleDatasets).Methods(http.MethodGet)
	api.HandleFunc("/users", s.handleUsers).Methods(http.MethodGet)

	api.HandleFunc("/map", s.handleMapNodes).Methods(http.MethodGet)
	api.HandleFunc("/map/{id}", s.handleMapNode).Methods(http.MethodGet)

	api.HandleFunc("/config/thresholds", s.handleGetThresholds).Methods(http.MethodGet)
	api.HandleFunc("/config/thresholds", s.handleUpdateThresholds).Methods(http.MethodPut)
	api.HandleFunc("/admin/reload", s.handleReload).Methods(http.MethodPost)

	var h http.Handler = router
	if origins := s.cfg.Get().API.CORSOrigins; len(origins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
			handlers.ExposedHeaders([]string{requestIDHeader}),
		)(h)
	}
	return requestID(h)
}

func Start(ctx context.Context, server *Server, logger *slog.Logger) *http.Server {
	if server == nil {
		return nil
	}
	current := server.cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	httpServer := &http.Server{
		Addr:              current.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Get()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:          "ok",
		Time:            time.Now().UTC().Format(time.RFC3339Nano),
		Version:         s.version,
		ConfigPath:      s.cfg.Path(),
		SnapshotVersion: s.store.Version(),
		Source:          cfg.Source.Driver,
		Ingest:          ingestStatus{Kafka: cfg.Ingest.Kafka.Enabled},
		API:             apiStatus{Enabled: cfg.API.Enabled, Addr: cfg.API.Addr},
	})
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"thresholds": s.cfg.Get().Thresholds,
	})
}

// handleUpdateThresholds replaces the threshold overrides. Tables left out of
// the body fall back to the built-in thresholds.
func (s *Server) handleUpdateThresholds(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, r, model.Invalid("read body: %v", err))
		return
	}
	var thresholds config.ThresholdsConfig
	if err := json.Unmarshal(body, &thresholds); err != nil {
		s.writeError(w, r, model.Invalid("decode thresholds: %v", err))
		return
	}
	next := *s.cfg.Get()
	next.Thresholds = thresholds
	if err := config.Validate(&next); err != nil {
		s.writeError(w, r, model.Invalid("%v", err))
		return
	}
	// Build the classifier before persisting so a bad table never reaches disk.
	if _, err := classify.FromConfig(thresholds); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Update(&next); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.UpdateConfig(&next); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.logger != nil {
		s.logger.Info("thresholds updated", "request_id", requestIDFrom(r), "config_path", s.cfg.Path())
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleReload reads the record source again and swaps the result in. The
// current snapshot is kept when the source fails.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := storage.LoadSnapshot(r.Context(), s.cfg.Get().Source, s.logger)
	if err != nil {
		metrics.StateTransitionsTotal.WithLabelValues("reload", "error").Inc()
		s.writeError(w, r, err)
		return
	}
	s.store.Replace(snap)
	s.transitioned("reload", "sensors", len(snap.Sensors), "alerts", len(snap.Alerts))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.store.Version(),
		"sensors":  len(snap.Sensors),
		"alerts":   len(snap.Alerts),
		"datasets": len(snap.Datasets),
		"users":    len(snap.Users),
		"map":      len(snap.MapNodes),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jorgecardleitao/private-jets/internal/logging"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
)

// ServiceStatus is the health of one dependency.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}

// StatusResponse is the GET /status payload.
type StatusResponse struct {
	UpSince time.Time     `json:"up_since"`
	Jobs    []JobProgress `json:"jobs"`
}

// Server is the operational HTTP surface of a pipeline process: health,
// Prometheus metrics and job progress. It is optional; batch runs without
// an address configured never start it.
type Server struct {
	addr    string
	tracker *Tracker
	db      *sqlx.DB // optional, health-checked when present
	upSince time.Time
}

func NewServer(addr string, tracker *Tracker, db *sqlx.DB) *Server {
	return &Server{
		addr:    addr,
		tracker: tracker,
		db:      db,
		upSince: time.Now().UTC(),
	}
}

// Router builds the ops endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(MetricsMiddleware(metrics.Default()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Serve blocks until ctx is cancelled, then drains the listener.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logging.Info("Ops server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]ServiceStatus)

	if s.db != nil {
		status, details := "ok", "Postgres connected"
		if err := s.db.Ping(); err != nil {
			status, details = "down", err.Error()
		}
		services["postgres"] = ServiceStatus{Status: status, Details: details}
	}

	overall := "ok"
	for _, svc := range services {
		if svc.Status != "ok" {
			overall = "down"
			break
		}
	}

	resp := HealthResponse{
		Status:   overall,
		Services: services,
		UpSince:  s.upSince,
		Uptime:   time.Since(s.upSince).Round(time.Second).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	if overall != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		UpSince: s.upSince,
		Jobs:    s.tracker.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package fakeservice

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/pkg/logger"
)

// Server serves a Dataset over the data service endpoints.
type Server struct {
	data   *Dataset
	logger logger.Logger

	mu       sync.RWMutex
	failures map[string]string
	delay    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDelay holds every response for d.
func WithDelay(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.delay = d
		}
	}
}

// NewServer creates a server for data.
func NewServer(data *Dataset, opts ...Option) *Server {
	s := &Server{data: data, failures: map[string]string{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("fakeservice")
	}
	return s
}

// Fail makes endpoint answer 500 with message until Recover is called.
// An empty message yields an empty error body.
func (s *Server) Fail(endpoint, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = message
}

// Recover clears an injected failure.
func (s *Server) Recover(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, endpoint)
}

// Handler returns the routed endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/activities", s.guard("activities", s.handleActivities))
	mux.HandleFunc("GET /api/activity_data/{tcxid}", s.guard("activity_data", s.handleActivityData))
	mux.HandleFunc("GET /api/activity_details/{tcxid}", s.guard("activity_details", s.handleActivityDetails))
	mux.HandleFunc("GET /api/monthly_data/{year}/{month}", s.guard("monthly_data", s.handleMonthlyData))
	mux.HandleFunc("GET /api/progress_data", s.guard("progress_data", s.handleProgressData))
	return mux
}

func (s *Server) guard(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}
		s.mu.RLock()
		msg, failing := s.failures[endpoint]
		s.mu.RUnlock()
		if failing {
			s.logger.Debug(r.Context(), "injected failure", logger.String("endpoint", endpoint))
			if msg == "" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeError(w, http.StatusInternalServerError, msg)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleActivities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Activities())
}

func (s *Server) handleActivityData(w http.ResponseWriter, r *http.Request) {
	smoothing := 0
	if v := r.URL.Query().Get("smoothing"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid smoothing")
			return
		}
		smoothing = n
	}
	data, ok := s.data.ActivityData(model.ID(r.PathValue("tcxid")), smoothing)
	if !ok {
		writeError(w, http.StatusNotFound, "No data found for this activity")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleActivityDetails(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.data.Session(model.ID(r.PathValue("tcxid")))
	if !ok {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}
	writeJSON(w, http.StatusOK, sess.Details())
}

func (s *Server) handleMonthlyData(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(r.PathValue("year"))
	month, merr := strconv.Atoi(r.PathValue("month"))
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	writeJSON(w, http.StatusOK, s.data.MonthlyData(year, time.Month(month)))
}

func (s *Server) handleProgressData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.data.ProgressData())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

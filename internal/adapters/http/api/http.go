// Package api serves the tcxview UI: the page for the current frame, the
// action routes that turn clicks into view events, and the chart surfaces.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/tcxview/internal/adapters/chart"
	"github.com/okian/tcxview/internal/app"
	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Submit applies ev and returns once the frame reflects it.
	Submit(ctx context.Context, ev view.Event) error

	// Frame returns the latest render description.
	Frame() view.Frame
}

// StatsProvider exposes controller counters.
type StatsProvider interface {
	Stats(ctx context.Context) app.Stats
}

// Surfaces looks up live chart handles.
type Surfaces interface {
	Get(surface string) (*chart.Handle, bool)
}

// Server wires HTTP routes for the UI.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	pageHandler    *PageHandler
	actionHandler  *ActionHandler
	surfaceHandler *SurfaceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, stats StatsProvider, surfaces Surfaces) *Server {
	l := logger.Get().Named("http")
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(stats),
		pageHandler:    NewPageHandler(deps, l),
		actionHandler:  NewActionHandler(deps, l),
		surfaceHandler: NewSurfaceHandler(surfaces),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /state", MetricsMiddleware(s.pageHandler.HandleState, "state"))
	mux.HandleFunc("GET /surface/{id}", MetricsMiddleware(s.surfaceHandler.HandleSurface, "surface"))

	a := s.actionHandler
	mux.HandleFunc("GET /view/{mode}", MetricsMiddleware(a.HandleView, "view"))
	mux.HandleFunc("GET /select", MetricsMiddleware(a.HandleSelect, "select"))
	mux.HandleFunc("GET /units", MetricsMiddleware(a.HandleUnits, "units"))
	mux.HandleFunc("GET /smoothing", MetricsMiddleware(a.HandleSmoothing, "smoothing"))
	mux.HandleFunc("GET /month", MetricsMiddleware(a.HandleMonth, "month"))
	mux.HandleFunc("GET /navigate/day/{date}", MetricsMiddleware(a.HandleNavigateDay, "navigate_day"))
	mux.HandleFunc("GET /navigate/progress/{index}", MetricsMiddleware(a.HandleNavigateProgress, "navigate_progress"))
	mux.HandleFunc("GET /details/toggle", MetricsMiddleware(a.HandleToggleDetails, "details_toggle"))

	// Exact root only; everything else under / is a 404.
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.pageHandler.HandlePage, "page"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// submitStatus maps a Submit error to an HTTP status and error code.
func submitStatus(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, app.ErrStopped):
		return http.StatusServiceUnavailable, "stopped"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

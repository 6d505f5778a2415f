package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/tcxview/pkg/metrics"
)

type labelsKey struct{}

// requestLabels collects what a handler learned about its request for the
// metrics recorded after it returns.
type requestLabels struct {
	event string
}

// markEvent tags r with the kind of view event its action submits.
func markEvent(r *http.Request, kind string) {
	if l, ok := r.Context().Value(labelsKey{}).(*requestLabels); ok {
		l.event = kind
	}
}

// MetricsMiddleware records request, error and UI action metrics for the
// route named endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		labels := &requestLabels{}
		r = r.WithContext(context.WithValue(r.Context(), labelsKey{}, labels))
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := wrapped.statusCode
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Microseconds())/1000)

		if labels.event != "" {
			metrics.RecordUIAction(labels.event, actionOutcome(status))
		}
		if status >= http.StatusBadRequest {
			kind := errorType(status)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, errorSeverity(status))
		}
	}
}

// actionOutcome classifies how a UI action ended. Applied actions redirect
// back to the page.
func actionOutcome(status int) string {
	switch {
	case status == http.StatusSeeOther:
		return "applied"
	case status == http.StatusTooManyRequests:
		return "backpressure"
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= http.StatusInternalServerError:
		return "failed"
	default:
		return "rejected"
	}
}

func errorType(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusTooManyRequests:
		return "backpressure"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

func errorSeverity(status int) string {
	if status >= http.StatusInternalServerError {
		return "high"
	}
	return "medium"
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

package api

import (
	"net/http"
)

// SurfaceHandler serves the rendered HTML of one live chart.
type SurfaceHandler struct {
	surfaces Surfaces
}

// NewSurfaceHandler creates a new surface handler.
func NewSurfaceHandler(surfaces Surfaces) *SurfaceHandler {
	return &SurfaceHandler{surfaces: surfaces}
}

// HandleSurface handles GET /surface/{id}. Released surfaces are 404.
func (h *SurfaceHandler) HandleSurface(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.surfaces.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Chart-Handle", handle.ID)
	_, _ = w.Write(handle.HTML())
}

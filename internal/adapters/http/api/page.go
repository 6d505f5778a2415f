package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"months": func() []int { return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} },
	"height": chartHeight,
	"mod7":   func(i int) int { return i % 7 },
}).ParseFS(templateFS, "templates/page.html"))

// PageHandler renders the current frame.
type PageHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(deps Dependencies, l logger.Logger) *PageHandler {
	return &PageHandler{deps: deps, logger: l}
}

// HandlePage handles GET / requests. While a fetch drives the view the page
// refreshes itself.
func (h *PageHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	frame := h.deps.Frame()

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, frame); err != nil {
		h.logger.Error(r.Context(), "page render failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render", wrapKind("api.page", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// HandleState handles GET /state requests.
func (h *PageHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Frame())
}

// chartHeight is the iframe height in pixels for a surface kind.
func chartHeight(kind view.ChartKind) int {
	if kind == view.ChartDay {
		return 80
	}
	return 480
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/units"
	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
)

// ActionHandler turns UI requests into view events. Each action applies its
// event and redirects back to the page.
type ActionHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewActionHandler creates a new action handler.
func NewActionHandler(deps Dependencies, l logger.Logger) *ActionHandler {
	return &ActionHandler{deps: deps, logger: l}
}

// HandleView handles GET /view/{mode}.
func (h *ActionHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	mode, err := view.ParseMode(r.PathValue("mode"))
	if err != nil {
		h.badRequest(w, "api.view", err)
		return
	}
	h.apply(w, r, view.SwitchView{Mode: mode})
}

// HandleSelect handles GET /select?id=.
func (h *ActionHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, view.SelectSession{ID: model.ID(strings.TrimSpace(r.URL.Query().Get("id")))})
}

// HandleUnits handles GET /units?system=.
func (h *ActionHandler) HandleUnits(w http.ResponseWriter, r *http.Request) {
	sys, err := units.ParseSystem(r.URL.Query().Get("system"))
	if err != nil {
		h.badRequest(w, "api.units", err)
		return
	}
	h.apply(w, r, view.ChangeUnits{System: sys})
}

// HandleSmoothing handles GET /smoothing?level=.
func (h *ActionHandler) HandleSmoothing(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil || level < 0 {
		h.badRequest(w, "api.smoothing", fmt.Errorf("invalid level %q", r.URL.Query().Get("level")))
		return
	}
	h.apply(w, r, view.ChangeSmoothing{Level: level})
}

// HandleMonth handles GET /month?delta= and GET /month?year=&month=.
func (h *ActionHandler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if d := q.Get("delta"); d != "" {
		delta, err := strconv.Atoi(d)
		if err != nil {
			h.badRequest(w, "api.month", fmt.Errorf("invalid delta %q", d))
			return
		}
		h.apply(w, r, view.ShiftMonth{Delta: delta})
		return
	}

	year, yerr := strconv.Atoi(q.Get("year"))
	month, merr := strconv.Atoi(q.Get("month"))
	c := calendar.Cursor{Year: year, Month: time.Month(month)}
	if yerr != nil || merr != nil || !c.Valid() {
		h.badRequest(w, "api.month", errors.New("need delta or a valid year and month"))
		return
	}
	h.apply(w, r, view.SetMonth{Year: c.Year, Month: c.Month})
}

// HandleNavigateDay handles GET /navigate/day/{date}, the day chart click.
func (h *ActionHandler) HandleNavigateDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := time.Parse(calendar.DateLayout, date); err != nil {
		h.badRequest(w, "api.navigate_day", fmt.Errorf("invalid date %q", date))
		return
	}
	h.apply(w, r, view.ClickDay{Date: date})
}

// HandleNavigateProgress handles GET /navigate/progress/{index}, the
// progress chart click.
func (h *ActionHandler) HandleNavigateProgress(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		h.badRequest(w, "api.navigate_progress", fmt.Errorf("invalid index %q", r.PathValue("index")))
		return
	}
	h.apply(w, r, view.ClickProgressPoint{Index: index})
}

// HandleToggleDetails handles GET /details/toggle.
func (h *ActionHandler) HandleToggleDetails(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, view.ToggleDetails{})
}

func (h *ActionHandler) apply(w http.ResponseWriter, r *http.Request, ev view.Event) {
	markEvent(r, ev.Kind())
	if err := h.deps.Submit(r.Context(), ev); err != nil {
		status, code := submitStatus(err)
		h.logger.Warn(r.Context(), "event not applied",
			logger.String("kind", ev.Kind()),
			logger.Int("status", status),
			logger.Error(err),
		)
		writeError(w, status, code, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ActionHandler) badRequest(w http.ResponseWriter, op string, err error) {
	writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
}

package view

import (
	"fmt"
	"time"

	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/progress"
	"github.com/okian/tcxview/internal/domain/units"
)

var defaultMessages = map[Target]string{
	TargetActivities:     "Failed to fetch activities",
	TargetSessionData:    "Failed to load activity data",
	TargetSessionDetails: "Failed to load activity details",
	TargetMonth:          "Failed to load calendar data",
	TargetProgress:       "Failed to load progress data",
}

// Dispatch applies ev to s. Every event that changes the state yields
// exactly one Render command, after any Fetch commands. Events that change
// nothing, such as stale responses or clicks on empty cells, return s
// unchanged and no commands.
func Dispatch(s State, ev Event) (State, []Command) {
	d := &dispatcher{s: s}
	if !d.apply(ev) {
		return s, nil
	}
	d.cmds = append(d.cmds, Render{View: d.s.Mode})
	return d.s, d.cmds
}

type dispatcher struct {
	s    State
	cmds []Command
}

func (d *dispatcher) apply(ev Event) bool {
	switch e := ev.(type) {
	case Init:
		return d.init(e.Now)
	case ActivitiesLoaded:
		d.activities(e.Activities)
		return true
	case SelectSession:
		d.selectSession(e.ID)
		return true
	case SwitchView:
		if _, err := ParseMode(string(e.Mode)); err != nil {
			return false
		}
		d.switchView(e.Mode)
		return true
	case ChangeUnits:
		return d.changeUnits(e)
	case ChangeSmoothing:
		return d.changeSmoothing(e.Level)
	case ShiftMonth:
		return d.moveCursor(d.s.Cursor.Shift(e.Delta))
	case SetMonth:
		return d.moveCursor(calendar.Cursor{Year: e.Year, Month: e.Month})
	case ClickDay:
		return d.clickDay(e.Date)
	case ClickProgressPoint:
		return d.clickProgressPoint(e.Index)
	case ToggleDetails:
		return d.toggleDetails()
	case FetchSucceeded:
		if !d.s.Current(e.Target, e.Seq) {
			return false
		}
		d.s.pending[e.Target] = false
		d.succeeded(e)
		return true
	case FetchFailed:
		if !d.s.Current(e.Target, e.Seq) {
			return false
		}
		d.s.pending[e.Target] = false
		d.fail(e.Target, e.Request, e.Err)
		return true
	default:
		return false
	}
}

func (d *dispatcher) init(now time.Time) bool {
	d.s.Today = now
	if d.s.Cursor == (calendar.Cursor{}) {
		d.s.Cursor = calendar.CursorAt(now)
	}
	d.fetch(TargetActivities, Request{})
	return true
}

// fetch issues a new request for t, superseding any in flight.
func (d *dispatcher) fetch(t Target, req Request) {
	d.s.seq[t]++
	d.s.pending[t] = true
	d.cmds = append(d.cmds, Fetch{Target: t, Seq: d.s.seq[t], Request: req})
}

// cancel makes any in-flight response for t stale.
func (d *dispatcher) cancel(t Target) {
	if d.s.pending[t] {
		d.s.seq[t]++
		d.s.pending[t] = false
	}
}

func (d *dispatcher) activities(list []model.ActivitySummary) {
	d.s.Activities = list
	if len(list) == 0 {
		d.clearSelection()
		return
	}
	d.s.SelectedID = list[0].ID
	d.s.SelectedName = list[0].DisplayName
	if d.s.Mode == ModeChart {
		d.fetchSession(true)
	}
}

func (d *dispatcher) selectSession(id model.ID) {
	if id == "" {
		d.clearSelection()
		return
	}
	d.s.SelectedID = id
	d.s.SelectedName = d.s.displayName(id, "")
	if d.s.Mode == ModeChart {
		d.fetchSession(true)
	}
}

func (d *dispatcher) clearSelection() {
	d.s.SelectedID = ""
	d.s.SelectedName = ""
	d.cancel(TargetSessionData)
	d.cancel(TargetSessionDetails)
	d.s.Session = nil
	d.s.Details = nil
}

// fetchSession requests the selected session's series and, when withDetails
// is set, its detail panel.
func (d *dispatcher) fetchSession(withDetails bool) {
	if d.s.SelectedID == "" {
		return
	}
	d.s.Error = ""
	d.fetch(TargetSessionData, Request{ID: d.s.SelectedID, Smoothing: d.s.Smoothing})
	if withDetails {
		d.fetch(TargetSessionDetails, Request{ID: d.s.SelectedID})
	}
}

func (d *dispatcher) switchView(m Mode) {
	d.exit()
	d.s.Mode = m
	d.enter()
}

// exit drops the data owned by the active view.
func (d *dispatcher) exit() {
	switch d.s.Mode {
	case ModeChart:
		d.cancel(TargetSessionData)
		d.cancel(TargetSessionDetails)
		d.s.Session = nil
		d.s.Details = nil
	case ModeCalendar:
		d.cancel(TargetMonth)
		d.s.Month = nil
	case ModeProgress:
		d.cancel(TargetProgress)
		d.s.Progress = nil
	}
}

func (d *dispatcher) enter() {
	switch d.s.Mode {
	case ModeChart:
		d.fetchSession(true)
	case ModeCalendar:
		d.fetchMonth()
	case ModeProgress:
		d.fetchProgress()
	}
}

func (d *dispatcher) fetchMonth() {
	d.s.Error = ""
	d.fetch(TargetMonth, Request{Cursor: d.s.Cursor})
}

func (d *dispatcher) fetchProgress() {
	d.s.Error = ""
	d.fetch(TargetProgress, Request{})
}

func (d *dispatcher) changeUnits(e ChangeUnits) bool {
	switch e.System {
	case units.Metric, units.Imperial:
	default:
		return false
	}
	d.s.Units = e.System
	switch d.s.Mode {
	case ModeChart:
		if d.s.Session == nil && !d.s.pending[TargetSessionData] {
			d.fetchSession(d.s.Details == nil && !d.s.pending[TargetSessionDetails])
		}
	case ModeProgress:
		if d.s.Progress == nil && !d.s.pending[TargetProgress] {
			d.fetchProgress()
		}
	}
	return true
}

func (d *dispatcher) changeSmoothing(level int) bool {
	if level < 0 {
		return false
	}
	d.s.Smoothing = level
	if d.s.Mode == ModeChart {
		d.fetchSession(false)
	}
	return true
}

func (d *dispatcher) moveCursor(c calendar.Cursor) bool {
	if !c.Valid() || c.Year <= 0 {
		return false
	}
	d.s.Cursor = c
	if d.s.Mode == ModeCalendar {
		d.fetchMonth()
	}
	return true
}

func (d *dispatcher) clickDay(date string) bool {
	if d.s.Month == nil {
		return false
	}
	s, ok := d.s.Month.Latest(date)
	if !ok {
		return false
	}
	d.navigate(s.ID, s.DisplayName)
	return true
}

func (d *dispatcher) clickProgressPoint(i int) bool {
	if d.s.Progress == nil || i < 0 || i >= len(d.s.Progress.Points) {
		return false
	}
	p := d.s.Progress.Points[i]
	if p.SessionID == "" {
		return false
	}
	d.navigate(p.SessionID, "")
	return true
}

// navigate crosses into the chart view carrying the clicked session.
func (d *dispatcher) navigate(id model.ID, name string) {
	d.exit()
	d.s.Mode = ModeChart
	d.s.SelectedID = id
	d.s.SelectedName = d.s.displayName(id, name)
	d.enter()
}

func (d *dispatcher) toggleDetails() bool {
	switch d.s.Mode {
	case ModeChart:
		d.s.DetailsOpen = !d.s.DetailsOpen
	case ModeProgress:
		d.s.SummaryOpen = !d.s.SummaryOpen
	default:
		return false
	}
	return true
}

func (d *dispatcher) succeeded(e FetchSucceeded) {
	switch e.Target {
	case TargetActivities:
		list, ok := e.Payload.([]model.ActivitySummary)
		if !ok {
			d.fail(e.Target, e.Request, unexpected(e.Payload))
			return
		}
		d.s.Error = ""
		d.activities(list)
	case TargetSessionData:
		data, ok := e.Payload.(model.ActivityData)
		if !ok {
			d.fail(e.Target, e.Request, unexpected(e.Payload))
			return
		}
		if err := data.Validate(); err != nil {
			d.fail(e.Target, e.Request, err)
			return
		}
		d.s.Error = ""
		d.s.Session = &SessionData{
			ID:        e.Request.ID,
			Name:      d.s.displayName(e.Request.ID, d.selectedNameFor(e.Request.ID)),
			Smoothing: e.Request.Smoothing,
			Data:      data,
		}
	case TargetSessionDetails:
		details, ok := e.Payload.(model.Details)
		if !ok {
			d.fail(e.Target, e.Request, unexpected(e.Payload))
			return
		}
		d.s.Details = &DetailsData{ID: e.Request.ID, Details: details}
		d.s.DetailsOpen = true
	case TargetMonth:
		data, ok := e.Payload.(model.MonthlyData)
		if !ok {
			d.fail(e.Target, e.Request, unexpected(e.Payload))
			return
		}
		m := calendar.FromMonthly(e.Request.Cursor.Year, e.Request.Cursor.Month, data)
		d.s.Error = ""
		d.s.Month = &m
	case TargetProgress:
		data, ok := e.Payload.(model.ProgressData)
		if !ok {
			d.fail(e.Target, e.Request, unexpected(e.Payload))
			return
		}
		p, err := progress.FromResponse(data)
		if err != nil {
			d.fail(e.Target, e.Request, err)
			return
		}
		d.s.Error = ""
		d.s.Progress = &p
	}
}

func (d *dispatcher) selectedNameFor(id model.ID) string {
	if d.s.SelectedID == id {
		return d.s.SelectedName
	}
	return ""
}

// fail applies the failure policy: held data for the failed key is cleared,
// data for any other key stays, and the message goes to the banner. Detail
// failures only hide the panel.
func (d *dispatcher) fail(t Target, req Request, err error) {
	msg := defaultMessages[t]
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	switch t {
	case TargetSessionDetails:
		d.s.Details = nil
		return
	case TargetSessionData:
		if d.s.Session != nil && d.s.Session.ID == req.ID {
			d.s.Session = nil
		}
	case TargetMonth:
		if m := d.s.Month; m != nil && m.Year == req.Cursor.Year && m.Month == req.Cursor.Month {
			d.s.Month = nil
		}
	case TargetProgress:
		d.s.Progress = nil
	}
	d.s.Error = msg
}

func unexpected(payload any) error {
	return fmt.Errorf("unexpected response shape %T", payload)
}

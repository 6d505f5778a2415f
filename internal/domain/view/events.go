package view

import (
	"time"

	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/units"
)

// Event is an input to Dispatch.
type Event interface {
	Kind() string
}

// Init starts the engine: it records today's date and requests the
// activities list.
type Init struct{ Now time.Time }

// ActivitiesLoaded replaces the activities list and auto-selects its first
// entry.
type ActivitiesLoaded struct{ Activities []model.ActivitySummary }

// SelectSession selects a session. An empty ID clears the selection.
type SelectSession struct{ ID model.ID }

// SwitchView leaves the active view and enters Mode.
type SwitchView struct{ Mode Mode }

// ChangeUnits switches the display unit system.
type ChangeUnits struct{ System units.System }

// ChangeSmoothing sets the server-side smoothing level.
type ChangeSmoothing struct{ Level int }

// ShiftMonth moves the calendar cursor by Delta months.
type ShiftMonth struct{ Delta int }

// SetMonth moves the calendar cursor to an explicit month.
type SetMonth struct {
	Year  int
	Month time.Month
}

// ClickDay opens the most recent session of a calendar day.
type ClickDay struct{ Date string }

// ClickProgressPoint opens the session behind a progress point.
type ClickProgressPoint struct{ Index int }

// ToggleDetails collapses or expands the detail panel of the active view.
type ToggleDetails struct{}

// FetchSucceeded delivers a parsed response. Payload is
// []model.ActivitySummary, model.ActivityData, model.Details,
// model.MonthlyData or model.ProgressData depending on Target.
type FetchSucceeded struct {
	Target  Target
	Seq     uint64
	Request Request
	Payload any
}

// FetchFailed delivers a fetch failure.
type FetchFailed struct {
	Target  Target
	Seq     uint64
	Request Request
	Err     error
}

func (Init) Kind() string               { return "init" }
func (ActivitiesLoaded) Kind() string   { return "activities_loaded" }
func (SelectSession) Kind() string      { return "select_session" }
func (SwitchView) Kind() string         { return "switch_view" }
func (ChangeUnits) Kind() string        { return "change_units" }
func (ChangeSmoothing) Kind() string    { return "change_smoothing" }
func (ShiftMonth) Kind() string         { return "shift_month" }
func (SetMonth) Kind() string           { return "set_month" }
func (ClickDay) Kind() string           { return "click_day" }
func (ClickProgressPoint) Kind() string { return "click_progress_point" }
func (ToggleDetails) Kind() string      { return "toggle_details" }
func (FetchSucceeded) Kind() string     { return "fetch_succeeded" }
func (FetchFailed) Kind() string        { return "fetch_failed" }

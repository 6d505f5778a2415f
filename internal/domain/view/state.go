// Package view is the view-state machine of the telemetry UI. Dispatch is a
// pure transition from (State, Event) to a new State plus the commands the
// caller must execute; Describe turns a State into a declarative Frame for
// rendering.
package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/progress"
	"github.com/okian/tcxview/internal/domain/sampling"
	"github.com/okian/tcxview/internal/domain/units"
)

// Mode is the active view. Exactly one is active at a time.
type Mode string

// View modes.
const (
	ModeChart    Mode = "chart"
	ModeCalendar Mode = "calendar"
	ModeProgress Mode = "progress"
)

// Modes lists the view modes in tab order.
var Modes = []Mode{ModeChart, ModeCalendar, ModeProgress}

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown view mode")

// ParseMode maps a name to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Target identifies one kind of fetch. Each target has its own request
// sequence.
type Target int

// Fetch targets.
const (
	TargetActivities Target = iota
	TargetSessionData
	TargetSessionDetails
	TargetMonth
	TargetProgress
	targetCount
)

// Targets lists every fetch target.
var Targets = []Target{TargetActivities, TargetSessionData, TargetSessionDetails, TargetMonth, TargetProgress}

func (t Target) String() string {
	switch t {
	case TargetActivities:
		return "activities"
	case TargetSessionData:
		return "activity_data"
	case TargetSessionDetails:
		return "activity_details"
	case TargetMonth:
		return "monthly_data"
	case TargetProgress:
		return "progress_data"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// Settings are the tunables of the engine, fixed for a process.
type Settings struct {
	CompactPoints int
	WarmupSamples int
	Units         units.System
	Smoothing     int
}

// DefaultSettings returns the stock tunables.
func DefaultSettings() Settings {
	return Settings{
		CompactPoints: sampling.DefaultCompactPoints,
		WarmupSamples: sampling.DefaultWarmup,
		Units:         units.Metric,
		Smoothing:     5,
	}
}

// SessionData is the held chart data of one session.
type SessionData struct {
	ID        model.ID
	Name      string
	Smoothing int
	Data      model.ActivityData
}

// DetailsData is the held detail panel of one session.
type DetailsData struct {
	ID      model.ID
	Details model.Details
}

// State is the whole UI state. Only Dispatch produces new States; readers
// treat it as immutable.
type State struct {
	Mode      Mode
	Units     units.System
	Smoothing int
	Cursor    calendar.Cursor
	Today     time.Time

	Activities   []model.ActivitySummary
	SelectedID   model.ID
	SelectedName string

	// View-lifetime data, dropped when the owning view is left.
	Session  *SessionData
	Details  *DetailsData
	Month    *calendar.Month
	Progress *progress.Progress

	Error       string
	DetailsOpen bool
	SummaryOpen bool

	settings Settings
	seq      [targetCount]uint64
	pending  [targetCount]bool
}

// New returns the initial state: chart view, no selection, nothing
// fetched.
func New(settings Settings) State {
	if settings.CompactPoints <= 0 {
		settings.CompactPoints = sampling.DefaultCompactPoints
	}
	if settings.WarmupSamples < 0 {
		settings.WarmupSamples = 0
	}
	if settings.Units == "" {
		settings.Units = units.Metric
	}
	return State{
		Mode:        ModeChart,
		Units:       settings.Units,
		Smoothing:   settings.Smoothing,
		DetailsOpen: true,
		SummaryOpen: true,
		settings:    settings,
	}
}

// Settings returns the tunables the state was created with.
func (s State) Settings() Settings { return s.settings }

// Seq is the latest sequence number issued for t.
func (s State) Seq(t Target) uint64 { return s.seq[t] }

// Pending reports whether a response for t is awaited.
func (s State) Pending(t Target) bool { return s.pending[t] }

// Current reports whether a response carrying seq for t would be applied.
// Older sequences and responses for cancelled fetches are stale.
func (s State) Current(t Target, seq uint64) bool {
	return t >= 0 && t < targetCount && s.pending[t] && s.seq[t] == seq
}

// InFlight counts awaited responses.
func (s State) InFlight() int {
	n := 0
	for _, p := range s.pending {
		if p {
			n++
		}
	}
	return n
}

// Loading reports whether any fetch that drives the visible view is awaited.
// Detail lookups do not count.
func (s State) Loading() bool {
	for _, t := range Targets {
		if t != TargetSessionDetails && s.pending[t] {
			return true
		}
	}
	return false
}

// displayName resolves the name shown for id: the activities list first,
// then fallback, then the id itself.
func (s State) displayName(id model.ID, fallback string) string {
	for _, a := range s.Activities {
		if a.ID == id {
			return a.DisplayName
		}
	}
	if fallback != "" {
		return fallback
	}
	return id.String()
}

package view

import (
	"sort"
	"time"

	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/progress"
	"github.com/okian/tcxview/internal/domain/units"
)

// Empty-state messages.
const (
	NoActivity     = "No activity"
	NoSelection    = "Select an activity"
	NoProgressData = "No progress data"
)

// SmoothingLevels are the levels offered by the smoothing selector.
var SmoothingLevels = []int{1, 3, 5, 10, 20, 30}

// Frame is the declarative render description of a State.
type Frame struct {
	Mode         Mode          `json:"mode"`
	Tabs         []Tab         `json:"tabs"`
	Activities   []Option      `json:"activities,omitempty"`
	SelectedID   model.ID      `json:"selected_id,omitempty"`
	SelectedName string        `json:"selected_name,omitempty"`
	Units        units.System  `json:"units"`
	SpeedUnit    string        `json:"speed_unit"`
	DistanceUnit string        `json:"distance_unit"`
	Smoothing    int           `json:"smoothing"`
	Smoothings   []int         `json:"smoothing_levels"`
	Error        string        `json:"error,omitempty"`
	Loading      bool          `json:"loading"`
	Empty        string        `json:"empty,omitempty"`
	Charts       []ChartSpec   `json:"charts,omitempty"`
	Details      *Panel        `json:"details,omitempty"`
	Calendar     *CalendarView `json:"calendar,omitempty"`
	Summary      *Panel        `json:"summary,omitempty"`
}

// Tab is one view switch button.
type Tab struct {
	Mode   Mode   `json:"mode"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Option is one entry of the activity selector.
type Option struct {
	ID       model.ID `json:"id"`
	Name     string   `json:"name"`
	Selected bool     `json:"selected"`
}

// Row is one label/value table row.
type Row = progress.Row

// Panel is a collapsible table. A nil panel is hidden.
type Panel struct {
	Title string `json:"title"`
	Open  bool   `json:"open"`
	Rows  []Row  `json:"rows"`
}

// CalendarView is the month grid.
type CalendarView struct {
	Title    string    `json:"title"`
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Years    []int     `json:"years"`
	Weekdays []string  `json:"weekdays"`
	Cells    []DayCell `json:"cells"`
}

// DayCell is one grid cell.
type DayCell struct {
	Blank    bool   `json:"blank,omitempty"`
	Day      int    `json:"day,omitempty"`
	Date     string `json:"date,omitempty"`
	Sessions int    `json:"sessions,omitempty"`
	Surface  string `json:"surface,omitempty"`
	Tip      string `json:"tip,omitempty"`
}

var tabLabels = map[Mode]string{
	ModeChart:    "Chart View",
	ModeCalendar: "Calendar View",
	ModeProgress: "Progress View",
}

// DetailPriority is the display order of well-known detail keys. Other keys
// follow in lexical order.
var DetailPriority = []string{
	"Sport", "Total Time", "Distance", "Maximum Speed",
	"Average Heart Rate", "Maximum Heart Rate", "Calories",
	"Start Time", "Intensity", "Notes",
}

// Describe renders s into a Frame. It is pure: the same State always yields
// the same Frame.
func Describe(s State) Frame {
	f := Frame{
		Mode:         s.Mode,
		SelectedID:   s.SelectedID,
		SelectedName: s.SelectedName,
		Units:        s.Units,
		SpeedUnit:    s.Units.SpeedUnit(),
		DistanceUnit: s.Units.DistanceUnit(),
		Smoothing:    s.Smoothing,
		Smoothings:   smoothingLevels(s.Smoothing),
		Error:        s.Error,
		Loading:      s.Loading(),
	}
	for _, m := range Modes {
		f.Tabs = append(f.Tabs, Tab{Mode: m, Label: tabLabels[m], Active: m == s.Mode})
	}

	switch s.Mode {
	case ModeChart:
		describeChart(s, &f)
	case ModeCalendar:
		describeCalendar(s, &f)
	case ModeProgress:
		describeProgress(s, &f)
	}
	return f
}

func describeChart(s State, f *Frame) {
	for _, a := range s.Activities {
		f.Activities = append(f.Activities, Option{ID: a.ID, Name: a.DisplayName, Selected: a.ID == s.SelectedID})
	}
	if s.SelectedID == "" {
		f.Empty = NoSelection
		return
	}
	if s.Session != nil {
		f.Charts = append(f.Charts, sessionChart(*s.Session, s.Units, s.settings.WarmupSamples))
	}
	if s.Details != nil {
		if rows := DetailRows(s.Details.Details, s.Units); len(rows) > 0 {
			f.Details = &Panel{Title: "Activity Details", Open: s.DetailsOpen, Rows: rows}
		}
	}
}

// describeCalendar draws the month on screen. While a different month is
// loading or after it failed, that is still the held month.
func describeCalendar(s State, f *Frame) {
	cursor := s.Cursor
	if s.Month != nil {
		cursor = calendar.Cursor{Year: s.Month.Year, Month: s.Month.Month}
	}
	today := s.Today
	if today.IsZero() {
		today = time.Date(cursor.Year, cursor.Month, 1, 0, 0, 0, 0, time.UTC)
	}
	cv := &CalendarView{
		Title:    cursor.Title(),
		Year:     cursor.Year,
		Month:    int(cursor.Month),
		Years:    calendar.YearOptions(today),
		Weekdays: calendar.WeekdayNames[:],
	}
	for _, c := range calendar.Grid(cursor.Year, cursor.Month) {
		cell := DayCell{Blank: c.Blank, Day: c.Day, Date: c.Date}
		if !c.Blank && s.Month != nil {
			if b, ok := s.Month.Bucket(c.Date); ok {
				cell.Sessions = len(b.Sessions)
				if s.Month.Extrema != nil {
					if spec, ok := dayChart(b, *s.Month.Extrema, s.Units, s.settings.CompactPoints); ok {
						cell.Surface = spec.Surface
						cell.Tip = spec.Click.Tip
						f.Charts = append(f.Charts, spec)
					}
				}
			}
		}
		cv.Cells = append(cv.Cells, cell)
	}
	f.Calendar = cv
}

func describeProgress(s State, f *Frame) {
	if s.Progress == nil {
		return
	}
	if len(s.Progress.Points) == 0 {
		f.Empty = NoProgressData
		return
	}
	f.Charts = append(f.Charts, progressChart(*s.Progress, s.Units))
	f.Summary = &Panel{Title: "Progress Summary", Open: s.SummaryOpen, Rows: s.Progress.Totals.Rows(s.Units)}
}

// DetailRows orders and formats a detail map. Priority keys come first and
// are skipped when empty; the rest follow sorted by label.
func DetailRows(details model.Details, sys units.System) []Row {
	var rows []Row
	seen := make(map[string]bool, len(DetailPriority))
	for _, key := range DetailPriority {
		seen[key] = true
		v, ok := details[key]
		if !ok || blank(v) {
			continue
		}
		rows = append(rows, Row{Label: key, Value: sys.FormatDetail(key, v)})
	}
	rest := make([]string, 0, len(details))
	for k := range details {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		rows = append(rows, Row{Label: k, Value: sys.FormatDetail(k, details[k])})
	}
	return rows
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case bool:
		return !x
	}
	return false
}

func smoothingLevels(current int) []int {
	levels := append([]int(nil), SmoothingLevels...)
	for _, l := range levels {
		if l == current {
			return levels
		}
	}
	levels = append(levels, current)
	sort.Ints(levels)
	return levels
}

package view

// ChartKind is one of the three chart shapes.
type ChartKind string

// Chart shapes.
const (
	ChartSession  ChartKind = "session"
	ChartDay      ChartKind = "day"
	ChartProgress ChartKind = "progress"
)

// Surface ids for the single-chart views. Day charts use DaySurface.
const (
	SessionSurface  = "session-chart"
	ProgressSurface = "progress-chart"
)

// DaySurface is the surface id of a calendar day chart.
func DaySurface(date string) string { return "day-" + date }

// Series is one plotted line. Values are already converted and sampled;
// nil values are gaps.
type Series struct {
	Name   string
	Values []*float64
	Axis   int
	Color  string
}

// Axis is one value axis.
type Axis struct {
	Name     string
	Min      *float64
	Max      *float64
	Visible  bool
	Position string // "left" or "right"
	Color    string
}

// Guide is a horizontal reference line drawn on a series' axis.
type Guide struct {
	Series int
	Value  float64
	Label  string
}

// ClickKind says where a click on the chart navigates.
type ClickKind string

// Click targets.
const (
	ClickNone     ClickKind = ""
	ClickOnDay    ClickKind = "day"
	ClickProgress ClickKind = "progress"
)

// Click is the navigation bound to a chart. ClickOnDay charts navigate to
// Date; ClickProgress charts navigate by point index.
type Click struct {
	Kind ClickKind
	Date string
	Tip  string
}

// ChartSpec fully describes one chart. Renderers draw it as is.
type ChartSpec struct {
	Surface string
	Kind    ChartKind
	Title   string
	XName   string
	Labels  []string
	Series  []Series
	Axes    []Axis
	Guides  []Guide
	Legend  bool
	Tooltip bool
	// Tips are extra tooltip lines per x index.
	Tips  [][]string
	Click Click
}

// Series colours.
const (
	ColorSpeed     = "#ff6b6b"
	ColorIncline   = "#4ecdc4"
	ColorHeartRate = "#45b7d1"
	ColorAvgHR     = "#ffa726"
)

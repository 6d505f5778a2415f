// Package progress turns the progress_data response into ordered
// session-to-session points with run totals.
package progress

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/sampling"
	"github.com/okian/tcxview/internal/domain/units"
)

// ErrMisaligned is returned by FromResponse when the response arrays have
// different lengths.
var ErrMisaligned = errors.New("progress arrays misaligned")

// Point is one session on the progress trend.
type Point struct {
	Date       string
	AvgSpeed   float64 // km/h
	AvgIncline float64
	// AvgHeartRate is nil when the session has no heart-rate sensor data.
	AvgHeartRate *float64
	SessionID    model.ID
	Sport        string
	Distance     float64 // km
	Duration     float64 // minutes
	Notes        string
}

// Totals summarise every point of one fetch.
type Totals struct {
	Count    int
	Distance float64 // km
	Duration float64 // minutes
}

// Progress is the aggregated trend.
type Progress struct {
	Points []Point
	Totals Totals
}

// FromResponse validates alignment, orders points ascending by date when
// every label is a date and computes totals.
func FromResponse(data model.ProgressData) (Progress, error) {
	if err := data.Validate(); err != nil {
		return Progress{}, fmt.Errorf("%w: %v", ErrMisaligned, err)
	}
	points := make([]Point, len(data.Labels))
	for i, label := range data.Labels {
		info := data.ActivityInfo[i]
		p := Point{
			Date:       label,
			AvgSpeed:   data.AvgSpeed[i],
			AvgIncline: data.AvgIncline[i],
			SessionID:  info.ID,
			Sport:      info.Sport,
			Distance:   info.Distance,
			Duration:   info.Duration,
			Notes:      info.Notes,
		}
		if hr := data.AvgHeartRate[i]; hr > 0 {
			p.AvgHeartRate = model.Float(hr)
		}
		points[i] = p
	}
	Sort(points)
	return Progress{Points: points, Totals: Total(points)}, nil
}

// PointFromSession averages a session's samples. Heart rate averages only
// valid samples.
func PointFromSession(s model.Session) Point {
	p := Point{
		Date:       s.Start.Format("2006-01-02"),
		AvgSpeed:   mean(s.Speed),
		AvgIncline: mean(s.Incline),
		SessionID:  s.ID,
	}
	if hr := mean(sampling.Valid(s.HeartRate)); hr > 0 {
		p.AvgHeartRate = model.Float(hr)
	}
	return p
}

// Sort orders points ascending by date, keeping input order for equal
// dates. If any label is not a recognised date the service order is kept.
func Sort(points []Point) {
	keys := make(map[string]time.Time, len(points))
	for _, p := range points {
		t, ok := parseDate(p.Date)
		if !ok {
			return
		}
		keys[p.Date] = t
	}
	sort.SliceStable(points, func(i, j int) bool {
		return keys[points[i].Date].Before(keys[points[j].Date])
	})
}

// Total sums counts, distance and duration over points.
func Total(points []Point) Totals {
	t := Totals{Count: len(points)}
	for _, p := range points {
		t.Distance += p.Distance
		t.Duration += p.Duration
	}
	return t
}

// HeartRateRange returns the extrema over non-nil heart-rate averages.
// ok is false when no point carries heart rate, in which case the series
// is omitted from the chart.
func HeartRateRange(points []Point) (lo, hi float64, ok bool) {
	var hr []float64
	for _, p := range points {
		if p.AvgHeartRate != nil {
			hr = append(hr, *p.AvgHeartRate)
		}
	}
	if len(hr) == 0 {
		return 0, 0, false
	}
	lo, hi = sampling.MinMax(hr)
	return lo, hi, true
}

// Row is one label/value line of the summary panel.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rows renders the totals in the given unit system.
func (t Totals) Rows(sys units.System) []Row {
	return []Row{
		{Label: "Total Activities", Value: strconv.Itoa(t.Count)},
		{Label: "Total Distance", Value: fmt.Sprintf("%.2f %s", sys.ConvertDistance(t.Distance), sys.DistanceUnit())},
		{Label: "Total Duration", Value: FormatDuration(t.Duration)},
	}
}

// FormatDuration renders minutes as "H hrs M min", minutes to one decimal.
func FormatDuration(minutes float64) string {
	minutes = math.Round(minutes*10) / 10
	hrs := math.Floor(minutes / 60)
	mins := math.Round(math.Mod(minutes, 60)*10) / 10
	return fmt.Sprintf("%d hrs %s min", int(hrs), strconv.FormatFloat(mins, 'f', -1, 64))
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDate(label string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

package view

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/progress"
	"github.com/okian/tcxview/internal/domain/sampling"
	"github.com/okian/tcxview/internal/domain/units"
)

const (
	defaultSessionTitle = "Activity Metrics Over Time"
	progressTitle       = "Training Progress Over Time"
)

func sessionChart(held SessionData, sys units.System, warmup int) ChartSpec {
	d := held.Data
	labels := make([]string, len(d.Labels))
	for i, sec := range d.Labels {
		labels[i] = clock(sec)
	}
	hr := make([]*float64, len(d.HeartRate))
	for i, v := range d.HeartRate {
		if v != nil && *v > 0 {
			hr[i] = ptr(*v)
		}
	}

	title := held.Name
	if title == "" {
		title = defaultSessionTitle
	}
	spec := ChartSpec{
		Surface: SessionSurface,
		Kind:    ChartSession,
		Title:   title,
		XName:   "Time (mm:ss)",
		Labels:  labels,
		Series: []Series{
			{Name: fmt.Sprintf("Speed (%s)", sys.SpeedUnit()), Values: values(sys.ConvertSpeeds(d.Speed)), Axis: 0, Color: ColorSpeed},
			{Name: "Incline (%)", Values: values(d.Incline), Axis: 1, Color: ColorIncline},
			{Name: "Heart Rate (bpm)", Values: hr, Axis: 2, Color: ColorHeartRate},
		},
		Axes: []Axis{
			{Name: fmt.Sprintf("Speed (%s)", sys.SpeedUnit()), Min: ptr(0), Visible: true, Position: "left", Color: ColorSpeed},
			{Name: "Incline (%)", Visible: true, Position: "right", Color: ColorIncline},
			{Name: "Heart Rate (bpm)", Visible: false, Position: "right", Color: ColorHeartRate},
		},
		Legend:  true,
		Tooltip: true,
	}
	lo, hi := sampling.RobustExtrema(d.HeartRate, warmup)
	if lo > 0 || hi > 0 {
		spec.Guides = []Guide{
			{Series: 2, Value: hi, Label: fmt.Sprintf("Max HR: %d bpm", int(math.Round(hi)))},
			{Series: 2, Value: lo, Label: fmt.Sprintf("Min HR: %d bpm", int(math.Round(lo)))},
		}
	}
	return spec
}

// dayChart concatenates the stride-sampled series of every session of the
// day. ok is false when the day has no samples to draw.
func dayChart(b calendar.Bucket, ext calendar.Extrema, sys units.System, target int) (ChartSpec, bool) {
	var speed, incline []*float64
	for _, s := range b.Sessions {
		stride := sampling.Stride(len(s.Speed), target)
		for _, v := range sampling.Sample(s.Speed, stride) {
			speed = append(speed, ptr(sys.ConvertSpeed(v)))
		}
		for _, v := range sampling.Sample(s.Incline, stride) {
			incline = append(incline, ptr(v))
		}
	}
	if len(speed) == 0 {
		return ChartSpec{}, false
	}
	labels := make([]string, len(speed))
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}

	lo := math.Min(sys.ConvertSpeed(ext.MinSpeed), ext.MinIncline)
	hi := math.Max(sys.ConvertSpeed(ext.MaxSpeed), ext.MaxIncline)
	n := len(b.Sessions)
	noun := "activity"
	if n > 1 {
		noun = "activities"
	}
	return ChartSpec{
		Surface: DaySurface(b.Date),
		Kind:    ChartDay,
		Labels:  labels,
		Series: []Series{
			{Name: "Speed", Values: speed, Color: ColorSpeed},
			{Name: "Incline", Values: incline, Color: ColorIncline},
		},
		Axes:   []Axis{{Min: ptr(lo), Max: ptr(hi)}},
		Guides: []Guide{{Series: 0, Value: 0}, {Series: 1, Value: 0}},
		Click: Click{
			Kind: ClickOnDay,
			Date: b.Date,
			Tip:  fmt.Sprintf("Click to view detailed chart (%d %s)", n, noun),
		},
	}, true
}

func progressChart(p progress.Progress, sys units.System) ChartSpec {
	n := len(p.Points)
	labels := make([]string, n)
	speed := make([]*float64, n)
	incline := make([]*float64, n)
	hr := make([]*float64, n)
	tips := make([][]string, n)
	for i, pt := range p.Points {
		labels[i] = pt.Date
		speed[i] = ptr(sys.ConvertSpeed(pt.AvgSpeed))
		incline[i] = ptr(pt.AvgIncline)
		if pt.AvgHeartRate != nil {
			hr[i] = ptr(*pt.AvgHeartRate)
		}
		tips[i] = pointTip(pt, sys)
	}
	spec := ChartSpec{
		Surface: ProgressSurface,
		Kind:    ChartProgress,
		Title:   progressTitle,
		XName:   "Date",
		Labels:  labels,
		Series: []Series{
			{Name: fmt.Sprintf("Average Speed (%s)", sys.SpeedUnit()), Values: speed, Axis: 0, Color: ColorSpeed},
			{Name: "Average Incline (%)", Values: incline, Axis: 1, Color: ColorIncline},
		},
		Axes: []Axis{
			{Name: fmt.Sprintf("Speed (%s)", sys.SpeedUnit()), Visible: true, Position: "left", Color: ColorSpeed},
			{Name: "Incline (%)", Visible: true, Position: "right", Color: ColorIncline},
		},
		Legend:  true,
		Tooltip: true,
		Tips:    tips,
		Click:   Click{Kind: ClickProgress},
	}
	if lo, hi, ok := progress.HeartRateRange(p.Points); ok {
		spec.Series = append(spec.Series, Series{Name: "Average Heart Rate (bpm)", Values: hr, Axis: 2, Color: ColorAvgHR})
		spec.Axes = append(spec.Axes, Axis{Name: "Heart Rate (bpm)", Min: ptr(lo), Max: ptr(hi), Position: "right", Color: ColorAvgHR})
	}
	return spec
}

// pointTip is the session info shown under a progress point's values.
func pointTip(pt progress.Point, sys units.System) []string {
	notes := pt.Notes
	if notes == "" {
		notes = "No notes"
	}
	return []string{
		"Activity: " + notes,
		"Sport: " + pt.Sport,
		fmt.Sprintf("Distance: %.2f %s", sys.ConvertDistance(pt.Distance), sys.DistanceUnit()),
		"Duration: " + strconv.FormatFloat(pt.Duration, 'f', -1, 64) + " min",
	}
}

// clock renders elapsed seconds as mm:ss.
func clock(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func values(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i, x := range xs {
		out[i] = ptr(x)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

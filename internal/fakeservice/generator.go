// Package fakeservice generates a deterministic exercise history and serves
// it over the same HTTP endpoints as the real data service.
package fakeservice

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/progress"
	"github.com/okian/tcxview/internal/domain/sampling"
)

// Generation defaults.
const (
	DefaultSeed     = 42
	DefaultSessions = 120
	DefaultDays     = 365

	sampleInterval = 5 // seconds between samples
	minSamples     = 60
	maxSamples     = 360
	firstID        = 1000
	notesLimit     = 30
)

var sports = map[string]float64{
	"Running": 10.5,
	"Walking": 5.5,
	"Hiking":  4.2,
}

var sportNames = []string{"Running", "Walking", "Hiking"}

var intensities = []string{"Active", "Resting"}

// Config controls the generated history.
type Config struct {
	Seed     int64
	Sessions int
	Days     int       // history spans this many days ending at Now
	Now      time.Time // defaults to time.Now
}

func (c Config) normalized() Config {
	if c.Sessions <= 0 {
		c.Sessions = DefaultSessions
	}
	if c.Days <= 0 {
		c.Days = DefaultDays
	}
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	c.Now = c.Now.UTC()
	return c
}

// Session is one generated activity. HeartRate zeros mark samples without
// a reading.
type Session struct {
	ID        model.ID
	Sport     string
	Notes     string
	Start     time.Time
	Labels    []float64
	Speed     []float64
	Incline   []float64
	HeartRate []float64
	Calories  int
}

// DisplayName is "<start> - <sport>" with the notes appended, truncated.
func (s *Session) DisplayName() string {
	name := s.Start.Format("2006-01-02 15:04") + " - " + s.Sport
	switch {
	case s.Notes == "":
	case len(s.Notes) > notesLimit:
		name += " (" + s.Notes[:notesLimit] + "...)"
	default:
		name += " (" + s.Notes + ")"
	}
	return name
}

// Distance is in km.
func (s *Session) Distance() float64 {
	d := 0.0
	for _, v := range s.Speed {
		d += v * sampleInterval / 3600
	}
	return d
}

// Duration is in minutes.
func (s *Session) Duration() float64 {
	return float64(len(s.Labels)*sampleInterval) / 60
}

// Details is the detail panel map, shaped like the real service's.
func (s *Session) Details() model.Details {
	_, maxSpeed := sampling.MinMax(s.Speed)
	avgHR, maxHR := heartRateStats(s.HeartRate)
	d := model.Details{
		"Sport":          s.Sport,
		"Total Time":     clock(len(s.Labels) * sampleInterval),
		"Distance":       fmt.Sprintf("%.2f km", s.Distance()),
		"Maximum Speed":  fmt.Sprintf("%.2f km/h", maxSpeed),
		"Calories":       s.Calories,
		"Start Time":     s.Start.Format(time.RFC3339),
		"Intensity":      intensities[s.Calories%len(intensities)],
		"Notes":          s.Notes,
		"Samples":        len(s.Labels),
		"Sample Seconds": sampleInterval,
	}
	if avgHR > 0 {
		d["Average Heart Rate"] = math.Round(avgHR)
		d["Maximum Heart Rate"] = maxHR
	}
	return d
}

// Dataset is a generated history, newest session first.
type Dataset struct {
	sessions []*Session
	byID     map[model.ID]*Session
}

// Generate builds a history from cfg. The same config always yields the
// same history.
func Generate(cfg Config) *Dataset {
	cfg = cfg.normalized()
	f := gofakeit.New(cfg.Seed)
	midnight := time.Date(cfg.Now.Year(), cfg.Now.Month(), cfg.Now.Day(), 0, 0, 0, 0, time.UTC)

	ds := &Dataset{byID: make(map[model.ID]*Session, cfg.Sessions)}
	for i := 0; i < cfg.Sessions; i++ {
		start := midnight.
			AddDate(0, 0, -f.IntRange(0, cfg.Days-1)).
			Add(time.Duration(f.IntRange(5, 20))*time.Hour + time.Duration(f.IntRange(0, 59))*time.Minute)

		s := generateSession(f, model.ID(strconv.Itoa(firstID+i)), start)
		ds.sessions = append(ds.sessions, s)
		ds.byID[s.ID] = s
	}
	sort.SliceStable(ds.sessions, func(i, j int) bool {
		return ds.sessions[i].Start.After(ds.sessions[j].Start)
	})
	return ds
}

func generateSession(f *gofakeit.Faker, id model.ID, start time.Time) *Session {
	sport := f.RandomString(sportNames)
	base := sports[sport]
	n := f.IntRange(minSamples, maxSamples)

	s := &Session{
		ID:        id,
		Sport:     sport,
		Start:     start,
		Labels:    make([]float64, n),
		Speed:     make([]float64, n),
		Incline:   make([]float64, n),
		HeartRate: make([]float64, n),
	}
	if f.Bool() {
		s.Notes = f.Sentence(f.IntRange(2, 9))
	}

	speed, incline := base, float64(f.IntRange(0, 4))
	hr := 85.0
	for i := 0; i < n; i++ {
		speed = clamp(speed+f.Float64Range(-0.4, 0.4), base*0.6, base*1.4)
		incline = clamp(incline+f.Float64Range(-0.5, 0.5), 0, 12)
		target := 70 + speed*7 + incline*3
		hr += (target - hr) * 0.08

		s.Labels[i] = float64(i * sampleInterval)
		s.Speed[i] = round1(speed)
		s.Incline[i] = round1(incline)
		if f.Float64Range(0, 1) > 0.03 {
			s.HeartRate[i] = math.Round(hr + f.Float64Range(-3, 3))
		}
	}
	s.Calories = int(s.Distance() * 65)
	return s
}

// Sessions returns every session, newest first.
func (d *Dataset) Sessions() []*Session { return d.sessions }

// Session looks up one session.
func (d *Dataset) Session(id model.ID) (*Session, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// Activities is the body of GET /api/activities.
func (d *Dataset) Activities() []model.ActivitySummary {
	out := make([]model.ActivitySummary, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, model.ActivitySummary{ID: s.ID, DisplayName: s.DisplayName()})
	}
	return out
}

// ActivityData is the body of GET /api/activity_data/{tcxid}, smoothed by
// a centred moving average of the given window.
func (d *Dataset) ActivityData(id model.ID, smoothing int) (model.ActivityData, bool) {
	s, ok := d.byID[id]
	if !ok {
		return model.ActivityData{}, false
	}
	hr := smooth(s.HeartRate, smoothing)
	out := model.ActivityData{
		Labels:    append([]float64(nil), s.Labels...),
		Speed:     smooth(s.Speed, smoothing),
		Incline:   smooth(s.Incline, smoothing),
		HeartRate: make([]*float64, len(hr)),
	}
	for i, v := range hr {
		v := v
		out.HeartRate[i] = &v
	}
	return out, true
}

// MonthlyData is the body of GET /api/monthly_data/{year}/{month}.
func (d *Dataset) MonthlyData(year int, month time.Month) model.MonthlyData {
	out := model.MonthlyData{Activities: map[string][]model.Session{}}
	var speeds, inclines []float64
	for i := len(d.sessions) - 1; i >= 0; i-- {
		s := d.sessions[i]
		if s.Start.Year() != year || s.Start.Month() != month {
			continue
		}
		key := s.Start.Format("2006-01-02")
		ms := s.model()
		ms.Details = s.Details()
		out.Activities[key] = append(out.Activities[key], ms)
		speeds = append(speeds, s.Speed...)
		inclines = append(inclines, s.Incline...)
	}
	if len(speeds) > 0 {
		loS, hiS := sampling.MinMax(speeds)
		loI, hiI := sampling.MinMax(inclines)
		out.MinValues = &model.Pair{Speed: loS, Incline: loI}
		out.MaxValues = &model.Pair{Speed: hiS, Incline: hiI}
	}
	return out
}

// ProgressData is the body of GET /api/progress_data, oldest first.
func (d *Dataset) ProgressData() model.ProgressData {
	var out model.ProgressData
	for i := len(d.sessions) - 1; i >= 0; i-- {
		s := d.sessions[i]
		pt := progress.PointFromSession(s.model())
		avgHR := 0.0
		if pt.AvgHeartRate != nil {
			avgHR = math.Round(*pt.AvgHeartRate)
		}
		out.Labels = append(out.Labels, pt.Date)
		out.AvgSpeed = append(out.AvgSpeed, round1(pt.AvgSpeed))
		out.AvgIncline = append(out.AvgIncline, round1(pt.AvgIncline))
		out.AvgHeartRate = append(out.AvgHeartRate, avgHR)
		out.ActivityInfo = append(out.ActivityInfo, model.ActivityInfo{
			ID:       s.ID,
			Sport:    s.Sport,
			Distance: math.Round(s.Distance()*100) / 100,
			Duration: math.Round(s.Duration()*10) / 10,
			Notes:    s.Notes,
		})
	}
	return out
}

// model is the session as the service sends it; zero heart-rate samples
// become null.
func (s *Session) model() model.Session {
	hr := make([]*float64, len(s.HeartRate))
	for j, v := range s.HeartRate {
		if v > 0 {
			hr[j] = model.Float(v)
		}
	}
	return model.Session{
		ID:          s.ID,
		DisplayName: s.DisplayName(),
		Start:       model.Timestamp{Time: s.Start},
		Speed:       s.Speed,
		Incline:     s.Incline,
		HeartRate:   hr,
	}
}

// smooth is a centred moving average over window samples. Zero heart-rate
// readings stay zero and are left out of their neighbours' averages.
func smooth(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	if window <= 1 {
		copy(out, xs)
		return out
	}
	half := window / 2
	for i := range xs {
		if xs[i] == 0 {
			continue
		}
		sum, n := 0.0, 0
		for j := max(0, i-half); j <= min(len(xs)-1, i+half); j++ {
			if xs[j] != 0 {
				sum += xs[j]
				n++
			}
		}
		out[i] = round1(sum / float64(n))
	}
	return out
}

func heartRateStats(hr []float64) (avg, peak float64) {
	sum, n := 0.0, 0
	for _, v := range hr {
		if v > 0 {
			sum += v
			n++
			peak = math.Max(peak, v)
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), peak
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// Package calendar groups sessions by calendar day for the month view and
// lays out the Sunday-first month grid.
package calendar

import (
	"sort"
	"time"

	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/sampling"
)

// DateLayout is the bucket key format.
const DateLayout = "2006-01-02"

// Bucket holds the sessions that started on one date, in arrival order.
type Bucket struct {
	Date     string
	Sessions []model.Session
}

// Extrema are the month-wide speed and incline bounds shared by every day
// chart of the month so that days can be compared visually.
type Extrema struct {
	MinSpeed   float64
	MaxSpeed   float64
	MinIncline float64
	MaxIncline float64
}

// Month is one aggregated calendar month.
type Month struct {
	Year    int
	Month   time.Month
	Buckets []Bucket
	// Extrema is nil when the month holds no samples.
	Extrema *Extrema
}

// Aggregate buckets sessions by the calendar date of their start time.
// Buckets are ordered by date; sessions inside a bucket keep input order
// and are never deduplicated.
func Aggregate(sessions []model.Session) ([]Bucket, *Extrema) {
	index := make(map[string]int)
	var buckets []Bucket
	for _, s := range sessions {
		key := s.Start.Format(DateLayout)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Date: key})
		}
		buckets[i].Sessions = append(buckets[i].Sessions, s)
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets, extrema(sessions)
}

// FromMonthly builds a Month from the monthly_data response. Sessions
// listed under a key that is not a date are bucketed by their start time.
// Extrema come from the samples; the service-reported bounds are used only
// when the month has no samples and the service sent both of them.
func FromMonthly(year int, month time.Month, data model.MonthlyData) Month {
	keys := make([]string, 0, len(data.Activities))
	for k := range data.Activities {
		if len(data.Activities[k]) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	m := Month{Year: year, Month: month}
	var all, loose []model.Session
	for _, k := range keys {
		sessions := data.Activities[k]
		all = append(all, sessions...)
		if _, err := time.Parse(DateLayout, k); err != nil {
			for _, s := range sessions {
				if !s.Start.IsZero() {
					loose = append(loose, s)
				}
			}
			continue
		}
		m.Buckets = append(m.Buckets, Bucket{Date: k, Sessions: append([]model.Session(nil), sessions...)})
	}
	if len(loose) > 0 {
		extra, _ := Aggregate(loose)
		m.merge(extra)
	}

	m.Extrema = extrema(all)
	if m.Extrema == nil && data.MinValues != nil && data.MaxValues != nil && len(all) > 0 {
		m.Extrema = &Extrema{
			MinSpeed:   data.MinValues.Speed,
			MaxSpeed:   data.MaxValues.Speed,
			MinIncline: data.MinValues.Incline,
			MaxIncline: data.MaxValues.Incline,
		}
	}
	return m
}

// merge appends buckets into m, joining equal dates and keeping date order.
func (m *Month) merge(buckets []Bucket) {
	for _, b := range buckets {
		joined := false
		for i := range m.Buckets {
			if m.Buckets[i].Date == b.Date {
				m.Buckets[i].Sessions = append(m.Buckets[i].Sessions, b.Sessions...)
				joined = true
				break
			}
		}
		if !joined {
			m.Buckets = append(m.Buckets, b)
		}
	}
	sort.SliceStable(m.Buckets, func(i, j int) bool { return m.Buckets[i].Date < m.Buckets[j].Date })
}

// Bucket returns the bucket for date, if any.
func (m Month) Bucket(date string) (Bucket, bool) {
	for _, b := range m.Buckets {
		if b.Date == date {
			return b, true
		}
	}
	return Bucket{}, false
}

// Latest returns the last session of date in arrival order. Clicking a day
// opens this session.
func (m Month) Latest(date string) (model.Session, bool) {
	b, ok := m.Bucket(date)
	if !ok || len(b.Sessions) == 0 {
		return model.Session{}, false
	}
	return b.Sessions[len(b.Sessions)-1], true
}

// Len is the number of sessions in the month.
func (m Month) Len() int {
	n := 0
	for _, b := range m.Buckets {
		n += len(b.Sessions)
	}
	return n
}

func extrema(sessions []model.Session) *Extrema {
	var speed, incline []float64
	for _, s := range sessions {
		speed = append(speed, s.Speed...)
		incline = append(incline, s.Incline...)
	}
	if len(speed) == 0 && len(incline) == 0 {
		return nil
	}
	e := &Extrema{}
	e.MinSpeed, e.MaxSpeed = sampling.MinMax(speed)
	e.MinIncline, e.MaxIncline = sampling.MinMax(incline)
	return e
}

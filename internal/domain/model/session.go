// Package model contains the data shapes exchanged with the activity data
// service and passed between domain packages.
package model

import (
	"fmt"
)

// ActivitySummary is one entry of GET /api/activities.
type ActivitySummary struct {
	ID          ID     `json:"tcxid"`
	DisplayName string `json:"display_name"`
}

// ActivityData is the time series of one session as served by
// GET /api/activity_data/{tcxid}.
type ActivityData struct {
	Labels    []float64  `json:"labels"` // elapsed seconds
	Speed     []float64  `json:"speed"`
	Incline   []float64  `json:"incline"`
	HeartRate []*float64 `json:"heart_rate"`
}

// Len returns the number of samples.
func (d ActivityData) Len() int { return len(d.Labels) }

// Validate checks that every series has one value per label.
func (d ActivityData) Validate() error {
	n := len(d.Labels)
	if len(d.Speed) != n || len(d.Incline) != n || len(d.HeartRate) != n {
		return fmt.Errorf("series lengths differ: labels=%d speed=%d incline=%d heart_rate=%d",
			n, len(d.Speed), len(d.Incline), len(d.HeartRate))
	}
	return nil
}

// Details maps a display label to a string or number.
type Details map[string]any

// Session is one recorded activity with its telemetry. Arrays are index
// aligned; index is the elapsed-time sample.
type Session struct {
	ID          ID             `json:"tcxid"`
	DisplayName string         `json:"display_name,omitempty"`
	Start       Timestamp      `json:"start_time"`
	Speed       []float64      `json:"speed"`
	Incline     []float64      `json:"incline"`
	HeartRate   []*float64     `json:"heart_rate,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// Pair is a speed/incline couple used for extrema.
type Pair struct {
	Speed   float64 `json:"speed"`
	Incline float64 `json:"incline"`
}

// MonthlyData is the body of GET /api/monthly_data/{year}/{month}.
type MonthlyData struct {
	Activities map[string][]Session `json:"activities"`
	MinValues  *Pair                `json:"min_values"`
	MaxValues  *Pair                `json:"max_values"`
}

// ActivityInfo describes the session behind one progress point.
type ActivityInfo struct {
	ID       ID      `json:"tcxid"`
	Sport    string  `json:"sport"`
	Distance float64 `json:"distance"` // km
	Duration float64 `json:"duration"` // minutes
	Notes    string  `json:"notes"`
}

// ProgressData is the body of GET /api/progress_data.
type ProgressData struct {
	Labels       []string       `json:"labels"`
	AvgSpeed     []float64      `json:"avg_speed"`
	AvgIncline   []float64      `json:"avg_incline"`
	AvgHeartRate []float64      `json:"avg_heartrate"`
	ActivityInfo []ActivityInfo `json:"activity_info"`
}

// Validate checks that every array is index aligned with Labels.
func (p ProgressData) Validate() error {
	n := len(p.Labels)
	if len(p.AvgSpeed) != n || len(p.AvgIncline) != n || len(p.AvgHeartRate) != n || len(p.ActivityInfo) != n {
		return fmt.Errorf("arrays not aligned: labels=%d avg_speed=%d avg_incline=%d avg_heartrate=%d activity_info=%d",
			n, len(p.AvgSpeed), len(p.AvgIncline), len(p.AvgHeartRate), len(p.ActivityInfo))
	}
	return nil
}

// Float returns a pointer to v; handy for heart-rate literals.
func Float(v float64) *float64 { return &v }

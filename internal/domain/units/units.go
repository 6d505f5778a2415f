// Package units converts canonical metric telemetry into the display unit
// system. Conversions are pure: inputs are never modified, and every render
// converts again from the metric values.
package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KmToMiles converts both km and km/h to miles and mph.
const KmToMiles = 0.621371

// System is a display unit system.
type System string

// Supported systems.
const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// ErrUnknownSystem is returned by ParseSystem.
var ErrUnknownSystem = errors.New("unknown unit system")

// ParseSystem maps a user-supplied name to a System.
func ParseSystem(s string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSystem, s)
	}
}

// ConvertSpeed converts km/h to the system's speed unit.
func (s System) ConvertSpeed(kmh float64) float64 {
	if s == Imperial {
		return kmh * KmToMiles
	}
	return kmh
}

// ConvertDistance converts km to the system's distance unit.
func (s System) ConvertDistance(km float64) float64 {
	if s == Imperial {
		return km * KmToMiles
	}
	return km
}

// SpeedUnit is "mph" or "km/h".
func (s System) SpeedUnit() string {
	if s == Imperial {
		return "mph"
	}
	return "km/h"
}

// DistanceUnit is "miles" or "km".
func (s System) DistanceUnit() string {
	if s == Imperial {
		return "miles"
	}
	return "km"
}

// ConvertSpeeds returns a converted copy of xs.
func (s System) ConvertSpeeds(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = s.ConvertSpeed(x)
	}
	return out
}

// FormatDetail rewrites detail-panel values that carry a metric unit.
// "Distance" values containing "km" and "Maximum Speed" values containing
// "km/h" are converted with two decimals; anything else is returned as
// fmt prints it.
func (s System) FormatDetail(label string, value any) string {
	text := fmt.Sprint(value)
	switch label {
	case "Distance":
		if str, ok := value.(string); ok && strings.Contains(str, "km") {
			if n, ok := leadingNumber(str); ok {
				return fmt.Sprintf("%.2f %s", s.ConvertDistance(n), s.DistanceUnit())
			}
		}
	case "Maximum Speed":
		if str, ok := value.(string); ok && strings.Contains(str, "km/h") {
			if n, ok := leadingNumber(str); ok {
				return fmt.Sprintf("%.2f %s", s.ConvertSpeed(n), s.SpeedUnit())
			}
		}
	}
	return text
}

// leadingNumber parses the numeric prefix of s, e.g. "12.5 km" -> 12.5.
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	return n, err == nil
}

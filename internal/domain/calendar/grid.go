package calendar

import (
	"strconv"
	"time"
)

// WeekdayNames label the grid columns.
var WeekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Cell is one grid position. Blank cells pad the first week.
type Cell struct {
	Blank bool
	Day   int
	Date  string
}

// Grid lays out a month Sunday-first: one blank cell per weekday before the
// 1st, then one cell per day.
func Grid(year int, month time.Month) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := DaysIn(year, month)
	lead := int(first.Weekday())

	cells := make([]Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for d := 1; d <= days; d++ {
		cells = append(cells, Cell{
			Day:  d,
			Date: time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(DateLayout),
		})
	}
	return cells
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Cursor is the month shown by the calendar view.
type Cursor struct {
	Year  int
	Month time.Month
}

// CursorAt returns the cursor for t's month.
func CursorAt(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Shift moves the cursor by delta months, crossing year boundaries.
func (c Cursor) Shift(delta int) Cursor {
	t := time.Date(c.Year, c.Month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return CursorAt(t)
}

// Valid reports whether the month is in 1..12.
func (c Cursor) Valid() bool {
	return c.Month >= time.January && c.Month <= time.December
}

// Title is e.g. "March 2024".
func (c Cursor) Title() string {
	return c.Month.String() + " " + strconv.Itoa(c.Year)
}

// YearOptions lists the selectable years, from now-5 through now.
func YearOptions(now time.Time) []int {
	years := make([]int, 0, 6)
	for y := now.Year() - 5; y <= now.Year(); y++ {
		years = append(years, y)
	}
	return years
}

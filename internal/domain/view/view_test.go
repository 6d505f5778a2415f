package view_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/internal/domain/units"
	"github.com/okian/tcxview/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func fetches(cmds []view.Command) []view.Fetch {
	var out []view.Fetch
	for _, c := range cmds {
		if f, ok := c.(view.Fetch); ok {
			out = append(out, f)
		}
	}
	return out
}

func renders(cmds []view.Command) int {
	n := 0
	for _, c := range cmds {
		if _, ok := c.(view.Render); ok {
			n++
		}
	}
	return n
}

func fetchFor(cmds []view.Command, t view.Target) (view.Fetch, bool) {
	for _, f := range fetches(cmds) {
		if f.Target == t {
			return f, true
		}
	}
	return view.Fetch{}, false
}

func deliver(s view.State, f view.Fetch, payload any) (view.State, []view.Command) {
	return view.Dispatch(s, view.FetchSucceeded{Target: f.Target, Seq: f.Seq, Request: f.Request, Payload: payload})
}

func activityData(speed ...float64) model.ActivityData {
	d := model.ActivityData{}
	for i, v := range speed {
		d.Labels = append(d.Labels, float64(i*30))
		d.Speed = append(d.Speed, v)
		d.Incline = append(d.Incline, 1)
		d.HeartRate = append(d.HeartRate, model.Float(100+float64(i)))
	}
	return d
}

var activities = []model.ActivitySummary{
	{ID: "A1", DisplayName: "Run 1"},
	{ID: "A2", DisplayName: "Run 2"},
}

// started returns a state with the activities list delivered and the
// commands that delivery produced.
func started() (view.State, []view.Command) {
	s, cmds := view.Dispatch(view.New(view.DefaultSettings()), view.Init{Now: now})
	f, _ := fetchFor(cmds, view.TargetActivities)
	return deliver(s, f, activities)
}

// loaded returns a chart-view state with A1 data and details held.
func loaded() view.State {
	s, cmds := started()
	data, _ := fetchFor(cmds, view.TargetSessionData)
	details, _ := fetchFor(cmds, view.TargetSessionDetails)
	s, _ = deliver(s, data, activityData(10, 12, 14))
	s, _ = deliver(s, details, model.Details{"Sport": "Running", "Distance": "5 km"})
	return s
}

func TestInitAndDefaultSelection(t *testing.T) {
	Convey("Given a fresh engine", t, func() {
		s, cmds := view.Dispatch(view.New(view.DefaultSettings()), view.Init{Now: now})

		Convey("Then init requests the activities list and renders once", func() {
			fs := fetches(cmds)
			So(fs, ShouldHaveLength, 1)
			So(fs[0].Target, ShouldEqual, view.TargetActivities)
			So(renders(cmds), ShouldEqual, 1)
			So(s.Cursor, ShouldResemble, calendar.Cursor{Year: 2024, Month: time.March})
			So(view.Describe(s).Loading, ShouldBeTrue)
		})

		Convey("When the activities list arrives", func() {
			f := fetches(cmds)[0]
			s, cmds = deliver(s, f, activities)

			Convey("Then A1 is selected with exactly one data and one details fetch", func() {
				So(s.SelectedID, ShouldEqual, "A1")
				So(s.SelectedName, ShouldEqual, "Run 1")
				fs := fetches(cmds)
				So(fs, ShouldHaveLength, 2)
				So(fs[0].Target, ShouldEqual, view.TargetSessionData)
				So(fs[0].Request.ID, ShouldEqual, "A1")
				So(fs[0].Request.Smoothing, ShouldEqual, 5)
				So(fs[1].Target, ShouldEqual, view.TargetSessionDetails)
				So(fs[1].Request.ID, ShouldEqual, "A1")
				So(renders(cmds), ShouldEqual, 1)
			})
		})
	})

	Convey("Given an empty activities list", t, func() {
		s, cmds := view.Dispatch(view.New(view.DefaultSettings()), view.Init{Now: now})
		s, cmds = deliver(s, fetches(cmds)[0], []model.ActivitySummary{})

		So(s.SelectedID, ShouldEqual, model.ID(""))
		So(fetches(cmds), ShouldBeEmpty)
		So(view.Describe(s).Empty, ShouldEqual, view.NoSelection)
	})
}

func TestSessionChart(t *testing.T) {
	Convey("Given a loaded session", t, func() {
		s := loaded()
		f := view.Describe(s)

		Convey("Then the chart has three series on three axes", func() {
			So(f.Charts, ShouldHaveLength, 1)
			c := f.Charts[0]
			So(c.Surface, ShouldEqual, view.SessionSurface)
			So(c.Title, ShouldEqual, "Run 1")
			So(c.Labels, ShouldResemble, []string{"00:00", "00:30", "01:00"})
			So(c.Series, ShouldHaveLength, 3)
			So(*c.Series[0].Values[2], ShouldEqual, 14)
			So(c.Axes[2].Visible, ShouldBeFalse)
			So(*c.Axes[0].Min, ShouldEqual, 0)
			So(c.Guides, ShouldHaveLength, 2)
			So(c.Guides[0].Label, ShouldEqual, "Max HR: 102 bpm")
			So(c.Guides[1].Label, ShouldEqual, "Min HR: 100 bpm")
		})

		Convey("Then the details panel is open and ordered", func() {
			So(f.Details, ShouldNotBeNil)
			So(f.Details.Open, ShouldBeTrue)
			So(f.Details.Rows, ShouldResemble, []view.Row{
				{Label: "Sport", Value: "Running"},
				{Label: "Distance", Value: "5.00 km"},
			})
			So(f.Loading, ShouldBeFalse)
		})

		Convey("When the unit system changes", func() {
			s2, cmds := view.Dispatch(s, view.ChangeUnits{System: units.Imperial})
			f2 := view.Describe(s2)

			Convey("Then the held data re-renders converted without a fetch", func() {
				So(fetches(cmds), ShouldBeEmpty)
				So(renders(cmds), ShouldEqual, 1)
				So(*f2.Charts[0].Series[0].Values[0], ShouldAlmostEqual, 10*units.KmToMiles)
				So(f2.Charts[0].Series[0].Name, ShouldEqual, "Speed (mph)")
				So(f2.Details.Rows[1].Value, ShouldEqual, "3.11 miles")
			})

			Convey("Then the canonical data is untouched", func() {
				So(s2.Session.Data.Speed[0], ShouldEqual, 10)
				So(s.Session.Data.Speed[0], ShouldEqual, 10)
			})
		})

		Convey("When the smoothing level changes", func() {
			s2, cmds := view.Dispatch(s, view.ChangeSmoothing{Level: 10})

			Convey("Then only the series is refetched", func() {
				fs := fetches(cmds)
				So(fs, ShouldHaveLength, 1)
				So(fs[0].Target, ShouldEqual, view.TargetSessionData)
				So(fs[0].Request.Smoothing, ShouldEqual, 10)
				So(s2.Smoothing, ShouldEqual, 10)
			})
		})

		Convey("When the details panel is toggled", func() {
			s2, cmds := view.Dispatch(s, view.ToggleDetails{})
			So(renders(cmds), ShouldEqual, 1)
			So(view.Describe(s2).Details.Open, ShouldBeFalse)
		})
	})
}

func TestCalendarNavigation(t *testing.T) {
	Convey("Given the calendar view with a day of two sessions", t, func() {
		s, cmds := view.Dispatch(loaded(), view.SwitchView{Mode: view.ModeCalendar})

		So(s.Session, ShouldBeNil)
		So(s.Details, ShouldBeNil)
		mf, ok := fetchFor(cmds, view.TargetMonth)
		So(ok, ShouldBeTrue)
		So(mf.Request.Cursor, ShouldResemble, calendar.Cursor{Year: 2024, Month: time.March})

		day := "2024-03-05"
		s, _ = deliver(s, mf, model.MonthlyData{Activities: map[string][]model.Session{
			day: {
				{ID: "S1", DisplayName: "Morning", Speed: []float64{8, 9}, Incline: []float64{0, 1}},
				{ID: "S2", DisplayName: "Evening", Speed: []float64{10, 11}, Incline: []float64{2, -1}},
			},
		}})

		Convey("Then the frame has one day chart and empty cells elsewhere", func() {
			f := view.Describe(s)
			So(f.Calendar, ShouldNotBeNil)
			So(f.Calendar.Title, ShouldEqual, "March 2024")
			So(f.Charts, ShouldHaveLength, 1)
			c := f.Charts[0]
			So(c.Surface, ShouldEqual, view.DaySurface(day))
			So(c.Legend, ShouldBeFalse)
			So(c.Tooltip, ShouldBeFalse)
			So(c.Guides, ShouldHaveLength, 2)
			So(*c.Axes[0].Min, ShouldEqual, -1)
			So(*c.Axes[0].Max, ShouldEqual, 11)
			So(c.Click.Kind, ShouldEqual, view.ClickOnDay)
			So(c.Click.Tip, ShouldEqual, "Click to view detailed chart (2 activities)")

			withSessions := 0
			for _, cell := range f.Calendar.Cells {
				if cell.Sessions > 0 {
					withSessions++
					So(cell.Date, ShouldEqual, day)
				}
			}
			So(withSessions, ShouldEqual, 1)
		})

		Convey("When the unit system changes", func() {
			s2, cmds := view.Dispatch(s, view.ChangeUnits{System: units.Imperial})

			Convey("Then the calendar re-renders without a fetch", func() {
				So(fetches(cmds), ShouldBeEmpty)
				So(renders(cmds), ShouldEqual, 1)
				So(*view.Describe(s2).Charts[0].Series[0].Values[0], ShouldAlmostEqual, 8*units.KmToMiles)
			})
		})

		Convey("When the day is clicked", func() {
			s2, cmds := view.Dispatch(s, view.ClickDay{Date: day})

			Convey("Then the last session of the day is opened in the chart view", func() {
				So(s2.Mode, ShouldEqual, view.ModeChart)
				So(s2.SelectedID, ShouldEqual, "S2")
				So(s2.SelectedName, ShouldEqual, "Evening")
				So(s2.Month, ShouldBeNil)
				fs := fetches(cmds)
				So(fs, ShouldHaveLength, 2)
				So(fs[0].Request.ID, ShouldEqual, "S2")
				So(fs[1].Request.ID, ShouldEqual, "S2")
				So(renders(cmds), ShouldEqual, 1)
			})
		})

		Convey("When an empty day is clicked", func() {
			s2, cmds := view.Dispatch(s, view.ClickDay{Date: "2024-03-06"})
			So(cmds, ShouldBeEmpty)
			So(s2.Mode, ShouldEqual, view.ModeCalendar)
		})

		Convey("When the month is shifted", func() {
			s2, cmds := view.Dispatch(s, view.ShiftMonth{Delta: -3})
			f, ok := fetchFor(cmds, view.TargetMonth)
			So(ok, ShouldBeTrue)
			So(f.Request.Cursor, ShouldResemble, calendar.Cursor{Year: 2023, Month: time.December})

			Convey("And the new month fails", func() {
				s3, _ := view.Dispatch(s2, view.FetchFailed{Target: f.Target, Seq: f.Seq, Request: f.Request, Err: errors.New("boom")})

				Convey("Then the rendered month stays with a banner", func() {
					So(s3.Month, ShouldNotBeNil)
					So(s3.Month.Month, ShouldEqual, time.March)
					So(s3.Error, ShouldEqual, "boom")
				})

				Convey("Then title and selectors agree on the held month", func() {
					cv := view.Describe(s3).Calendar
					So(cv.Title, ShouldEqual, "March 2024")
					So(cv.Year, ShouldEqual, 2024)
					So(cv.Month, ShouldEqual, int(time.March))
				})
			})
		})
	})

	Convey("Given an empty month", t, func() {
		s, cmds := view.Dispatch(loaded(), view.SwitchView{Mode: view.ModeCalendar})
		mf, _ := fetchFor(cmds, view.TargetMonth)
		s, _ = deliver(s, mf, model.MonthlyData{})

		f := view.Describe(s)
		So(f.Charts, ShouldBeEmpty)
		So(f.Error, ShouldBeEmpty)
		So(len(f.Calendar.Cells), ShouldBeGreaterThan, 27)
	})
}

func TestViewSwitchIdempotence(t *testing.T) {
	Convey("Given chart, then calendar, then chart for the same session", t, func() {
		s := loaded()
		before := view.Describe(s).Charts

		s, _ = view.Dispatch(s, view.SwitchView{Mode: view.ModeCalendar})
		s, cmds := view.Dispatch(s, view.SwitchView{Mode: view.ModeChart})
		data, _ := fetchFor(cmds, view.TargetSessionData)
		So(data.Request.ID, ShouldEqual, "A1")
		s, _ = deliver(s, data, activityData(10, 12, 14))

		Convey("Then the same series are rendered", func() {
			So(view.Describe(s).Charts, ShouldResemble, before)
		})
	})
}

func TestFetchOrdering(t *testing.T) {
	Convey("Given two selections in quick succession", t, func() {
		s, cmds := started()
		first, _ := fetchFor(cmds, view.TargetSessionData)
		s, cmds = view.Dispatch(s, view.SelectSession{ID: "A2"})
		second, _ := fetchFor(cmds, view.TargetSessionData)
		So(second.Seq, ShouldBeGreaterThan, first.Seq)

		Convey("When the older response arrives last", func() {
			s, _ = deliver(s, second, activityData(20))
			s2, cmds := deliver(s, first, activityData(5))

			Convey("Then it is dropped", func() {
				So(cmds, ShouldBeEmpty)
				So(s2.Session.ID, ShouldEqual, "A2")
				So(s2.Current(first.Target, first.Seq), ShouldBeFalse)
			})
		})

		Convey("When the older response arrives first", func() {
			s2, cmds := deliver(s, first, activityData(5))
			So(cmds, ShouldBeEmpty)
			So(s2.Session, ShouldBeNil)
			So(s2.Pending(view.TargetSessionData), ShouldBeTrue)
		})
	})

	Convey("Given a month fetch in flight when the view is left", t, func() {
		s, cmds := view.Dispatch(loaded(), view.SwitchView{Mode: view.ModeCalendar})
		mf, _ := fetchFor(cmds, view.TargetMonth)
		s, _ = view.Dispatch(s, view.SwitchView{Mode: view.ModeProgress})

		s2, cmds := deliver(s, mf, model.MonthlyData{})
		So(cmds, ShouldBeEmpty)
		So(s2.Month, ShouldBeNil)
	})
}

func TestFailurePolicy(t *testing.T) {
	Convey("Given a rendered session A1", t, func() {
		s := loaded()

		Convey("When loading A2 fails", func() {
			s, cmds := view.Dispatch(s, view.SelectSession{ID: "A2"})
			f, _ := fetchFor(cmds, view.TargetSessionData)
			s, cmds = view.Dispatch(s, view.FetchFailed{Target: f.Target, Seq: f.Seq, Request: f.Request, Err: errors.New("No data found for this activity")})

			Convey("Then A1 stays and the message is surfaced verbatim", func() {
				So(renders(cmds), ShouldEqual, 1)
				So(s.Session, ShouldNotBeNil)
				So(s.Session.ID, ShouldEqual, "A1")
				So(view.Describe(s).Error, ShouldEqual, "No data found for this activity")
			})
		})

		Convey("When refetching A1 fails with an empty message", func() {
			s, cmds := view.Dispatch(s, view.ChangeSmoothing{Level: 3})
			f, _ := fetchFor(cmds, view.TargetSessionData)
			s, _ = view.Dispatch(s, view.FetchFailed{Target: f.Target, Seq: f.Seq, Request: f.Request, Err: errors.New("")})

			Convey("Then the A1 chart is cleared and the default message shown", func() {
				So(s.Session, ShouldBeNil)
				So(s.Error, ShouldEqual, "Failed to load activity data")
				So(view.Describe(s).Charts, ShouldBeEmpty)
			})

			Convey("And a later success clears the banner", func() {
				s2, cmds := view.Dispatch(s, view.ChangeSmoothing{Level: 5})
				f2, _ := fetchFor(cmds, view.TargetSessionData)
				s2, _ = deliver(s2, f2, activityData(1, 2))
				So(s2.Error, ShouldBeEmpty)
				So(s2.Session, ShouldNotBeNil)
			})
		})

		Convey("When the details lookup fails", func() {
			s, cmds := view.Dispatch(s, view.SelectSession{ID: "A2"})
			f, _ := fetchFor(cmds, view.TargetSessionDetails)
			s, _ = view.Dispatch(s, view.FetchFailed{Target: f.Target, Seq: f.Seq, Request: f.Request, Err: errors.New("gone")})

			Convey("Then the panel is hidden without a banner", func() {
				So(s.Details, ShouldBeNil)
				So(s.Error, ShouldBeEmpty)
				So(view.Describe(s).Details, ShouldBeNil)
			})
		})

		Convey("When a payload has the wrong shape", func() {
			s, cmds := view.Dispatch(s, view.ChangeSmoothing{Level: 3})
			f, _ := fetchFor(cmds, view.TargetSessionData)
			bad := model.ActivityData{Labels: []float64{0, 1}, Speed: []float64{1}}
			s, _ = deliver(s, f, bad)

			So(s.Session, ShouldBeNil)
			So(s.Error, ShouldContainSubstring, "series lengths differ")
		})
	})
}

func TestProgressView(t *testing.T) {
	Convey("Given the progress view", t, func() {
		s, cmds := view.Dispatch(loaded(), view.SwitchView{Mode: view.ModeProgress})
		pf, ok := fetchFor(cmds, view.TargetProgress)
		So(ok, ShouldBeTrue)

		s, _ = deliver(s, pf, model.ProgressData{
			Labels:       []string{"2024-03-02", "2024-03-01"},
			AvgSpeed:     []float64{10, 9},
			AvgIncline:   []float64{1, 2},
			AvgHeartRate: []float64{0, 0},
			ActivityInfo: []model.ActivityInfo{
				{ID: "A2", Distance: 5, Duration: 30},
				{ID: "X9", Distance: 4, Duration: 40},
			},
		})

		Convey("Then the chart omits heart rate when no session has it", func() {
			f := view.Describe(s)
			So(f.Charts, ShouldHaveLength, 1)
			c := f.Charts[0]
			So(c.Title, ShouldEqual, "Training Progress Over Time")
			So(c.Series, ShouldHaveLength, 2)
			So(c.Labels, ShouldResemble, []string{"2024-03-01", "2024-03-02"})
			So(f.Summary.Rows[0].Value, ShouldEqual, "2")
			So(f.Summary.Rows[2].Value, ShouldEqual, "1 hrs 10 min")
		})

		Convey("Then each point carries its session info for the tooltip", func() {
			c := view.Describe(s).Charts[0]
			So(c.Tips, ShouldHaveLength, 2)
			So(c.Tips[0], ShouldResemble, []string{
				"Activity: No notes",
				"Sport: ",
				"Distance: 4.00 km",
				"Duration: 40 min",
			})

			Convey("And the distance follows the unit system", func() {
				s2, _ := view.Dispatch(s, view.ChangeUnits{System: units.Imperial})
				c := view.Describe(s2).Charts[0]
				So(c.Tips[0][2], ShouldEqual, "Distance: 2.49 miles")
				So(c.Tips[1][2], ShouldEqual, "Distance: 3.11 miles")
			})
		})

		Convey("When a point is clicked", func() {
			s2, cmds := view.Dispatch(s, view.ClickProgressPoint{Index: 1})

			Convey("Then its session opens with the listed display name", func() {
				So(s2.Mode, ShouldEqual, view.ModeChart)
				So(s2.SelectedID, ShouldEqual, "A2")
				So(s2.SelectedName, ShouldEqual, "Run 2")
				So(fetches(cmds), ShouldHaveLength, 2)
			})
		})

		Convey("When an unlisted session is clicked", func() {
			s2, _ := view.Dispatch(s, view.ClickProgressPoint{Index: 0})
			So(s2.SelectedName, ShouldEqual, "X9")
		})

		Convey("When the index is out of range", func() {
			_, cmds := view.Dispatch(s, view.ClickProgressPoint{Index: 7})
			So(cmds, ShouldBeEmpty)
		})
	})

	Convey("Given an empty progress history", t, func() {
		s, cmds := view.Dispatch(loaded(), view.SwitchView{Mode: view.ModeProgress})
		pf, _ := fetchFor(cmds, view.TargetProgress)
		s, _ = deliver(s, pf, model.ProgressData{})
		f := view.Describe(s)

		So(f.Empty, ShouldEqual, view.NoProgressData)
		So(f.Summary, ShouldBeNil)
	})
}

func TestDetailRows(t *testing.T) {
	Convey("Given details with priority and extra keys", t, func() {
		rows := view.DetailRows(model.Details{
			"Notes":         "easy",
			"Zone":          3.0,
			"Calories":      0.0,
			"Maximum Speed": "16 km/h",
			"Sport":         "Running",
			"Aerobic":       "yes",
		}, units.Imperial)

		So(rows, ShouldResemble, []view.Row{
			{Label: "Sport", Value: "Running"},
			{Label: "Maximum Speed", Value: "9.94 mph"},
			{Label: "Notes", Value: "easy"},
			{Label: "Aerobic", Value: "yes"},
			{Label: "Zone", Value: "3"},
		})
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given mode names", t, func() {
		m, err := view.ParseMode("Calendar")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, view.ModeCalendar)

		_, err = view.ParseMode("table")
		So(errors.Is(err, view.ErrUnknownMode), ShouldBeTrue)

		s, cmds := view.Dispatch(view.New(view.DefaultSettings()), view.SwitchView{Mode: "table"})
		So(cmds, ShouldBeEmpty)
		So(s.Mode, ShouldEqual, view.ModeChart)
	})
}

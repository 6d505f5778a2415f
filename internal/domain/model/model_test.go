package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/tcxview/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIDDecoding(t *testing.T) {
	Convey("Given activity summaries from the data service", t, func() {
		Convey("When tcxid is a number", func() {
			var got []model.ActivitySummary
			err := json.Unmarshal([]byte(`[{"tcxid": 1042, "display_name": "Run"}]`), &got)

			Convey("Then it decodes to its textual form", func() {
				So(err, ShouldBeNil)
				So(got[0].ID, ShouldEqual, model.ID("1042"))
			})
		})

		Convey("When tcxid is a string", func() {
			var got model.ActivitySummary
			err := json.Unmarshal([]byte(`{"tcxid": "A1", "display_name": "Run 1"}`), &got)

			Convey("Then it is kept verbatim", func() {
				So(err, ShouldBeNil)
				So(got.ID.String(), ShouldEqual, "A1")
				So(got.DisplayName, ShouldEqual, "Run 1")
			})
		})

		Convey("When tcxid is an object", func() {
			var got model.ActivitySummary
			err := json.Unmarshal([]byte(`{"tcxid": {"x": 1}}`), &got)

			Convey("Then decoding fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestActivityDataValidate(t *testing.T) {
	Convey("Given activity data with null heart rate samples", t, func() {
		var d model.ActivityData
		err := json.Unmarshal([]byte(`{"labels":[0,1,2],"speed":[5,6,7],"incline":[1,1,1],"heart_rate":[null,120,121]}`), &d)
		So(err, ShouldBeNil)

		Convey("Then nulls are nil pointers and the shape is valid", func() {
			So(d.HeartRate[0], ShouldBeNil)
			So(*d.HeartRate[1], ShouldEqual, 120)
			So(d.Validate(), ShouldBeNil)
			So(d.Len(), ShouldEqual, 3)
		})

		Convey("When one series is short", func() {
			d.Incline = d.Incline[:2]

			Convey("Then validation reports the lengths", func() {
				So(d.Validate(), ShouldNotBeNil)
				So(d.Validate().Error(), ShouldContainSubstring, "incline=2")
			})
		})
	})
}

func TestProgressDataValidate(t *testing.T) {
	Convey("Given progress arrays", t, func() {
		p := model.ProgressData{
			Labels:       []string{"2024-03-01"},
			AvgSpeed:     []float64{8},
			AvgIncline:   []float64{1},
			AvgHeartRate: []float64{0},
			ActivityInfo: []model.ActivityInfo{{ID: "1"}},
		}
		So(p.Validate(), ShouldBeNil)

		p.AvgHeartRate = nil
		So(p.Validate(), ShouldNotBeNil)
	})
}

func TestSessionStartDecoding(t *testing.T) {
	Convey("Given sessions with differently formatted start times", t, func() {
		for _, raw := range []string{`"2024-03-05T07:30:00Z"`, `"2024-03-05 07:30:00"`, `"2024-03-05T07:30:00"`, `"2024-03-05"`, `"Tue, 05 Mar 2024 07:30:00 GMT"`} {
			var s model.Session
			err := json.Unmarshal([]byte(`{"tcxid":1,"start_time":`+raw+`,"speed":[],"incline":[]}`), &s)
			So(err, ShouldBeNil)
			So(s.Start.Format("2006-01-02"), ShouldEqual, "2024-03-05")
		}

		Convey("When the start time is missing", func() {
			var s model.Session
			So(json.Unmarshal([]byte(`{"tcxid":1,"speed":[],"incline":[]}`), &s), ShouldBeNil)
			So(s.Start.IsZero(), ShouldBeTrue)
		})

		Convey("When the start time is garbage", func() {
			var s model.Session
			So(json.Unmarshal([]byte(`{"tcxid":1,"start_time":"yesterday"}`), &s), ShouldBeNil)
			So(s.Start.IsZero(), ShouldBeTrue)
			So(s.Start.Unparsed, ShouldEqual, "yesterday")
		})
	})
}

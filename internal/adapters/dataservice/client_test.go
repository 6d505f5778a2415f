package dataservice_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/tcxview/internal/adapters/dataservice"
	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newClient(t *testing.T, h http.HandlerFunc) *dataservice.Client {
	t.Helper()
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := dataservice.New(srv.URL, dataservice.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestActivities(t *testing.T) {
	Convey("Given a service listing two activities", t, func() {
		var seen *http.Request
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			seen = r
			respond(http.StatusOK, `[{"tcxid":"A1","display_name":"Run 1"},{"tcxid":2,"display_name":"Run 2"}]`)(w, r)
		})

		list, err := c.Activities(context.Background())

		Convey("Then both decode, numeric ids included", func() {
			So(err, ShouldBeNil)
			So(list, ShouldResemble, []model.ActivitySummary{
				{ID: "A1", DisplayName: "Run 1"},
				{ID: "2", DisplayName: "Run 2"},
			})
			So(seen.URL.Path, ShouldEqual, "/api/activities")
			So(seen.Header.Get(dataservice.RequestIDHeader), ShouldNotBeEmpty)
		})
	})

	Convey("Given a service answering with an object", t, func() {
		c := newClient(t, respond(http.StatusOK, `{"items":[]}`))
		_, err := c.Activities(context.Background())

		Convey("Then it is a shape mismatch", func() {
			So(errors.Is(err, dataservice.ErrShapeMismatch), ShouldBeTrue)
			So(errors.Is(err, dataservice.ErrFetchFailure), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "Failed to fetch activities: unexpected response shape")
		})
	})
}

func TestActivityData(t *testing.T) {
	Convey("Given a session id that needs escaping", t, func() {
		var rawPath, query string
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			rawPath = r.URL.EscapedPath()
			query = r.URL.RawQuery
			respond(http.StatusOK, `{"labels":[0,30],"speed":[8,9],"incline":[1,2],"heart_rate":[null,120]}`)(w, r)
		})

		d, err := c.ActivityData(context.Background(), "a/b c", 7)

		Convey("Then the path segment is escaped and smoothing is passed", func() {
			So(err, ShouldBeNil)
			So(rawPath, ShouldEqual, "/api/activity_data/a%2Fb%20c")
			So(query, ShouldEqual, "smoothing=7")
			So(d.Len(), ShouldEqual, 2)
			So(d.HeartRate[0], ShouldBeNil)
			So(*d.HeartRate[1], ShouldEqual, 120)
		})
	})

	Convey("Given misaligned series", t, func() {
		c := newClient(t, respond(http.StatusOK, `{"labels":[0,30],"speed":[8],"incline":[1,2],"heart_rate":[1,2]}`))
		_, err := c.ActivityData(context.Background(), "A1", 5)

		So(errors.Is(err, dataservice.ErrShapeMismatch), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "series lengths differ")
	})

	Convey("Given a missing heart_rate array", t, func() {
		c := newClient(t, respond(http.StatusOK, `{"labels":[0],"speed":[8],"incline":[1]}`))
		d, err := c.ActivityData(context.Background(), "A1", 5)

		So(err, ShouldBeNil)
		So(d.HeartRate, ShouldHaveLength, 1)
		So(d.HeartRate[0], ShouldBeNil)
	})

	Convey("Given a 404 with an error body", t, func() {
		c := newClient(t, respond(http.StatusNotFound, `{"error":"No data found for this activity"}`))
		_, err := c.ActivityData(context.Background(), "A9", 5)

		Convey("Then the service message is surfaced verbatim", func() {
			var fe *dataservice.FetchError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.Kind, ShouldEqual, dataservice.KindStatus)
			So(fe.Status, ShouldEqual, http.StatusNotFound)
			So(err.Error(), ShouldEqual, "No data found for this activity")
		})
	})

	Convey("Given a 500 without a body", t, func() {
		c := newClient(t, respond(http.StatusInternalServerError, ``))
		_, err := c.ActivityData(context.Background(), "A1", 5)
		So(err.Error(), ShouldEqual, "Failed to load activity data")
	})
}

func TestDetailsMonthlyProgress(t *testing.T) {
	Convey("Given detail, month and progress responses", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/activity_details/A1", respond(http.StatusOK, `{"Sport":"Running","Calories":321}`))
		mux.HandleFunc("/api/monthly_data/2024/3", respond(http.StatusOK,
			`{"activities":{"2024-03-05":[{"tcxid":"S1","start_time":"2024-03-05 07:00:00","speed":[8],"incline":[1]}]},"min_values":{"speed":8,"incline":1},"max_values":{"speed":8,"incline":1}}`))
		mux.HandleFunc("/api/progress_data", respond(http.StatusOK,
			`{"labels":["2024-03-05"],"avg_speed":[8],"avg_incline":[1],"avg_heartrate":[0],"activity_info":[{"tcxid":"S1","sport":"Running","distance":5,"duration":30,"notes":""}]}`))
		c := newClient(t, mux.ServeHTTP)
		ctx := context.Background()

		Convey("Then details decode to a map", func() {
			d, err := c.ActivityDetails(ctx, "A1")
			So(err, ShouldBeNil)
			So(d["Sport"], ShouldEqual, "Running")
			So(d["Calories"], ShouldEqual, 321.0)
		})

		Convey("Then the month decodes with its sessions", func() {
			m, err := c.MonthlyData(ctx, 2024, time.March)
			So(err, ShouldBeNil)
			So(m.Activities["2024-03-05"], ShouldHaveLength, 1)
			So(m.Activities["2024-03-05"][0].Start.Day(), ShouldEqual, 5)
			So(m.MaxValues.Speed, ShouldEqual, 8)
		})

		Convey("Then progress decodes aligned", func() {
			p, err := c.ProgressData(ctx)
			So(err, ShouldBeNil)
			So(p.ActivityInfo[0].ID, ShouldEqual, "S1")
		})
	})

	Convey("Given a month whose start times are HTTP dates or unknown", t, func() {
		c := newClient(t, respond(http.StatusOK,
			`{"activities":{"2024-03-05":[{"tcxid":"S1","start_time":"Tue, 05 Mar 2024 10:00:00 GMT","speed":[8],"incline":[1]},{"tcxid":"S2","start_time":"5th of March","speed":[9],"incline":[2]}]}}`))
		m, err := c.MonthlyData(context.Background(), 2024, time.March)

		Convey("Then the month still decodes", func() {
			So(err, ShouldBeNil)
			sessions := m.Activities["2024-03-05"]
			So(sessions, ShouldHaveLength, 2)
			So(sessions[0].Start.Hour(), ShouldEqual, 10)
			So(sessions[1].Start.IsZero(), ShouldBeTrue)
			So(sessions[1].Start.Unparsed, ShouldEqual, "5th of March")
		})
	})

	Convey("Given misaligned progress arrays", t, func() {
		c := newClient(t, respond(http.StatusOK, `{"labels":["a","b"],"avg_speed":[1],"avg_incline":[1,2],"avg_heartrate":[0,0],"activity_info":[]}`))
		_, err := c.ProgressData(context.Background())
		So(errors.Is(err, dataservice.ErrShapeMismatch), ShouldBeTrue)
	})

	Convey("Given invalid JSON", t, func() {
		c := newClient(t, respond(http.StatusOK, `{"labels":`))
		_, err := c.ProgressData(context.Background())

		var fe *dataservice.FetchError
		So(errors.As(err, &fe), ShouldBeTrue)
		So(fe.Kind, ShouldEqual, dataservice.KindDecode)
		So(errors.Is(err, dataservice.ErrShapeMismatch), ShouldBeFalse)
	})
}

func TestNetworkFailure(t *testing.T) {
	Convey("Given an unreachable service", t, func() {
		if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
			t.Fatal(err)
		}
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := dataservice.New(url)
		So(err, ShouldBeNil)
		_, err = c.MonthlyData(context.Background(), 2024, time.March)

		Convey("Then the default message is prefixed to the cause", func() {
			var fe *dataservice.FetchError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.Kind, ShouldEqual, dataservice.KindNetwork)
			So(err.Error(), ShouldStartWith, "Failed to load calendar data: ")
		})
	})

	Convey("Given a malformed base url", t, func() {
		_, err := dataservice.New("localhost:5000")
		So(errors.Is(err, dataservice.ErrInvalidURL), ShouldBeTrue)
	})
}

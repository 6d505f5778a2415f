package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithRefreshInterval(3*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
			})

			Convey("And the collectors register under the namespace", func() {
				manager.chartHandles.Set(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_chart_handles" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When the refresh interval option is zero", func() {
			manager := NewManager(WithRefreshInterval(0), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then the default is kept", func() {
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording fetch outcomes", func() {
			before := testutil.ToFloat64(globalManager.fetchesTotal.WithLabelValues("activities", "ok"))
			RecordFetch("activities", "ok", 12)

			Convey("Then the counter advances", func() {
				after := testutil.ToFloat64(globalManager.fetchesTotal.WithLabelValues("activities", "ok"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When dropping a stale response", func() {
			before := testutil.ToFloat64(globalManager.staleResponses.WithLabelValues("session"))
			RecordStaleResponse("session")

			Convey("Then it is counted per target", func() {
				So(testutil.ToFloat64(globalManager.staleResponses.WithLabelValues("session"))-before, ShouldEqual, 1)
			})
		})

		Convey("When recording a UI action", func() {
			before := testutil.ToFloat64(globalManager.uiActions.WithLabelValues("switch_view", "applied"))
			RecordUIAction("switch_view", "applied")

			Convey("Then it is counted by event and outcome", func() {
				So(testutil.ToFloat64(globalManager.uiActions.WithLabelValues("switch_view", "applied"))-before, ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateChartHandles(4)
			UpdateQueueSize(7)
			AddFetchesInFlight(2)
			AddFetchesInFlight(-2)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.chartHandles), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.fetchesInFlight), ShouldEqual, 0)
			})
		})

		Convey("When recording the remaining helpers", func() {
			So(func() {
				RecordEventDispatched("switch_view")
				RecordRender("calendar", 3)
				UpdateQueueCapacity(100)
				RecordQueueRejected("full")
				RecordHTTPRequest("state", "GET", "200")
				RecordHTTPRequestDuration("state", "GET", "200", 1)
				RecordErrorByEndpoint("state", "GET", "client_error")
				RecordErrorByType("fetch_failure", "medium")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			RecordRender("chart", 1)
			families, err := GetRegistry().Gather()

			Convey("Then only tcxview families are exposed", func() {
				So(err, ShouldBeNil)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "tcxview_"), ShouldBeTrue)
				}
			})
		})
	})
}

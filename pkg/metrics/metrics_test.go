package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("NewManager registers all metrics without panicking", func() {
			m := NewManager(WithRegistry(reg), WithNamespace("test"), WithSubsystem("unit"))
			So(m, ShouldNotBeNil)
			So(m.namespace, ShouldEqual, "test")
			So(m.subsystem, ShouldEqual, "unit")

			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})

		Convey("Options ignore zero values", func() {
			m := NewManager(WithRegistry(reg), WithNamespace(""), WithHistogramBuckets(nil))
			So(m.namespace, ShouldEqual, "pavilion")
			So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("counter and gauge helpers do not panic", func() {
			RecordBallEvent()
			RecordBallDuplicate()
			RecordScreenshot()
			RecordRankingLatency(1.5)
			RecordMatchLogLatency(0.5)
			RecordLeagueQueryLatency(2)
			RecordLogStoreLatency(2)
			RecordLeagueQueryError()
			RecordLogStoreError()
			UpdatePlayersTracked(11)
			UpdateLogDocumentsTracked(240)
			RecordHTTPRequest("rankings", "GET", "200")
			RecordHTTPRequestDuration("rankings", "GET", "200", 3.2)
			RecordErrorByEndpoint("logs", "GET", "client_error")
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(8)
		})

		Convey("the private registry is exposed for scraping", func() {
			So(GetRegistry(), ShouldNotBeNil)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

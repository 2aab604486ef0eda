package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "ecoscore")
				So(manager.subsystem, ShouldEqual, "build")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When creating with empty option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "ecoscore")
				So(manager.subsystem, ShouldEqual, "build")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording build metrics", func() {
			before := testutil.ToFloat64(globalManager.buildsTotal.WithLabelValues("success"))
			RecordBuild("success")
			RecordStageDuration("read", 0.01)
			MarkBuildSuccess(1700000000, 2)

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(globalManager.buildsTotal.WithLabelValues("success")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.productsScored), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.lastBuildUnix), ShouldEqual, 1700000000)
			})
		})

		Convey("When recording data quality metrics", func() {
			UpdateSourceRows("emissions", 12)
			UpdateCoercedValues("distance_km", 3)
			UpdateUnmatchedRows("biodiversity", 1)
			RecordValidationFailure("integrity", "products")

			Convey("Then the gauges should hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.sourceRows.WithLabelValues("emissions")), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.coercedValues.WithLabelValues("distance_km")), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.unmatchedRows.WithLabelValues("biodiversity")), ShouldEqual, 1)
			})
		})

		Convey("When recording scoring metrics", func() {
			UpdateGradeRecords("A", 4)
			UpdateBounds("base_kgco2e", "percentile", 0.5, 9.5)
			ObserveScore(91.3)

			Convey("Then both bound edges should be published", func() {
				So(testutil.ToFloat64(globalManager.gradeRecords.WithLabelValues("A")), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.bounds.WithLabelValues("base_kgco2e", "min", "percentile")), ShouldEqual, 0.5)
				So(testutil.ToFloat64(globalManager.bounds.WithLabelValues("base_kgco2e", "max", "percentile")), ShouldEqual, 9.5)
			})
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/api/products", "GET", "200", 5.0)
				RecordHTTPRequest("", "", "404")
			}, ShouldNotPanic)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a metrics textfile path", t, func() {
		RecordBuild("success")
		path := filepath.Join(t.TempDir(), "ecoscore.prom")

		Convey("When writing the textfile", func() {
			err := WriteTextfile(path)

			Convey("Then it should contain the build metrics", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(raw), "ecoscore_build_runs_total"), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then it should return an export error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "metrics export failed")
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						ObserveScore(float64(j))
						RecordStageDuration("score", 0.001)
						RecordHTTPRequest("/test", "GET", "200")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

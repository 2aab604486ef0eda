package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given the normalizer", t, func() {
		Convey("Then values should land in [0, 1]", func() {
			for _, v := range []float64{-5, 0, 2.5, 10, 1e9, math.Inf(1), math.Inf(-1)} {
				n := scoring.Normalize(v, 0, 10)
				So(n, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("Then the range edges should map to 0 and 1", func() {
			So(scoring.Normalize(0, 0, 10), ShouldEqual, 0)
			So(scoring.Normalize(-1, 0, 10), ShouldEqual, 0)
			So(scoring.Normalize(10, 0, 10), ShouldEqual, 1)
			So(scoring.Normalize(11, 0, 10), ShouldEqual, 1)
			So(scoring.Normalize(2.5, 0, 10), ShouldEqual, 0.25)
		})

		Convey("Then an empty range should give 0", func() {
			So(scoring.Normalize(5, 3, 3), ShouldEqual, 0)
			So(scoring.Normalize(5, 10, 0), ShouldEqual, 0)
		})

		Convey("Then NaN should give 0", func() {
			So(scoring.Normalize(math.NaN(), 0, 10), ShouldEqual, 0)
		})
	})
}

func TestRoundAndGrade(t *testing.T) {
	Convey("Given scores to round", t, func() {
		So(scoring.Round(91.3333), ShouldEqual, 91.3)
		So(scoring.Round(53.36), ShouldEqual, 53.4)
		So(scoring.Round(-0.25), ShouldEqual, -0.3)
		So(scoring.Round(0.04), ShouldEqual, 0)
	})

	Convey("Given the default grade bands", t, func() {
		bands := model.DefaultGradeBands()

		Convey("Then a cutoff should belong to its own band", func() {
			g, ok := scoring.Grade(80, bands)
			So(ok, ShouldBeTrue)
			So(g, ShouldEqual, "A")
			g, _ = scoring.Grade(79.9, bands)
			So(g, ShouldEqual, "B")
			g, _ = scoring.Grade(0, bands)
			So(g, ShouldEqual, "E")
		})

		Convey("Then a score below every cutoff should not match", func() {
			_, ok := scoring.Grade(5, model.GradeBands{{Label: "A", Cutoff: 50}, {Label: "B", Cutoff: 10}})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestWeightedScorer_Score(t *testing.T) {
	Convey("Given a scorer with the reference parameters", t, func() {
		ctx := context.Background()
		scorer, err := scoring.NewWeightedScorer()
		So(err, ShouldBeNil)

		Convey("When scoring the worked example", func() {
			r1, err1 := scorer.Score(ctx, scoring.Input{ID: "1", Values: model.MetricValues{Emissions: 1, Distance: 100, Biodiversity: 0.1}})
			r2, err2 := scorer.Score(ctx, scoring.Input{ID: "2", Values: model.MetricValues{Emissions: 5, Distance: 1000, Biodiversity: 0.5}})

			Convey("Then the first product should score 91.3 A", func() {
				So(err1, ShouldBeNil)
				So(r1.Score, ShouldEqual, 91.3)
				So(r1.Grade, ShouldEqual, "A")
				So(r1.ID, ShouldEqual, "1")
				So(r1.Normalized.Emissions, ShouldAlmostEqual, 0.1, 1e-12)
			})

			Convey("Then the second product should score 53.3 C", func() {
				So(err2, ShouldBeNil)
				So(r2.Impact, ShouldAlmostEqual, 0.46667, 1e-4)
				So(r2.Score, ShouldEqual, 53.3)
				So(r2.Grade, ShouldEqual, "C")
				So(r1.Score, ShouldBeGreaterThan, r2.Score)
			})
		})

		Convey("When every metric is at its best end", func() {
			r, err := scorer.Score(ctx, scoring.Input{Values: model.MetricValues{}})

			Convey("Then the score should be 100 with the top grade", func() {
				So(err, ShouldBeNil)
				So(r.Score, ShouldEqual, 100.0)
				So(r.Grade, ShouldEqual, "A")
			})
		})

		Convey("When every metric is at its worst end", func() {
			r, err := scorer.Score(ctx, scoring.Input{Values: model.MetricValues{Emissions: 10, Distance: 3000, Biodiversity: 1}})

			Convey("Then the score should be 0 with the bottom grade", func() {
				So(err, ShouldBeNil)
				So(r.Score, ShouldEqual, 0.0)
				So(r.Grade, ShouldEqual, "E")
			})
		})

		Convey("When a single metric increases", func() {
			Convey("Then the score should never increase", func() {
				for _, m := range model.Metrics() {
					prev := math.Inf(1)
					for step := 0; step <= 40; step++ {
						v := model.MetricValues{Emissions: 2, Distance: 500, Biodiversity: 0.3}
						v.Set(m, float64(step)*[]float64{0.5, 100, 0.05}[metricIndex(m)])
						r, err := scorer.Score(ctx, scoring.Input{Values: v})
						So(err, ShouldBeNil)
						So(r.Score, ShouldBeLessThanOrEqualTo, prev)
						prev = r.Score
					}
				}
			})
		})

		Convey("When checking grade consistency over a sweep", func() {
			bands := model.DefaultGradeBands()
			Convey("Then the assigned band should be the highest that qualifies", func() {
				for e := 0.0; e <= 10; e += 0.7 {
					r, err := scorer.Score(ctx, scoring.Input{Values: model.MetricValues{Emissions: e, Distance: e * 300, Biodiversity: e / 10}})
					So(err, ShouldBeNil)
					for i, b := range bands {
						if b.Label == r.Grade {
							So(b.Cutoff, ShouldBeLessThanOrEqualTo, r.Score)
							if i > 0 {
								So(bands[i-1].Cutoff, ShouldBeGreaterThan, r.Score)
							}
						}
					}
				}
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := scorer.Score(cctx, scoring.Input{})

			Convey("Then it should return an error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestWeightedScorer_Options(t *testing.T) {
	Convey("Given scorer options", t, func() {
		ctx := context.Background()
		highBands := model.GradeBands{{Label: "A", Cutoff: 90}, {Label: "B", Cutoff: 50}}
		worst := scoring.Input{ID: "w", Values: model.MetricValues{Emissions: 10, Distance: 3000, Biodiversity: 1}}

		Convey("When weights do not sum to 1", func() {
			_, err := scoring.NewWeightedScorer(scoring.WithWeights(model.Weights{Emissions: 0.5, Distance: 0.2, Biodiversity: 0.2}))

			Convey("Then construction should fail with a ConfigError", func() {
				So(errors.Is(err, model.ErrConfig), ShouldBeTrue)
			})
		})

		Convey("When a tolerance admits the sum", func() {
			_, err := scoring.NewWeightedScorer(
				scoring.WithWeights(model.Weights{Emissions: 0.5, Distance: 0.2, Biodiversity: 0.2}),
				scoring.WithWeightTolerance(0.2),
			)
			So(err, ShouldBeNil)
		})

		Convey("When the grade bands are malformed", func() {
			_, err := scoring.NewWeightedScorer(scoring.WithGradeBands(model.GradeBands{{Label: "A", Cutoff: 10}, {Label: "B", Cutoff: 20}}))

			Convey("Then construction should fail with a ConfigError", func() {
				So(errors.Is(err, model.ErrConfig), ShouldBeTrue)
			})
		})

		Convey("When no band qualifies under the strict fallback", func() {
			scorer, err := scoring.NewWeightedScorer(scoring.WithGradeBands(highBands))
			So(err, ShouldBeNil)
			_, err = scorer.Score(ctx, worst)

			Convey("Then a GradeBandError should be returned", func() {
				var gbe *model.GradeBandError
				So(errors.As(err, &gbe), ShouldBeTrue)
				So(gbe.Lowest, ShouldEqual, 50)
				So(gbe.Score, ShouldEqual, 0)
			})
		})

		Convey("When no band qualifies under the lowest fallback", func() {
			scorer, err := scoring.NewWeightedScorer(scoring.WithGradeBands(highBands), scoring.WithFallback(scoring.FallbackLowest))
			So(err, ShouldBeNil)
			r, err := scorer.Score(ctx, worst)

			Convey("Then the lowest label should be assigned and flagged", func() {
				So(err, ShouldBeNil)
				So(r.Grade, ShouldEqual, "B")
				So(r.FellBack, ShouldBeTrue)
			})
		})

		Convey("When bounds are degenerate", func() {
			scorer, err := scoring.NewWeightedScorer(scoring.WithBounds(model.BoundsSet{
				model.Emissions: {Min: 5, Max: 5},
			}))
			So(err, ShouldBeNil)
			r, _ := scorer.Score(ctx, scoring.Input{Values: model.MetricValues{Emissions: 100}})

			Convey("Then that metric should normalize to 0", func() {
				So(r.Normalized.Emissions, ShouldEqual, 0)
				So(r.Score, ShouldEqual, 100)
				So(scorer.Bounds()[model.Distance].Max, ShouldEqual, 3000)
			})
		})
	})
}

func metricIndex(m model.Metric) int {
	for i, x := range model.Metrics() {
		if x == m {
			return i
		}
	}
	return -1
}

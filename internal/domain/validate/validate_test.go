package validate_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func table(name string, header []string, rows ...[]string) *model.Table {
	t := &model.Table{Name: name, Header: header}
	for i, r := range rows {
		t.Rows = append(t.Rows, model.Row{Line: i + 2, Cells: r})
	}
	return t
}

func validTables() model.Tables {
	return model.Tables{
		"products": table("products", []string{"id", "name"},
			[]string{"p1", "Jam"}, []string{"p2", ""}),
		"emissions": table("emissions", []string{"id", "kgco2e_unit"},
			[]string{"p1", "1"}, []string{"p2", "5"}),
		"distance": table("distance", []string{"id", "distance_km"},
			[]string{"p1", "100"}, []string{"p2", ""}),
		"biodiversity": table("biodiversity", []string{"id", "value"},
			[]string{"p1", "0.1"}, []string{"p2", "NaN"}),
	}
}

func TestValidatorTables(t *testing.T) {
	Convey("Given a validator", t, func() {
		ctx := context.Background()
		v := validate.New()

		Convey("When the tables are valid", func() {
			ds, err := v.Tables(ctx, validTables())

			Convey("Then a typed dataset should be returned in input order", func() {
				So(err, ShouldBeNil)
				So(ds.Products, ShouldHaveLength, 2)
				So(ds.Products[0], ShouldResemble, model.Product{ID: "p1", Name: "Jam", Line: 2})
				So(ds.Sources[model.Emissions][1].Value, ShouldEqual, 5)
			})

			Convey("Then a blank name should fall back to the id", func() {
				So(ds.Products[1].Name, ShouldEqual, "p2")
			})

			Convey("Then blank and NaN cells should pass as NaN", func() {
				So(math.IsNaN(ds.Sources[model.Distance][1].Value), ShouldBeTrue)
				So(math.IsNaN(ds.Sources[model.Biodiversity][1].Value), ShouldBeTrue)
			})
		})

		Convey("When a required column is missing", func() {
			tables := validTables()
			tables["products"] = table("products", []string{"id"}, []string{"p1"})
			_, err := v.Tables(ctx, tables)

			Convey("Then a SchemaError should name the table and column", func() {
				var se *model.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Table, ShouldEqual, "products")
				So(se.Missing, ShouldResemble, []string{"name"})
			})
		})

		Convey("When a metric table has no value column", func() {
			tables := validTables()
			tables["distance"] = table("distance", []string{"id", "km"}, []string{"p1", "1"})
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be a SchemaError on that table", func() {
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
				So(model.ErrorTable(err), ShouldEqual, "distance")
			})
		})

		Convey("When a table has no identifier column", func() {
			tables := validTables()
			tables["emissions"] = table("emissions", []string{"sku", "kgco2e_unit"}, []string{"p1", "1"})
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be a SchemaError", func() {
				var se *model.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldContain, "id")
			})
		})

		Convey("When a table is absent", func() {
			tables := validTables()
			delete(tables, "biodiversity")
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be a SchemaError", func() {
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When an identifier is duplicated", func() {
			tables := validTables()
			tables["emissions"].Rows = append(tables["emissions"].Rows, model.Row{Line: 4, Cells: []string{"p1", "2"}})
			_, err := v.Tables(ctx, tables)

			Convey("Then an IntegrityError should point at the duplicate row", func() {
				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Table, ShouldEqual, "emissions")
				So(ie.Rule, ShouldEqual, "duplicate identifier")
				So(ie.Offending[0].Line, ShouldEqual, 4)
				So(ie.Offending[0].Value, ShouldEqual, "first seen on line 2")
			})
		})

		Convey("When biodiversity risk is 1.5", func() {
			tables := validTables()
			tables["biodiversity"].Rows[0].Cells[1] = "1.5"
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be rejected", func() {
				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Table, ShouldEqual, "biodiversity")
				So(ie.Offending[0].Value, ShouldEqual, "1.5")
			})
		})

		Convey("When a distance is negative", func() {
			tables := validTables()
			tables["distance"].Rows[0].Cells[1] = "-3"
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, model.ErrIntegrity), ShouldBeTrue)
				So(model.ErrorTable(err), ShouldEqual, "distance")
			})
		})

		Convey("When a metric cell is infinite", func() {
			cases := []struct {
				table, cell, value string
			}{
				{"emissions", "-Inf", "-Inf"},
				{"emissions", "inf", "+Inf"},
				{"distance", "-inf", "-Inf"},
				{"distance", "+Inf", "+Inf"},
				{"biodiversity", "inf", "+Inf"},
				{"biodiversity", "-infinity", "-Inf"},
			}
			for _, tc := range cases {
				tables := validTables()
				tables[tc.table].Rows[0].Cells[1] = tc.cell
				_, err := v.Tables(ctx, tables)

				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Table, ShouldEqual, tc.table)
				So(ie.Offending, ShouldHaveLength, 1)
				So(ie.Offending[0].ID, ShouldEqual, "p1")
				So(ie.Offending[0].Value, ShouldEqual, tc.value)
			}
		})

		Convey("When an emissions cell holds text", func() {
			tables := validTables()
			tables["emissions"].Rows[1].Cells[1] = "n/a"
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be rejected as non-numeric", func() {
				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Rule, ShouldEqual, "kgco2e_unit is not numeric")
				So(ie.Offending[0].ID, ShouldEqual, "p2")
			})
		})

		Convey("When a product identifier is blank", func() {
			tables := validTables()
			tables["products"].Rows[1].Cells[0] = ""
			_, err := v.Tables(ctx, tables)

			Convey("Then it should be rejected", func() {
				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Rule, ShouldEqual, "blank identifier")
			})
		})

		Convey("When a configured value column is used", func() {
			tables := validTables()
			tables["emissions"] = table("emissions", []string{"id", "co2"}, []string{"p1", "2"})
			vv := validate.New(validate.WithValueColumns(map[model.Metric]string{model.Emissions: "co2"}))
			ds, err := vv.Tables(ctx, tables)

			Convey("Then the custom column should be read", func() {
				So(err, ShouldBeNil)
				So(ds.Sources[model.Emissions][0].Value, ShouldEqual, 2)
			})
		})
	})
}

func TestValidatorQA(t *testing.T) {
	Convey("Given joined rows", t, func() {
		rows := []model.JoinedRow{
			{Product: model.Product{ID: "p1", Line: 2}, Values: model.MetricValues{Emissions: 1, Distance: 100, Biodiversity: 0.1}},
			{Product: model.Product{ID: "p2", Line: 3}, Values: model.MetricValues{Emissions: 60, Distance: math.NaN(), Biodiversity: 0.9}},
		}

		Convey("When no QA rule is configured", func() {
			So(validate.New().QA(rows), ShouldBeNil)
		})

		Convey("When completeness is required", func() {
			err := validate.New(validate.WithQARules(model.QARules{RequireComplete: true})).QA(rows)

			Convey("Then the incomplete product should be reported", func() {
				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Table, ShouldEqual, validate.JoinedTable)
				So(ie.Offending[0].ID, ShouldEqual, "p2")
				So(ie.Offending[0].Value, ShouldEqual, "distance")
			})
		})

		Convey("When a max value is exceeded", func() {
			err := validate.New(validate.WithQARules(model.QARules{
				MaxValues: map[model.Metric]float64{model.Emissions: 50},
			})).QA(rows)

			Convey("Then the rule should name the export column", func() {
				var ie *model.IntegrityError
				So(errors.As(err, &ie), ShouldBeTrue)
				So(ie.Rule, ShouldEqual, "base_kgco2e > 50")
				So(ie.Total, ShouldEqual, 1)
			})
		})

		Convey("When a value falls outside a range", func() {
			err := validate.New(validate.WithQARules(model.QARules{
				Ranges: map[model.Metric]model.Range{model.Biodiversity: {Min: 0, Max: 0.8}},
			})).QA(rows)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, model.ErrIntegrity), ShouldBeTrue)
			})
		})
	})
}

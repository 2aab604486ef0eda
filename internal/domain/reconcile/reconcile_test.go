package reconcile_test

import (
	"context"
	"testing"

	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/reconcile"
	. "github.com/smartystreets/goconvey/convey"
)

func table(name string, header []string, rows ...[]string) *model.Table {
	t := &model.Table{Name: name, Header: header}
	for i, r := range rows {
		t.Rows = append(t.Rows, model.Row{Line: i + 2, Cells: r})
	}
	return t
}

func TestReconcile(t *testing.T) {
	Convey("Given input tables", t, func() {
		ctx := context.Background()
		tables := model.Tables{
			"products":     table("products", []string{"ID", "name"}, []string{" p1 ", "Jam"}, []string{"p2", "Honey"}),
			"emissions":    table("emissions", []string{"GTIN", "kgco2e_unit"}, []string{"p1", "1"}, []string{" ", "3"}),
			"distance":     table("distance", []string{"id", "ean", "distance_km"}, []string{"p1", "999", "100"}),
			"biodiversity": table("biodiversity", []string{"sku", "biodiversity_risk"}, []string{"p1", "0.1"}),
		}

		Convey("When reconciling with the strict policy", func() {
			res, err := reconcile.New().Reconcile(ctx, tables)

			Convey("Then identifiers should be trimmed and headers canonical", func() {
				So(err, ShouldBeNil)
				p := res.Tables["products"]
				So(p.Header[0], ShouldEqual, "id")
				So(p.Rows[0].Cells[0], ShouldEqual, "p1")
			})

			Convey("Then an alternate key should become id", func() {
				e := res.Tables["emissions"]
				So(e.Header, ShouldResemble, []string{"id", "kgco2e_unit"})
				So(res.Renamed["emissions"], ShouldEqual, "gtin")
			})

			Convey("Then an existing id should win over aliases", func() {
				d := res.Tables["distance"]
				So(d.Column("id"), ShouldEqual, 0)
				_, renamed := res.Renamed["distance"]
				So(renamed, ShouldBeFalse)
			})

			Convey("Then blank metric identifiers should be dropped and counted", func() {
				So(res.Tables["emissions"].Rows, ShouldHaveLength, 1)
				So(res.Dropped["emissions"], ShouldEqual, 1)
			})

			Convey("Then a table without any identifier should be left for the schema check", func() {
				b := res.Tables["biodiversity"]
				So(b.Has("id"), ShouldBeFalse)
				So(res.Synthesized, ShouldBeEmpty)
			})

			Convey("Then the input should be untouched", func() {
				So(tables["products"].Header[0], ShouldEqual, "ID")
				So(tables["products"].Rows[0].Cells[0], ShouldEqual, " p1 ")
				So(tables["emissions"].Rows, ShouldHaveLength, 2)
			})

			Convey("And reconciling the result again", func() {
				again, err2 := reconcile.New().Reconcile(ctx, res.Tables)

				Convey("Then it should be unchanged", func() {
					So(err2, ShouldBeNil)
					So(again.Tables, ShouldResemble, res.Tables)
				})
			})
		})

		Convey("When reconciling with the synthesize policy", func() {
			r := reconcile.New(reconcile.WithPolicy(reconcile.PolicySynthesize))
			res, err := r.Reconcile(ctx, tables)

			Convey("Then the table without identifiers should get row-based ids", func() {
				So(err, ShouldBeNil)
				So(r.Policy(), ShouldEqual, reconcile.PolicySynthesize)
				b := res.Tables["biodiversity"]
				col := b.Column("id")
				So(col, ShouldEqual, 2)
				So(b.Rows[0].Cell(col), ShouldEqual, "biodiversity_0")
				So(res.Synthesized, ShouldResemble, []string{"biodiversity"})
			})

			Convey("And reconciling again should not synthesize twice", func() {
				again, err2 := r.Reconcile(ctx, res.Tables)
				So(err2, ShouldBeNil)
				So(again.Synthesized, ShouldBeEmpty)
				So(again.Tables, ShouldResemble, res.Tables)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := reconcile.New().Reconcile(cctx, tables)

			Convey("Then it should stop", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given the alias list", t, func() {
		So(reconcile.AlternateKeys(), ShouldResemble, []string{"gtin", "ean", "upc", "barcode", "product_code"})
	})
}

// Package validate enforces the schema and integrity rules on reconciled
// tables and turns them into a typed dataset.
package validate

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/ecoscore/internal/domain/dedupe"
	"github.com/okian/ecoscore/internal/domain/model"
	"github.com/okian/ecoscore/internal/domain/reconcile"
)

// JoinedTable names the joined view in QA errors.
const JoinedTable = "joined"

// fallbackValueColumns are accepted, in order, when the configured column is absent.
var fallbackValueColumns = []string{"value", "base_kgco2e"} //nolint:gochecknoglobals // fixed lookup order

// DefaultValueColumns returns the preferred value column of each metric table.
func DefaultValueColumns() map[model.Metric]string {
	return map[model.Metric]string{
		model.Emissions:    "kgco2e_unit",
		model.Distance:     "distance_km",
		model.Biodiversity: "biodiversity_risk",
	}
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithValueColumns overrides the preferred value columns. Blank entries keep the default.
func WithValueColumns(cols map[model.Metric]string) Option {
	return func(v *Validator) {
		for m, c := range cols {
			if strings.TrimSpace(c) != "" {
				v.columns[m] = c
			}
		}
	}
}

// WithQARules enables the optional quality rules.
func WithQARules(q model.QARules) Option {
	return func(v *Validator) {
		v.qa = q
	}
}

// Validator checks tables before any output is produced. It never modifies its input.
type Validator struct {
	columns map[model.Metric]string
	qa      model.QARules
}

// New creates a Validator with configuration options.
func New(opts ...Option) *Validator {
	v := &Validator{columns: DefaultValueColumns()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValueColumn returns the value column used for metric m in t, or "" and -1.
func (v *Validator) ValueColumn(m model.Metric, t *model.Table) (string, int) {
	candidates := append([]string{v.columns[m]}, fallbackValueColumns...)
	for _, name := range candidates {
		if idx := t.Column(name); idx >= 0 {
			return name, idx
		}
	}
	return "", -1
}

// Schema reports the first table missing a required column.
func (v *Validator) Schema(tables model.Tables) error {
	p := tables[model.TableProducts]
	if p == nil {
		return &model.SchemaError{Table: model.TableProducts, Missing: []string{reconcile.IDColumn, "name"}}
	}
	var missing []string
	for _, col := range []string{reconcile.IDColumn, "name"} {
		if !p.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &model.SchemaError{Table: model.TableProducts, Missing: missing}
	}

	for _, m := range model.Metrics() {
		want := v.columns[m] + "|" + strings.Join(fallbackValueColumns, "|")
		t := tables[m.Table()]
		if t == nil {
			return &model.SchemaError{Table: m.Table(), Missing: []string{reconcile.IDColumn, want}}
		}
		missing = missing[:0]
		if !t.Has(reconcile.IDColumn) {
			missing = append(missing, reconcile.IDColumn)
		}
		if _, idx := v.ValueColumn(m, t); idx < 0 {
			missing = append(missing, want)
		}
		if len(missing) > 0 {
			return &model.SchemaError{Table: m.Table(), Missing: append([]string(nil), missing...)}
		}
	}
	return nil
}

// Tables runs the schema and integrity rules and returns the typed dataset.
// Tables are checked in a fixed order and the first violation is returned.
func (v *Validator) Tables(ctx context.Context, tables model.Tables) (model.Dataset, error) {
	if err := v.Schema(tables); err != nil {
		return model.Dataset{}, err
	}

	products, err := v.products(tables[model.TableProducts])
	if err != nil {
		return model.Dataset{}, err
	}

	ds := model.Dataset{Products: products, Sources: make(map[model.Metric][]model.MetricRow, 3)}
	for _, m := range model.Metrics() {
		if err := ctx.Err(); err != nil {
			return model.Dataset{}, fmt.Errorf("validate: %w", err)
		}
		rows, err := v.metric(m, tables[m.Table()])
		if err != nil {
			return model.Dataset{}, err
		}
		ds.Sources[m] = rows
	}
	return ds, nil
}

func (v *Validator) products(t *model.Table) ([]model.Product, error) {
	idCol := t.Column(reconcile.IDColumn)
	nameCol := t.Column("name")

	var blanks []model.Offender
	for _, r := range t.Rows {
		if strings.TrimSpace(r.Cell(idCol)) == "" {
			blanks = append(blanks, model.Offender{Line: r.Line, Value: r.Cell(nameCol)})
		}
	}
	if len(blanks) > 0 {
		return nil, model.NewIntegrityError(t.Name, "blank identifier", blanks)
	}
	if err := duplicates(t, idCol); err != nil {
		return nil, err
	}

	out := make([]model.Product, 0, len(t.Rows))
	for _, r := range t.Rows {
		id := strings.TrimSpace(r.Cell(idCol))
		name := strings.TrimSpace(r.Cell(nameCol))
		if name == "" {
			name = id
		}
		out = append(out, model.Product{ID: id, Name: name, Line: r.Line})
	}
	return out, nil
}

func (v *Validator) metric(m model.Metric, t *model.Table) ([]model.MetricRow, error) {
	idCol := t.Column(reconcile.IDColumn)
	colName, valCol := v.ValueColumn(m, t)

	if err := duplicates(t, idCol); err != nil {
		return nil, err
	}

	rows := make([]model.MetricRow, 0, len(t.Rows))
	var bad []model.Offender
	for _, r := range t.Rows {
		val, ok := model.ParseValue(r.Cell(valCol))
		if !ok {
			bad = append(bad, model.Offender{ID: r.Cell(idCol), Line: r.Line, Value: r.Cell(valCol)})
			continue
		}
		rows = append(rows, model.MetricRow{ID: strings.TrimSpace(r.Cell(idCol)), Value: val, Line: r.Line})
	}
	if len(bad) > 0 {
		return nil, model.NewIntegrityError(t.Name, fmt.Sprintf("%s is not numeric", colName), bad)
	}

	rule, inDomain := domainRule(m, colName)
	var out []model.Offender
	for _, r := range rows {
		// Only missing values (NaN) are left to the coercer; infinities are out of domain.
		if !math.IsNaN(r.Value) && !inDomain(r.Value) {
			out = append(out, model.Offender{ID: r.ID, Line: r.Line, Value: formatValue(r.Value)})
		}
	}
	if len(out) > 0 {
		return nil, model.NewIntegrityError(t.Name, rule, out)
	}
	return rows, nil
}

func domainRule(m model.Metric, col string) (string, func(float64) bool) {
	switch m {
	case model.Biodiversity:
		return col + " must be within [0, 1]", func(x float64) bool { return x >= 0 && x <= 1 }
	default:
		return col + " must be >= 0", func(x float64) bool { return x >= 0 }
	}
}

func duplicates(t *model.Table, idCol int) error {
	tracker := dedupe.NewTracker(dedupe.WithCapacity(len(t.Rows)), dedupe.WithNormalizer(strings.TrimSpace))
	var dups []model.Offender
	for _, r := range t.Rows {
		id := r.Cell(idCol)
		if first, seen := tracker.SeenAndRecord(id, r.Line); seen {
			dups = append(dups, model.Offender{
				ID:    strings.TrimSpace(id),
				Line:  r.Line,
				Value: "first seen on line " + strconv.Itoa(first),
			})
		}
	}
	if len(dups) > 0 {
		return model.NewIntegrityError(t.Name, "duplicate identifier", dups)
	}
	return nil
}

// QA applies the optional quality rules to the joined rows.
func (v *Validator) QA(rows []model.JoinedRow) error {
	if v.qa.Empty() {
		return nil
	}

	if v.qa.RequireComplete {
		var incomplete []model.Offender
		for _, r := range rows {
			var missing []string
			for _, m := range model.Metrics() {
				if !model.Finite(r.Values.Get(m)) {
					missing = append(missing, string(m))
				}
			}
			if len(missing) > 0 {
				incomplete = append(incomplete, model.Offender{ID: r.Product.ID, Line: r.Product.Line, Value: strings.Join(missing, ",")})
			}
		}
		if len(incomplete) > 0 {
			return model.NewIntegrityError(JoinedTable, "missing metric values", incomplete)
		}
	}

	for _, m := range model.Metrics() {
		limit, ok := v.qa.MaxValues[m]
		if !ok {
			continue
		}
		var over []model.Offender
		for _, r := range rows {
			if x := r.Values.Get(m); model.Finite(x) && x > limit {
				over = append(over, model.Offender{ID: r.Product.ID, Line: r.Product.Line, Value: formatValue(x)})
			}
		}
		if len(over) > 0 {
			return model.NewIntegrityError(JoinedTable, fmt.Sprintf("%s > %v", m.ExportColumn(), limit), over)
		}
	}

	for _, m := range model.Metrics() {
		rng, ok := v.qa.Ranges[m]
		if !ok {
			continue
		}
		var outside []model.Offender
		for _, r := range rows {
			if x := r.Values.Get(m); model.Finite(x) && !rng.Contains(x) {
				outside = append(outside, model.Offender{ID: r.Product.ID, Line: r.Product.Line, Value: formatValue(x)})
			}
		}
		if len(outside) > 0 {
			return model.NewIntegrityError(JoinedTable, fmt.Sprintf("%s outside [%v, %v]", m.ExportColumn(), rng.Min, rng.Max), outside)
		}
	}
	return nil
}

func formatValue(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

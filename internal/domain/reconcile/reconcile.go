// Package reconcile canonicalizes the join key of the input tables.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/ecoscore/internal/domain/model"
)

// IDColumn is the canonical identifier column.
const IDColumn = "id"

// Policy decides what happens to a table without any identifier column.
type Policy string

const (
	// PolicyStrict never invents identifiers; the schema check rejects the table.
	PolicyStrict Policy = "strict"
	// PolicySynthesize assigns "{table}_{row}" identifiers. Such rows cannot
	// join to other tables, so callers must warn about every synthesized table.
	PolicySynthesize Policy = "synthesize"
)

// alternateKeys are tried in order when a table has no id column.
var alternateKeys = []string{"gtin", "ean", "upc", "barcode", "product_code"} //nolint:gochecknoglobals // fixed lookup order

// AlternateKeys returns the recognized identifier aliases in priority order.
func AlternateKeys() []string {
	return append([]string(nil), alternateKeys...)
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithPolicy sets the identifier policy. Unknown policies are ignored.
func WithPolicy(p Policy) Option {
	return func(r *Reconciler) {
		switch p {
		case PolicyStrict, PolicySynthesize:
			r.policy = p
		}
	}
}

// Result is the outcome of reconciling a table set.
type Result struct {
	Tables model.Tables
	// Renamed maps a table to the alias column that became its id.
	Renamed map[string]string
	// Synthesized lists tables that received synthetic identifiers.
	Synthesized []string
	// Dropped counts metric rows removed for having a blank identifier.
	Dropped map[string]int
}

// Reconciler normalizes identifiers across tables.
type Reconciler struct {
	policy Policy
}

// New creates a Reconciler. The default policy is strict.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{policy: PolicyStrict}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the active identifier policy.
func (r *Reconciler) Policy() Policy { return r.policy }

// Reconcile returns reconciled copies of tables; the input is not modified.
// Reconciling an already reconciled set returns an identical set.
func (r *Reconciler) Reconcile(ctx context.Context, tables model.Tables) (Result, error) {
	res := Result{
		Tables:  make(model.Tables, len(tables)),
		Renamed: make(map[string]string),
		Dropped: make(map[string]int),
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("reconcile: %w", err)
		}
		t := tables[name].Clone()
		if t == nil {
			continue
		}

		col := t.Column(IDColumn)
		if col < 0 {
			if alias, idx := findAlternate(t); idx >= 0 {
				col = idx
				res.Renamed[name] = alias
			}
		}

		switch {
		case col >= 0:
			t.Header[col] = IDColumn
		case r.policy == PolicySynthesize:
			synthesize(t, name)
			res.Synthesized = append(res.Synthesized, name)
			res.Tables[name] = t
			continue
		default:
			// Left for the schema check to reject.
			res.Tables[name] = t
			continue
		}

		for i := range t.Rows {
			if col < len(t.Rows[i].Cells) {
				t.Rows[i].Cells[col] = strings.TrimSpace(t.Rows[i].Cells[col])
			}
		}
		if name != model.TableProducts {
			res.Dropped[name] = dropBlank(t, col)
		}
		res.Tables[name] = t
	}
	return res, nil
}

func findAlternate(t *model.Table) (string, int) {
	for _, alias := range alternateKeys {
		if idx := t.Column(alias); idx >= 0 {
			return alias, idx
		}
	}
	return "", -1
}

// synthesize appends an id column numbered by 0-based row position.
func synthesize(t *model.Table, name string) {
	t.Header = append(t.Header, IDColumn)
	width := len(t.Header)
	for i := range t.Rows {
		cells := t.Rows[i].Cells
		for len(cells) < width-1 {
			cells = append(cells, "")
		}
		t.Rows[i].Cells = append(cells, fmt.Sprintf("%s_%d", name, i))
	}
}

// dropBlank removes rows whose identifier is blank and returns how many went.
func dropBlank(t *model.Table, col int) int {
	kept := t.Rows[:0]
	dropped := 0
	for _, row := range t.Rows {
		if row.Cell(col) == "" {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return dropped
}

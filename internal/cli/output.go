package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/okian/ecoscore/internal/domain/model"
)

var (
	okColor   = color.New(color.FgGreen)  //nolint:gochecknoglobals // shared palette
	warnColor = color.New(color.FgYellow) //nolint:gochecknoglobals // shared palette
	errColor  = color.New(color.FgRed)    //nolint:gochecknoglobals // shared palette
	faint     = color.New(color.Faint)    //nolint:gochecknoglobals // shared palette
)

// printDiagnostic writes one human-readable failure report. Integrity
// errors list their offending rows one per line.
func printDiagnostic(w io.Writer, err error) {
	var ie *model.IntegrityError
	if errors.As(err, &ie) {
		errColor.Fprintf(w, "✗ %s: table %q: %s (%d rows)\n", model.Kind(err), ie.Table, ie.Rule, ie.Total)
		for _, o := range ie.Offending {
			errColor.Fprintf(w, "    %s\n", o)
		}
		if more := ie.Total - len(ie.Offending); more > 0 {
			errColor.Fprintf(w, "    and %d more\n", more)
		}
		return
	}
	errColor.Fprintf(w, "✗ %s: %v\n", model.Kind(err), err)
}

// printStats writes the summary of a build.
func printStats(w io.Writer, m model.Manifest) {
	labels := make([]string, 0, len(m.GradeBands))
	for _, b := range m.GradeBands {
		labels = append(labels, b.Label)
	}
	if len(labels) == 0 {
		for g := range m.Stats.Grades {
			labels = append(labels, g)
		}
		sort.Strings(labels)
	}

	fmt.Fprintf(w, "  products   %d\n", m.Stats.Products)
	fmt.Fprint(w, "  grades    ")
	for _, g := range labels {
		fmt.Fprintf(w, " %s:%d", g, m.Stats.Grades[g])
	}
	fmt.Fprintln(w)

	for _, metric := range model.Metrics() {
		b := m.Bounds[metric]
		fmt.Fprintf(w, "  %-13s bounds [%g, %g] %s", metric, b.Min, b.Max, faint.Sprint(b.Origin))
		if n := m.Stats.Defaulted[metric]; n > 0 {
			warnColor.Fprintf(w, "  %d defaulted", n)
		}
		if n := m.Stats.Unmatched[metric]; n > 0 {
			warnColor.Fprintf(w, "  %d unmatched", n)
		}
		fmt.Fprintln(w)
	}
}

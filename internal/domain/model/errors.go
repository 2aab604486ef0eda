package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every typed error below unwraps to one of them.
var (
	ErrSchema    = errors.New("schema error")
	ErrIntegrity = errors.New("integrity error")
	ErrConfig    = errors.New("config error")
	ErrGradeBand = errors.New("grade band error")
)

// MaxOffenders caps the rows carried by an IntegrityError.
const MaxOffenders = 5

// SchemaError reports required columns missing from a table.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: table %q is missing required columns: %s", ErrSchema, e.Table, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// Offender is one row that broke an integrity rule.
type Offender struct {
	ID    string
	Line  int
	Value string
}

func (o Offender) String() string {
	if o.Value == "" {
		return fmt.Sprintf("line %d id=%q", o.Line, o.ID)
	}
	return fmt.Sprintf("line %d id=%q value=%q", o.Line, o.ID, o.Value)
}

// IntegrityError reports a data rule violation with up to MaxOffenders rows.
type IntegrityError struct {
	Table     string
	Rule      string
	Offending []Offender
	Total     int
}

// NewIntegrityError keeps the first MaxOffenders offenders and the total count.
func NewIntegrityError(table, rule string, offenders []Offender) *IntegrityError {
	e := &IntegrityError{Table: table, Rule: rule, Total: len(offenders)}
	if len(offenders) > MaxOffenders {
		offenders = offenders[:MaxOffenders]
	}
	e.Offending = append([]Offender(nil), offenders...)
	return e
}

func (e *IntegrityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: table %q: %s (%d rows)", ErrIntegrity, e.Table, e.Rule, e.Total)
	for i, o := range e.Offending {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(o.String())
	}
	if e.Total > len(e.Offending) {
		fmt.Fprintf(&b, "; and %d more", e.Total-len(e.Offending))
	}
	return b.String()
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// GradeBandError reports a score below the lowest cutoff.
type GradeBandError struct {
	Score  float64
	Lowest float64
}

func (e *GradeBandError) Error() string {
	return fmt.Sprintf("%v: score %.1f is below the lowest cutoff %v", ErrGradeBand, e.Score, e.Lowest)
}

func (e *GradeBandError) Unwrap() error { return ErrGradeBand }

// Kind returns a short label for err, used in metrics and exit diagnostics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrGradeBand):
		return "grade_band"
	}
	return "other"
}

// ErrorTable returns the table named by a schema or integrity error, or "".
func ErrorTable(err error) string {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Table
	}
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie.Table
	}
	return ""
}

package model

import "strings"

// Table is a delimited-text table as read from disk. Cells are kept verbatim;
// stages that need canonical values trim them themselves.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// Row is one data row. Line is the 1-based line number in the source file
// (the header is line 1).
type Row struct {
	Line  int
	Cells []string
}

// Column returns the index of the named column, matching headers
// case-insensitively after trimming, or -1.
func (t *Table) Column(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool { return t.Column(name) >= 0 }

// Cell returns the cell at col, or "" when the row is short or col < 0.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

// Clone returns a deep copy so stages never mutate their input.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Name:   t.Name,
		Header: append([]string(nil), t.Header...),
		Rows:   make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{Line: r.Line, Cells: append([]string(nil), r.Cells...)}
	}
	return out
}

// Tables is the set of four input tables keyed by table name.
type Tables map[string]*Table

// Clone deep-copies every table.
func (ts Tables) Clone() Tables {
	out := make(Tables, len(ts))
	for name, t := range ts {
		out[name] = t.Clone()
	}
	return out
}

// SourceInfo fingerprints one input file.
type SourceInfo struct {
	Table  string `json:"table" yaml:"table"`
	Path   string `json:"path" yaml:"path"`
	SHA256 string `json:"sha256" yaml:"sha256"`
	Rows   int    `json:"rows" yaml:"rows"`
}

// Package source reads the input tables from delimited-text files.
package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ecoscore/internal/domain/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals // constant byte sequence

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(rd *Reader) {
		if r != 0 {
			rd.comma = r
		}
	}
}

// Reader loads tables and fingerprints the files they came from.
type Reader struct {
	comma rune
}

// NewReader creates a Reader with configuration options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{comma: ','}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Parse decodes one table from raw bytes. A leading UTF-8 BOM is dropped.
// An empty input yields a table without header, which fails the schema check.
func (r *Reader) Parse(name string, raw []byte) (*model.Table, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = r.comma
	cr.FieldsPerRecord = -1

	t := &model.Table{Name: name}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}
	t.Header = header

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, model.Row{Line: line, Cells: rec})
	}
	return t, nil
}

// ReadFile reads and fingerprints the table stored at path.
func (r *Reader) ReadFile(ctx context.Context, name, path string) (*model.Table, model.SourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.SourceInfo{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, model.SourceInfo{}, fmt.Errorf("%w: %s: %v", ErrRead, name, err)
	}
	t, err := r.Parse(name, raw)
	if err != nil {
		return nil, model.SourceInfo{}, err
	}
	sum := sha256.Sum256(raw)
	info := model.SourceInfo{
		Table:  name,
		Path:   path,
		SHA256: hex.EncodeToString(sum[:]),
		Rows:   len(t.Rows),
	}
	return t, info, nil
}

// ReadAll reads every table concurrently. Either all reads succeed or the
// first failure cancels the rest and is returned. Source infos come back
// in canonical table order.
func (r *Reader) ReadAll(ctx context.Context, files map[string]string) (model.Tables, []model.SourceInfo, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return tableOrder(names[i]) < tableOrder(names[j]) })

	tables := make([]*model.Table, len(names))
	infos := make([]model.SourceInfo, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			t, info, err := r.ReadFile(gctx, name, files[name])
			if err != nil {
				return err
			}
			tables[i], infos[i] = t, info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make(model.Tables, len(names))
	for i, name := range names {
		out[name] = tables[i]
	}
	return out, infos, nil
}

// tableOrder sorts products first, then metrics in scoring order, then anything else by name.
func tableOrder(name string) string {
	if name == model.TableProducts {
		return "0"
	}
	for i, m := range model.Metrics() {
		if m.Table() == name {
			return fmt.Sprintf("1%d", i)
		}
	}
	return "2" + name
}

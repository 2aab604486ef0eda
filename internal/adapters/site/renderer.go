// Package site renders the static catalog: an index page, one page per
// product, a stylesheet and one QR image per product.
package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/okian/ecoscore/internal/domain/model"
)

//go:embed templates/*
var templateFS embed.FS

const (
	defaultLang   = "fr"
	defaultYear   = 2025
	defaultQRSize = 256

	dirMode  = 0o755
	fileMode = 0o644
)

// Renderer writes the site files for a build.
type Renderer struct {
	lang   string
	year   int
	qrSize int
	labels Labels
	tmpl   *template.Template
	css    []byte
}

// NewRenderer creates a Renderer with configuration options.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{lang: defaultLang, year: defaultYear, qrSize: defaultQRSize}
	for _, opt := range opts {
		opt(r)
	}

	labels, ok := LabelsFor(r.lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLang, r.lang)
	}
	r.labels = labels

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: parse templates: %v", ErrRender, err)
	}
	r.tmpl = tmpl

	css, err := templateFS.ReadFile("templates/style.css")
	if err != nil {
		return nil, fmt.Errorf("%w: read stylesheet: %v", ErrRender, err)
	}
	r.css = css
	return r, nil
}

type indexPage struct {
	Lang    string
	Year    int
	T       Labels
	Records []model.ScoredRecord
	BuiltAt time.Time
}

type productPage struct {
	Lang      string
	Year      int
	T         Labels
	Record    model.ScoredRecord
	Defaulted map[string]bool
}

// Render writes the site for m into dir, which must exist. Records keep
// their manifest order on the index page.
func (r *Renderer) Render(ctx context.Context, dir string, m model.Manifest) error {
	if err := r.writeFile(filepath.Join(dir, "assets", "style.css"), r.css); err != nil {
		return err
	}

	if err := r.execute(filepath.Join(dir, "index.html"), "index.html.tmpl", indexPage{
		Lang:    r.lang,
		Year:    r.year,
		T:       r.labels,
		Records: m.Records,
		BuiltAt: m.BuiltAt.UTC(),
	}); err != nil {
		return err
	}

	for _, rec := range m.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.product(dir, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) product(dir string, rec model.ScoredRecord) error {
	defaulted := make(map[string]bool, len(rec.Defaulted))
	for _, m := range rec.Defaulted {
		defaulted[string(m)] = true
	}
	page := productPage{Lang: r.lang, Year: r.year, T: r.labels, Record: rec, Defaulted: defaulted}
	if err := r.execute(filepath.Join(dir, "p", rec.Slug, "index.html"), "product.html.tmpl", page); err != nil {
		return err
	}

	png, err := qrcode.Encode(rec.URL, qrcode.Medium, r.qrSize)
	if err != nil {
		return fmt.Errorf("%w: qr for %s: %v", ErrRender, rec.ID, err)
	}
	return r.writeFile(filepath.Join(dir, "qr", rec.Slug+".png"), png)
}

func (r *Renderer) execute(path, name string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := r.tmpl.ExecuteTemplate(f, name, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

func (r *Renderer) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/ecoscore/internal/domain/model"
)

const scoresSchema = `
CREATE TABLE scores (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	grade TEXT NOT NULL,
	score REAL NOT NULL,
	base_kgco2e REAL NOT NULL,
	distance_km REAL NOT NULL,
	biodiversity_risk REAL NOT NULL,
	defaulted TEXT NOT NULL,
	url TEXT NOT NULL,
	build_id TEXT NOT NULL
);
CREATE INDEX idx_scores_grade ON scores(grade);
CREATE TABLE sources (
	name TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	sha256 TEXT NOT NULL,
	rows INTEGER NOT NULL
);
`

// WriteSQLite writes the records into a fresh database at path, replacing
// any previous file. The whole load runs in one transaction.
func WriteSQLite(ctx context.Context, path string, m model.Manifest) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("%w: sqlite open: %v", ErrWrite, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, scoresSchema); err != nil {
		return fmt.Errorf("%w: sqlite schema: %v", ErrWrite, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: sqlite: %v", ErrWrite, err)
	}
	if err := insertAll(ctx, tx, m); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: sqlite insert: %v", ErrWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: sqlite commit: %v", ErrWrite, err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, m model.Manifest) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scores
		(id, name, slug, grade, score, base_kgco2e, distance_km, biodiversity_risk, defaulted, url, build_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range m.Records {
		defaulted := make([]string, len(r.Defaulted))
		for i, d := range r.Defaulted {
			defaulted[i] = string(d)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.Slug, r.Grade, r.Score,
			r.BaseKgCO2e, r.DistanceKm, r.BiodiversityRisk, strings.Join(defaulted, ","), r.URL, m.BuildID); err != nil {
			return fmt.Errorf("%s: %w", r.ID, err)
		}
	}

	for _, s := range m.Sources {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sources (name, path, sha256, rows) VALUES (?, ?, ?, ?)`,
			s.Table, s.Path, s.SHA256, s.Rows); err != nil {
			return fmt.Errorf("source %s: %w", s.Table, err)
		}
	}
	return nil
}

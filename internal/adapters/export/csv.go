package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/okian/ecoscore/internal/domain/model"
)

// ScoreColumns is the header of scores.csv.
func ScoreColumns() []string {
	return []string{"id", "name", "grade", "score", "base_kgco2e", "distance_km", "biodiversity_risk", "url"}
}

// WriteCSV writes one row per record in record order.
func WriteCSV(path string, records []model.ScoredRecord) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := writeCSV(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: csv: %v", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func writeCSV(out io.Writer, records []model.ScoredRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(ScoreColumns()); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{
			r.ID,
			r.Name,
			r.Grade,
			strconv.FormatFloat(r.Score, 'f', 1, 64),
			formatFloat(r.BaseKgCO2e),
			formatFloat(r.DistanceKm),
			formatFloat(r.BiodiversityRisk),
			r.URL,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

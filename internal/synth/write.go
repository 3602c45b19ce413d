package synth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// WriteDir writes the cohort as one Parquet file per table under dir,
// creating the directory if needed. All seven files are written; the
// optional tables are only optional on the read side.
func WriteDir(dir string, c *Cohort) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cohort dir: %w", err)
	}
	if err := writeTable(dir, "hospitalization.parquet", c.Hospitalizations); err != nil {
		return err
	}
	if err := writeTable(dir, "blood_cultures.parquet", c.BloodCultures); err != nil {
		return err
	}
	if err := writeTable(dir, "antimicrobials.parquet", c.Antimicrobials); err != nil {
		return err
	}
	if err := writeTable(dir, "labs.parquet", c.Labs); err != nil {
		return err
	}
	if err := writeTable(dir, "continuous_meds.parquet", c.ContinuousMeds); err != nil {
		return err
	}
	if err := writeTable(dir, "respiratory_support.parquet", c.RespiratorySupport); err != nil {
		return err
	}
	return writeTable(dir, "patient.parquet", c.Patients)
}

func writeTable[T any](dir, name string, rows []T) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close %s: %w", name, err)
	}
	return f.Close()
}

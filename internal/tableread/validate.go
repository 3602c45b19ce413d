package tableread

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/sepsislab/asewatch/internal/model"
)

// MissingTableError reports a required table file absent from the cohort
// directory.
type MissingTableError struct {
	Table string
	Path  string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("required table %q not found at %s", e.Table, e.Path)
}

// CheckDir verifies that every required table file exists under dir and
// reports which optional tables are present. Missing optional tables are
// not an error; the criteria they feed are disabled downstream.
func CheckDir(dir string) (present map[string]bool, err error) {
	present = make(map[string]bool, len(model.AllTables))
	for _, t := range model.AllTables {
		path := filepath.Join(dir, t.FileName)
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			present[t.Name] = true
		case os.IsNotExist(statErr):
			if t.Required {
				return nil, &MissingTableError{Table: t.Name, Path: path}
			}
		default:
			return nil, fmt.Errorf("stat %s: %w", path, statErr)
		}
	}
	return present, nil
}

// ValidateSchema checks that a file's Parquet schema carries every column
// the table contract names.
func ValidateSchema(schema *parquet.Schema, t model.Table) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}
	for _, col := range t.Columns {
		if !columns[col] {
			return fmt.Errorf("table %s: missing required column %q", t.Name, col)
		}
	}
	return nil
}

// Inspect validates a table file's schema and returns its row count
// without committing to a row type. Preflight uses it to reject a bad
// cohort directory before anything is loaded.
func Inspect(path string, t model.Table) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return 0, fmt.Errorf("open parquet: %w", err)
	}

	if err := ValidateSchema(pf.Schema(), t); err != nil {
		return 0, err
	}
	return pf.NumRows(), nil
}

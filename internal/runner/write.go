package runner

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/sepsislab/asewatch/internal/model"
)

// writeBatchSize bounds the conversion buffer so a large cohort's output
// is not duplicated in memory as file rows.
const writeBatchSize = 10_000

// WriteParquet writes the determinations to path, Snappy-compressed, and
// returns the number of rows written.
func WriteParquet(path string, rows []model.ResultRow) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	w := parquet.NewGenericWriter[model.ResultFileRow](f, parquet.Compression(&parquet.Snappy))

	var written int64
	batch := make([]model.ResultFileRow, 0, writeBatchSize)
	for i := range rows {
		batch = append(batch, rows[i].FileRow())
		if len(batch) == writeBatchSize {
			if _, err := w.Write(batch); err != nil {
				f.Close()
				return written, fmt.Errorf("write output rows: %w", err)
			}
			written += int64(len(batch))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := w.Write(batch); err != nil {
			f.Close()
			return written, fmt.Errorf("write output rows: %w", err)
		}
		written += int64(len(batch))
	}

	if err := w.Close(); err != nil {
		f.Close()
		return written, fmt.Errorf("close output writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close output file: %w", err)
	}
	return written, nil
}

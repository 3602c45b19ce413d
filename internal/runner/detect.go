package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sepsislab/asewatch/internal/ase"
	"github.com/sepsislab/asewatch/internal/model"
)

// DetectAll fans the per-hospitalization engine out across workers.
// Each record's rows land in a slot indexed by record position, so the
// combined output order never depends on scheduling.
func DetectAll(ctx context.Context, recs []*model.HospitalizationRecord, p ase.Params, workers int) ([]model.ResultRow, error) {
	slots := make([][]model.ResultRow, len(recs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			slots[i] = ase.Detect(rec, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	rows := make([]model.ResultRow, 0, total)
	for _, s := range slots {
		rows = append(rows, s...)
	}
	return rows, nil
}

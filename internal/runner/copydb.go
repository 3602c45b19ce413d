package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/sepsislab/asewatch/internal/db"
	"github.com/sepsislab/asewatch/internal/model"
)

const copyBatchSize = 1024

// CopyEpisodes streams the determinations into ase.episodes through the
// COPY protocol, stamping each row with the run id. Returns the number
// of rows the server acknowledged.
func CopyEpisodes(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID, rows []model.ResultRow) (int64, error) {
	start := time.Now()

	// The derived cancel unblocks the producer if COPY stops consuming
	// before the channel drains.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan *model.ResultRow, copyBatchSize)
	errCh := make(chan error, 1)

	// Producer goroutine: stamp run_id → push to channel
	go func() {
		defer close(ch)
		for i := range rows {
			r := rows[i]
			r.RunID = runID
			select {
			case ch <- &r:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	// Consumer: COPY from channel into the episodes table
	source := db.NewChannelSource(ch)
	copied, copyErr := pool.CopyFrom(ctx,
		pgx.Identifier{"ase", "episodes"},
		model.ResultColumns(),
		source,
	)

	cancel()
	prodErr := <-errCh
	if copyErr != nil {
		return 0, fmt.Errorf("copy episodes: %w", copyErr)
	}
	if prodErr != nil {
		return 0, fmt.Errorf("copy producer: %w", prodErr)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_copied", copied).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(copied)/dur.Seconds()).
		Msg("episode copy complete")

	return copied, nil
}

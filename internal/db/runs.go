package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sepsislab/asewatch/internal/model"
	embedsql "github.com/sepsislab/asewatch/internal/sql"
)

// RegisterRun inserts a new run in 'running' status. params is stored as
// jsonb so a stored run records exactly which windows and toggles
// produced it.
func RegisterRun(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, inputDir, fingerprint string, params any) error {
	pj, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal run params: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.RegisterRun, runID, inputDir, fingerprint, pj); err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	return nil
}

// CompletedRun looks up the most recent completed run over the same
// input fingerprint. ok is false when none exists.
func CompletedRun(ctx context.Context, pool *pgxpool.Pool, fingerprint string) (runID uuid.UUID, finishedAt time.Time, ok bool, err error) {
	row := pool.QueryRow(ctx, embedsql.LookupCompletedRun, fingerprint)
	if err := row.Scan(&runID, &finishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, false, nil
		}
		return uuid.Nil, time.Time{}, false, fmt.Errorf("lookup completed run: %w", err)
	}
	return runID, finishedAt, true, nil
}

// UpdateRunStatus sets the run's status column.
func UpdateRunStatus(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateRunStatus, runID, status)
	return err
}

// CompleteRun marks the run complete and records its counts.
func CompleteRun(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, s *model.RunSummary) error {
	_, err := pool.Exec(ctx, embedsql.CompleteRun, runID,
		s.Hospitalizations, s.AnchorsEvaluated, s.RowsOut, s.SepsisRows, s.CountedEpisodes)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// DeleteRun removes a run and, through the cascade, its episodes.
func DeleteRun(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID) error {
	_, err := pool.Exec(ctx, embedsql.DeleteRun, runID)
	return err
}

// CountRunEpisodes returns the number of episode rows stored for a run.
func CountRunEpisodes(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID) (int64, error) {
	var n int64
	if err := pool.QueryRow(ctx, embedsql.CountRunEpisodes, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count run episodes: %w", err)
	}
	return n, nil
}

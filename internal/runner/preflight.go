package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/sepsislab/asewatch/internal/config"
	"github.com/sepsislab/asewatch/internal/db"
	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/normalize"
	"github.com/sepsislab/asewatch/internal/tableread"
)

// PreflightResult holds everything resolved before any table is loaded:
// which tables exist, their digests and row counts, the fingerprint of
// the whole set, and the run registration when a database is attached.
type PreflightResult struct {
	InputDir     string
	Present      map[string]bool
	TableDigests map[string]string
	TableRows    map[string]int64
	Fingerprint  string
	RunID        uuid.UUID

	// AlreadyRun is set when a completed run with the same fingerprint
	// exists and force mode is off. PriorRunID names that run.
	AlreadyRun bool
	PriorRunID uuid.UUID
}

// Preflight checks the cohort directory, fingerprints it, and registers
// the run. With a nil pool the registry is skipped and a fresh run id is
// still minted for logging and the summary.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*PreflightResult, error) {
	present, err := tableread.CheckDir(cfg.InputDir)
	if err != nil {
		return nil, err
	}

	digests := make(map[string]string, len(present))
	tableRows := make(map[string]int64, len(present))
	for _, t := range model.AllTables {
		if !present[t.Name] {
			continue
		}
		path := filepath.Join(cfg.InputDir, t.FileName)

		sha, err := normalize.FileHash(path)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", t.FileName, err)
		}
		digests[t.Name] = sha

		n, err := tableread.Inspect(path, t)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", t.FileName, err)
		}
		tableRows[t.Name] = n
	}

	pf := &PreflightResult{
		InputDir:     cfg.InputDir,
		Present:      present,
		TableDigests: digests,
		TableRows:    tableRows,
		Fingerprint:  normalize.Fingerprint(digests),
	}
	log.Info().
		Int("tables", len(digests)).
		Str("fingerprint", pf.Fingerprint).
		Msg("cohort directory validated")
	for _, t := range model.AllTables {
		if !t.Required && !present[t.Name] {
			log.Warn().Str("table", t.Name).Msg("optional table missing, dependent criteria disabled")
		}
	}

	if pool != nil {
		prior, _, ok, err := db.CompletedRun(ctx, pool, pf.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("look up completed run: %w", err)
		}
		if ok && !cfg.Force {
			pf.AlreadyRun = true
			pf.PriorRunID = prior
			return pf, nil
		}
	}

	pf.RunID = uuid.New()
	if pool != nil {
		if err := db.RegisterRun(ctx, pool, pf.RunID, cfg.InputDir, pf.Fingerprint, cfg.Params()); err != nil {
			return nil, fmt.Errorf("register run: %w", err)
		}
	}
	return pf, nil
}

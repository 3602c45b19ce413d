package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/sepsislab/asewatch/internal/config"
	"github.com/sepsislab/asewatch/internal/db"
	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/normalize"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full detection pipeline: preflight → load → normalize
// → detect → write → copy. pool may be nil, which skips the run registry
// and the episode COPY and leaves the Parquet file as the only sink.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.RunSummary, error) {
	totalStart := time.Now()

	log.Info().Str("input", cfg.InputDir).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, cfg)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyRun {
		log.Info().
			Str("run_id", pf.PriorRunID.String()).
			Str("fingerprint", pf.Fingerprint).
			Msg("input already processed, skipping (use --force to re-run)")
		return &model.RunSummary{
			RunID:            pf.PriorRunID.String(),
			InputDir:         cfg.InputDir,
			InputFingerprint: pf.Fingerprint,
			DurationTotal:    time.Since(totalStart),
		}, nil
	}

	fail := func() {
		if pool != nil {
			_ = db.UpdateRunStatus(ctx, pool, pf.RunID, "failed")
		}
	}

	// Phase 2: load
	log.Info().Msg("loading cohort tables")
	loadStart := time.Now()
	raw, err := Load(cfg.InputDir, pf.Present)
	if err != nil {
		fail()
		return nil, &PipelineError{Phase: "load", Err: err}
	}
	durLoad := time.Since(loadStart)

	// Phase 3: normalize
	normStart := time.Now()
	recs, stats := normalize.BuildRecords(raw)
	durNormalize := time.Since(normStart)
	droppedAnchors := stats.NonBloodCultures
	for hospID, n := range stats.DroppedCultures {
		droppedAnchors += int64(n)
		log.Warn().
			Str("hospitalization_id", hospID).
			Int("dropped", n).
			Msg("blood cultures without a usable timestamp")
	}
	log.Info().
		Int64("hospitalizations", stats.Hospitalizations).
		Int64("anchors", stats.AnchorsKept).
		Int64("dropped_anchors", droppedAnchors).
		Int64("orphan_events", stats.OrphanEvents).
		Int64("outlier_labs", stats.OutlierLabs).
		Int64("filtered_meds", stats.FilteredMeds).
		Str("duration", durNormalize.String()).
		Msg("normalize complete")

	// Phase 4: detect
	log.Info().Int("workers", cfg.Workers).Msg("starting detection")
	detectStart := time.Now()
	rows, err := DetectAll(ctx, recs, cfg.Params(), cfg.Workers)
	if err != nil {
		fail()
		return nil, &PipelineError{Phase: "detect", Err: err}
	}
	durDetect := time.Since(detectStart)

	summary := &model.RunSummary{
		RunID:             pf.RunID.String(),
		InputDir:          cfg.InputDir,
		InputFingerprint:  pf.Fingerprint,
		Hospitalizations:  stats.Hospitalizations,
		AnchorsEvaluated:  stats.AnchorsKept,
		DroppedAnchors:    droppedAnchors,
		DurationLoad:      durLoad,
		DurationNormalize: durNormalize,
		DurationDetect:    durDetect,
	}
	tally(summary, rows)

	// Phase 5: write the episodes file
	log.Info().Str("path", cfg.OutputPath).Msg("writing episodes file")
	writeStart := time.Now()
	written, err := WriteParquet(cfg.OutputPath, rows)
	if err != nil {
		fail()
		return nil, &PipelineError{Phase: "write", Err: err}
	}
	summary.RowsWritten = written
	summary.DurationWrite = time.Since(writeStart)

	// Phase 6: copy to the database and close out the run
	if pool != nil {
		copyStart := time.Now()
		copied, err := CopyEpisodes(ctx, pool, log, pf.RunID, rows)
		if err != nil {
			fail()
			return nil, &PipelineError{Phase: "copy", Err: err}
		}
		summary.RowsCopied = copied
		summary.DurationCopy = time.Since(copyStart)

		if err := db.CompleteRun(ctx, pool, pf.RunID, summary); err != nil {
			return nil, &PipelineError{Phase: "copy", Err: err}
		}
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Str("run_id", summary.RunID).
		Int64("rows_out", summary.RowsOut).
		Int64("sepsis_rows", summary.SepsisRows).
		Int64("counted_episodes", summary.CountedEpisodes).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("detection pipeline complete")

	return summary, nil
}

// tally derives the output counts. Counted episodes are the distinct
// (hospitalization, episode) pairs, so suppressed repeats collapse into
// their opener.
func tally(s *model.RunSummary, rows []model.ResultRow) {
	type key struct {
		hosp string
		id   int
	}
	seen := make(map[key]struct{})
	for i := range rows {
		if rows[i].Sepsis {
			s.SepsisRows++
		}
		if rows[i].EpisodeID != nil {
			seen[key{rows[i].HospitalizationID, *rows[i].EpisodeID}] = struct{}{}
		}
	}
	s.RowsOut = int64(len(rows))
	s.CountedEpisodes = int64(len(seen))
}

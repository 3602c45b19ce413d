package runner_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sepsislab/asewatch/internal/db"
	"github.com/sepsislab/asewatch/internal/logging"
	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/runner"
	"github.com/sepsislab/asewatch/internal/tableread"
)

const (
	testPort     = 15432
	testDB       = "asetest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB creates a connection pool on a clean, migrated schema.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS ase CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	log := logging.Setup("text")
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestMigrationsIdempotent(t *testing.T) {
	pool := setupDB(t)
	// setupDB already applied them once.
	if err := db.ApplyMigrations(context.Background(), pool, logging.Setup("text")); err != nil {
		t.Fatalf("second apply: %v", err)
	}
}

func TestEndToEnd_DatabaseRun(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	dir := writeCohort(t, 11)
	cfg := cohortConfig(t, dir)
	cfg.DSN = testDSN

	summary, err := runner.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	runID, err := uuid.Parse(summary.RunID)
	if err != nil {
		t.Fatalf("run id: %v", err)
	}

	t.Run("summary_metrics", func(t *testing.T) {
		if summary.RowsOut != 11 || summary.RowsCopied != 11 || summary.RowsWritten != 11 {
			t.Errorf("rows out/copied/written = %d/%d/%d, want 11 each",
				summary.RowsOut, summary.RowsCopied, summary.RowsWritten)
		}
		if summary.SepsisRows != 6 || summary.CountedEpisodes != 5 {
			t.Errorf("sepsis/episodes = %d/%d, want 6/5", summary.SepsisRows, summary.CountedEpisodes)
		}
	})

	t.Run("episode_count", func(t *testing.T) {
		n, err := db.CountRunEpisodes(ctx, pool, runID)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 11 {
			t.Errorf("episodes = %d, want 11", n)
		}
	})

	t.Run("run_row_complete", func(t *testing.T) {
		var status, fingerprint string
		var hospitalizations, sepsisRows, countedEpisodes int64
		var finishedAt *time.Time
		err := pool.QueryRow(ctx,
			`SELECT status, input_fingerprint, hospitalizations, sepsis_rows, counted_episodes, finished_at
			 FROM ase.runs WHERE run_id = $1`, runID).
			Scan(&status, &fingerprint, &hospitalizations, &sepsisRows, &countedEpisodes, &finishedAt)
		if err != nil {
			t.Fatalf("query run: %v", err)
		}
		if status != "complete" {
			t.Errorf("status = %q, want complete", status)
		}
		if fingerprint != summary.InputFingerprint {
			t.Errorf("fingerprint mismatch: %q vs %q", fingerprint, summary.InputFingerprint)
		}
		if hospitalizations != 11 || sepsisRows != 6 || countedEpisodes != 5 {
			t.Errorf("counts = %d/%d/%d, want 11/6/5", hospitalizations, sepsisRows, countedEpisodes)
		}
		if finishedAt == nil {
			t.Error("finished_at should be set")
		}
	})

	t.Run("known_determination", func(t *testing.T) {
		var sepsis bool
		var onsetType string
		var criterion *string
		var episodeID *int32
		err := pool.QueryRow(ctx,
			`SELECT sepsis, type, ase_first_criteria_w_lactate, episode_id
			 FROM ase.episodes WHERE run_id = $1 AND hospitalization_id = 'H0001'`, runID).
			Scan(&sepsis, &onsetType, &criterion, &episodeID)
		if err != nil {
			t.Fatalf("query episode: %v", err)
		}
		if !sepsis || onsetType != "community" {
			t.Errorf("sepsis=%v type=%s, want true/community", sepsis, onsetType)
		}
		if criterion == nil || *criterion != "aki" {
			t.Errorf("criterion = %v, want aki", criterion)
		}
		if episodeID == nil || *episodeID != 1 {
			t.Errorf("episode_id = %v, want 1", episodeID)
		}
	})

	t.Run("file_and_database_parity", func(t *testing.T) {
		fileRows, err := tableread.ReadAll[model.ResultFileRow](cfg.OutputPath)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}

		type key struct {
			hosp string
			bcid int32
		}
		dbSepsis := make(map[key]bool)
		rows, err := pool.Query(ctx,
			"SELECT hospitalization_id, bc_id, sepsis FROM ase.episodes WHERE run_id = $1", runID)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			var k key
			var sepsis bool
			if err := rows.Scan(&k.hosp, &k.bcid, &sepsis); err != nil {
				t.Fatalf("scan: %v", err)
			}
			dbSepsis[k] = sepsis
		}

		if len(dbSepsis) != len(fileRows) {
			t.Fatalf("db has %d rows, file has %d", len(dbSepsis), len(fileRows))
		}
		for _, fr := range fileRows {
			got, ok := dbSepsis[key{fr.HospitalizationID, fr.BCID}]
			if !ok {
				t.Errorf("file row %s/%d missing from database", fr.HospitalizationID, fr.BCID)
				continue
			}
			if got != fr.Sepsis {
				t.Errorf("%s/%d: sepsis %v in db, %v in file", fr.HospitalizationID, fr.BCID, got, fr.Sepsis)
			}
		}
	})
}

func TestEndToEnd_FingerprintSkip(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	dir := writeCohort(t, 11)
	cfg := cohortConfig(t, dir)
	cfg.DSN = testDSN

	first, err := runner.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	second, err := runner.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.RowsOut != 0 || second.RowsCopied != 0 {
		t.Errorf("second run should skip, got rows out/copied %d/%d", second.RowsOut, second.RowsCopied)
	}
	if second.RunID != first.RunID {
		t.Errorf("skip should report the prior run id: %s vs %s", second.RunID, first.RunID)
	}

	var completed int64
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM ase.runs WHERE status = 'complete'").Scan(&completed); err != nil {
		t.Fatalf("query: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed runs = %d, want 1", completed)
	}

	var episodes int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM ase.episodes").Scan(&episodes); err != nil {
		t.Fatalf("query: %v", err)
	}
	if episodes != 11 {
		t.Errorf("episodes = %d, want 11 after skipped rerun", episodes)
	}
}

func TestEndToEnd_ForceRerun(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	dir := writeCohort(t, 11)
	cfg := cohortConfig(t, dir)
	cfg.DSN = testDSN

	first, err := runner.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	cfg.Force = true
	second, err := runner.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if second.RunID == first.RunID {
		t.Error("forced rerun should register a new run")
	}
	if second.RowsCopied != 11 {
		t.Errorf("forced rerun copied %d rows, want 11", second.RowsCopied)
	}

	var episodes, completed int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM ase.episodes").Scan(&episodes); err != nil {
		t.Fatalf("query: %v", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM ase.runs WHERE status = 'complete'").Scan(&completed); err != nil {
		t.Fatalf("query: %v", err)
	}
	if episodes != 22 || completed != 2 {
		t.Errorf("episodes/completed = %d/%d, want 22/2", episodes, completed)
	}
}

func TestRunRegistry(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	const fp = "fp-registry-test"

	t.Run("running_run_is_not_found", func(t *testing.T) {
		runID := uuid.New()
		if err := db.RegisterRun(ctx, pool, runID, "/data/a", fp, map[string]int{"organ_window_days": 2}); err != nil {
			t.Fatalf("register: %v", err)
		}
		if _, _, ok, err := db.CompletedRun(ctx, pool, fp); err != nil || ok {
			t.Errorf("lookup = (%v, %v), want not found", ok, err)
		}

		if err := db.UpdateRunStatus(ctx, pool, runID, "failed"); err != nil {
			t.Fatalf("update status: %v", err)
		}
		if _, _, ok, _ := db.CompletedRun(ctx, pool, fp); ok {
			t.Error("failed run must not satisfy the fingerprint lookup")
		}
	})

	t.Run("completed_run_found_and_deleted", func(t *testing.T) {
		runID := uuid.New()
		if err := db.RegisterRun(ctx, pool, runID, "/data/a", fp, map[string]int{}); err != nil {
			t.Fatalf("register: %v", err)
		}
		summary := &model.RunSummary{Hospitalizations: 2, AnchorsEvaluated: 3, RowsOut: 3, SepsisRows: 1, CountedEpisodes: 1}
		if err := db.CompleteRun(ctx, pool, runID, summary); err != nil {
			t.Fatalf("complete: %v", err)
		}

		gotID, finishedAt, ok, err := db.CompletedRun(ctx, pool, fp)
		if err != nil || !ok {
			t.Fatalf("lookup = (%v, %v), want found", ok, err)
		}
		if gotID != runID {
			t.Errorf("lookup id = %s, want %s", gotID, runID)
		}
		if finishedAt.IsZero() {
			t.Error("finished_at should be populated")
		}

		rows := []model.ResultRow{
			{HospitalizationID: "H1", BCID: 1, Type: model.OnsetCommunity,
				BloodCultureDTTM: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
			{HospitalizationID: "H1", BCID: 2, Type: model.OnsetHospital,
				BloodCultureDTTM: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
		}
		copied, err := runner.CopyEpisodes(ctx, pool, log, runID, rows)
		if err != nil {
			t.Fatalf("copy: %v", err)
		}
		if copied != 2 {
			t.Errorf("copied = %d, want 2", copied)
		}
		if n, _ := db.CountRunEpisodes(ctx, pool, runID); n != 2 {
			t.Errorf("episode count = %d, want 2", n)
		}

		if err := db.DeleteRun(ctx, pool, runID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if n, _ := db.CountRunEpisodes(ctx, pool, runID); n != 0 {
			t.Errorf("episodes should cascade on delete, got %d", n)
		}
		if _, _, ok, _ := db.CompletedRun(ctx, pool, fp); ok {
			t.Error("deleted run must not satisfy the fingerprint lookup")
		}
	})
}

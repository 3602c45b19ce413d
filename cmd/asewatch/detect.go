package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sepsislab/asewatch/internal/db"
	"github.com/sepsislab/asewatch/internal/exitcode"
	"github.com/sepsislab/asewatch/internal/logging"
	"github.com/sepsislab/asewatch/internal/runner"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run sepsis event detection over a cohort directory",
	RunE:  runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.StringVar(&cfg.InputDir, "input", "", "Cohort directory of Parquet tables (required)")
	f.StringVar(&cfg.OutputPath, "out", "", "Output Parquet path (default <input>/ase_episodes.parquet)")
	f.IntVar(&cfg.Workers, "workers", 0, "Detection workers (default GOMAXPROCS)")
	f.BoolVar(&cfg.Force, "force", false, "Re-run even if this input fingerprint already completed")
	f.BoolVar(&cfg.IncludeLactate, "include-lactate", true, "Let elevated lactate qualify as the sepsis criterion")
	f.BoolVar(&cfg.ApplyRIT, "apply-rit", true, "Collapse repeat events inside the 14-day infection window")
	f.BoolVar(&cfg.RITOnlyHospitalOnset, "rit-only-hospital-onset", false, "Apply the repeat window to hospital-onset events only")
	_ = detectCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	// The database is optional for detect; without a DSN the Parquet
	// file is the only sink and the run registry is skipped.
	var pool *pgxpool.Pool
	if cfg.DSN != "" {
		var err error
		pool, err = db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
	}

	summary, err := runner.Run(ctx, pool, log, &cfg)
	if err != nil {
		var pe *runner.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("detection failed")
			switch pe.Phase {
			case "preflight", "load":
				os.Exit(exitcode.ValidationError)
			case "write":
				os.Exit(exitcode.WriteError)
			case "copy":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.DetectError)
			}
		}
		log.Error().Err(err).Msg("detection failed")
		os.Exit(exitcode.DetectError)
	}

	fmt.Printf("Detection complete: %d hospitalizations, %d determinations, %d sepsis (%.1fs)\n",
		summary.Hospitalizations, summary.RowsOut, summary.SepsisRows, summary.DurationTotal.Seconds())
	return nil
}

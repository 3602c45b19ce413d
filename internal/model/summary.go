package model

import "time"

// RunSummary captures metrics from a single detection run.
type RunSummary struct {
	RunID            string
	InputDir         string
	InputFingerprint string

	Hospitalizations int64
	AnchorsEvaluated int64
	DroppedAnchors   int64
	RowsOut          int64
	SepsisRows       int64
	CountedEpisodes  int64
	RowsWritten      int64
	RowsCopied       int64

	DurationLoad      time.Duration
	DurationNormalize time.Duration
	DurationDetect    time.Duration
	DurationWrite     time.Duration
	DurationCopy      time.Duration
	DurationTotal     time.Duration
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultRow is one output determination, one per (hospitalization_id,
// bc_id). The same struct feeds both sinks: CopyValues for the Postgres
// COPY path and FileRow for the Parquet path. RunID is only meaningful
// for database rows and is stamped by the runner just before COPY.
type ResultRow struct {
	RunID uuid.UUID

	HospitalizationID string
	BCID              int
	EpisodeID         *int
	Type              OnsetType

	PresumedInfection bool
	Sepsis            bool
	SepsisWoLactate   bool
	NoSepsisReason    *string

	BloodCultureDTTM  time.Time
	ASEOnsetDTTM      *time.Time
	ASEFirstCriterion *string

	TotalQAD           int
	QADStartDate       *time.Time
	QADEndDate         *time.Time
	AnchorMedsInWindow int

	Censored     bool
	CensorReason *string
}

// ResultColumns returns the ordered column names for COPY into ase.episodes.
func ResultColumns() []string {
	return []string{
		"run_id",
		"hospitalization_id",
		"bc_id",
		"episode_id",
		"type",
		"presumed_infection",
		"sepsis",
		"sepsis_wo_lactate",
		"no_sepsis_reason",
		"blood_culture_dttm",
		"ase_onset_w_lactate_dttm",
		"ase_first_criteria_w_lactate",
		"total_qad",
		"qad_start_date",
		"qad_end_date",
		"anchor_meds_in_window",
		"censored",
		"censor_reason",
	}
}

// CopyValues returns the row values in ResultColumns() order, suitable
// for pgx CopyFromSource.
func (r *ResultRow) CopyValues() []any {
	return []any{
		r.RunID,
		r.HospitalizationID,
		int32(r.BCID),
		intPtr32(r.EpisodeID),
		string(r.Type),
		r.PresumedInfection,
		r.Sepsis,
		r.SepsisWoLactate,
		r.NoSepsisReason,
		r.BloodCultureDTTM,
		r.ASEOnsetDTTM,
		r.ASEFirstCriterion,
		int32(r.TotalQAD),
		r.QADStartDate,
		r.QADEndDate,
		int32(r.AnchorMedsInWindow),
		r.Censored,
		r.CensorReason,
	}
}

const (
	dttmLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

// ResultFileRow is the Parquet representation of a ResultRow. Timestamps
// are RFC 3339 strings and dates are yyyy-mm-dd, matching the input
// contract, so the output round-trips through the same readers.
type ResultFileRow struct {
	HospitalizationID string  `parquet:"hospitalization_id"`
	BCID              int32   `parquet:"bc_id"`
	EpisodeID         *int32  `parquet:"episode_id,optional"`
	Type              string  `parquet:"type"`
	PresumedInfection bool    `parquet:"presumed_infection"`
	Sepsis            bool    `parquet:"sepsis"`
	SepsisWoLactate   bool    `parquet:"sepsis_wo_lactate"`
	NoSepsisReason    *string `parquet:"no_sepsis_reason,optional"`
	BloodCultureDTTM  string  `parquet:"blood_culture_dttm"`
	ASEOnsetDTTM      *string `parquet:"ase_onset_w_lactate_dttm,optional"`
	ASEFirstCriterion *string `parquet:"ase_first_criteria_w_lactate,optional"`
	TotalQAD          int32   `parquet:"total_qad"`
	QADStartDate      *string `parquet:"qad_start_date,optional"`
	QADEndDate        *string `parquet:"qad_end_date,optional"`
	AnchorMeds        int32   `parquet:"anchor_meds_in_window"`
	Censored          bool    `parquet:"censored"`
	CensorReason      *string `parquet:"censor_reason,optional"`
}

// FileRow converts the row for Parquet output.
func (r *ResultRow) FileRow() ResultFileRow {
	return ResultFileRow{
		HospitalizationID: r.HospitalizationID,
		BCID:              int32(r.BCID),
		EpisodeID:         intPtr32(r.EpisodeID),
		Type:              string(r.Type),
		PresumedInfection: r.PresumedInfection,
		Sepsis:            r.Sepsis,
		SepsisWoLactate:   r.SepsisWoLactate,
		NoSepsisReason:    r.NoSepsisReason,
		BloodCultureDTTM:  r.BloodCultureDTTM.UTC().Format(dttmLayout),
		ASEOnsetDTTM:      fmtDTTM(r.ASEOnsetDTTM),
		ASEFirstCriterion: r.ASEFirstCriterion,
		TotalQAD:          int32(r.TotalQAD),
		QADStartDate:      fmtDate(r.QADStartDate),
		QADEndDate:        fmtDate(r.QADEndDate),
		AnchorMeds:        int32(r.AnchorMedsInWindow),
		Censored:          r.Censored,
		CensorReason:      r.CensorReason,
	}
}

func intPtr32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}

func fmtDTTM(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dttmLayout)
	return &s
}

func fmtDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

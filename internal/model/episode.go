package model

import "time"

// OnsetType classifies an episode relative to admission: community when
// onset falls within the first two days of the stay, hospital after.
type OnsetType string

const (
	OnsetCommunity OnsetType = "community"
	OnsetHospital  OnsetType = "hospital"
)

// Criterion labels one of the organ-dysfunction criteria.
type Criterion string

const (
	CriterionVasopressor        Criterion = "vasopressor"
	CriterionIMV                Criterion = "imv"
	CriterionAKI                Criterion = "aki"
	CriterionHyperbilirubinemia Criterion = "hyperbilirubinemia"
	CriterionThrombocytopenia   Criterion = "thrombocytopenia"
	CriterionLactate            Criterion = "lactate"
)

// CriteriaByPriority is the fixed tie-break order when two criteria
// qualify at the same instant. Evaluating the arena in this order keeps
// output deterministic across runs and platforms.
var CriteriaByPriority = []Criterion{
	CriterionVasopressor,
	CriterionIMV,
	CriterionAKI,
	CriterionHyperbilirubinemia,
	CriterionThrombocytopenia,
	CriterionLactate,
}

// Censor reasons for a qualifying-antimicrobial-day window cut short.
const (
	CensorNone          = ""
	CensorDeath         = "death"
	CensorHospice       = "hospice_transfer"
	CensorAcuteTransfer = "acute_transfer"
)

// No-sepsis reasons. When both components fail, the infection reason wins.
const (
	ReasonNoPresumedInfection = "no_presumed_infection"
	ReasonNoOrganDysfunction  = "no_organ_dysfunction"
)

// QADWindow is the per-anchor qualifying-antimicrobial-day result.
// StartDay and EndDay are calendar days (days since the Unix epoch) and
// are meaningful only when TotalQAD > 0. EndDay-StartDay equals the
// number of antimicrobial days minus one plus any bridged 1-day gaps.
type QADWindow struct {
	TotalQAD     int
	StartDay     int
	EndDay       int
	Censored     bool
	CensorReason string
	// MedsInWindow counts qualifying administrations (events, not days)
	// inside the full lookback/lookahead window.
	MedsInWindow int
}

// Baseline is the per-lab-kind reference value pair for one anchor.
// Community spans the whole stay, Hospital the anchor window; Selected
// follows the provisional onset classification.
type Baseline struct {
	Community *float64
	Hospital  *float64
	Selected  *float64
	Basis     OnsetType
}

// BaselineSet bundles the three baselines an anchor needs.
// PlateletEnabled is false when no platelet value >=100 exists anywhere
// in the stay, which disables the thrombocytopenia criterion.
type BaselineSet struct {
	Creatinine Baseline
	Bilirubin  Baseline
	Platelet   Baseline

	PlateletEnabled bool
	Provisional     OnsetType
}

// DysfunctionEvent is the earliest qualifying event for one criterion.
type DysfunctionEvent struct {
	Criterion Criterion
	EventDTTM time.Time
}

// Episode is one assembled determination for one blood-culture anchor,
// before and after the repeat-infection-timeframe pass. EpisodeID is nil
// for non-sepsis rows and shared across suppressed repeats.
type Episode struct {
	BC  BloodCulture
	QAD QADWindow

	PresumedInfection bool
	Sepsis            bool
	SepsisWoLactate   bool

	Winner          *DysfunctionEvent
	WinnerWoLactate *DysfunctionEvent

	Type           OnsetType
	NoSepsisReason *string

	EpisodeID  *int
	Suppressed bool
}

// OnsetOrCulture returns the time that orders this episode for the
// repeat-infection pass: the dysfunction onset when present, otherwise
// the culture collection time.
func (e *Episode) OnsetOrCulture() time.Time {
	if e.Winner != nil {
		return e.Winner.EventDTTM
	}
	return e.BC.CollectDTTM
}

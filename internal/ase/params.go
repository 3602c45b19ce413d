package ase

import "time"

// Params carries the detection windows and toggles. The defaults are the
// CDC Adult Sepsis Event values; they are named options so sensitivity
// analyses can vary them without touching the engine.
type Params struct {
	// OrganWindowDays bounds organ-dysfunction candidates (and the
	// hospital baseline) to +/- this many days around the anchor.
	OrganWindowDays int
	// QADLookbackDays / QADLookaheadDays bound the antimicrobial-day
	// window relative to the anchor's calendar day.
	QADLookbackDays  int
	QADLookaheadDays int
	// RITDays is the repeat-infection-timeframe width.
	RITDays int

	IncludeLactate       bool
	ApplyRIT             bool
	RITOnlyHospitalOnset bool
}

// DefaultParams returns the CDC surveillance definition values.
func DefaultParams() Params {
	return Params{
		OrganWindowDays:  2,
		QADLookbackDays:  2,
		QADLookaheadDays: 6,
		RITDays:          14,
		IncludeLactate:   true,
		ApplyRIT:         true,
	}
}

// qadThreshold is the antimicrobial-day count required for presumed
// infection absent censoring.
const qadThreshold = 4

// censorSlackDays is how soon after the first antimicrobial day a death
// or transfer must occur for censoring to rescue a short course.
const censorSlackDays = 3

// communityOnsetWindow is the span after admission within which onset
// classifies as community rather than hospital.
const communityOnsetWindow = 2 * 24 * time.Hour

func (p Params) organWindow() time.Duration {
	return time.Duration(p.OrganWindowDays) * 24 * time.Hour
}

func (p Params) ritWindow() time.Duration {
	return time.Duration(p.RITDays) * 24 * time.Hour
}

package ase

import "github.com/sepsislab/asewatch/internal/model"

// Assemble combines presumed infection (component A) and organ
// dysfunction (component B) for one anchor into a determination.
// Sepsis needs both; the without-lactate flag re-runs the same logic
// against the lactate-free winner. The episode's final onset type comes
// from the winning event's time when one exists, else the provisional
// culture-based class stands.
func Assemble(rec *model.HospitalizationRecord, anchor model.BloodCulture, qad model.QADWindow, bl model.BaselineSet, winner, winnerWoLactate *model.DysfunctionEvent) model.Episode {
	presumed := qad.TotalQAD >= qadThreshold || qad.Censored

	ep := model.Episode{
		BC:                anchor,
		QAD:               qad,
		PresumedInfection: presumed,
		Sepsis:            presumed && winner != nil,
		SepsisWoLactate:   presumed && winnerWoLactate != nil,
		Winner:            winner,
		WinnerWoLactate:   winnerWoLactate,
	}

	if winner != nil {
		ep.Type = onsetTypeAt(rec, winner.EventDTTM)
	} else {
		ep.Type = bl.Provisional
	}

	if !ep.Sepsis {
		reason := model.ReasonNoOrganDysfunction
		if !presumed {
			reason = model.ReasonNoPresumedInfection
		}
		ep.NoSepsisReason = &reason
	}
	return ep
}

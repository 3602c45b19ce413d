package ase

import (
	"time"

	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/normalize"
)

// Criterion thresholds from the surveillance definition.
const (
	baselineDoubling = 2.0
	bilirubinFloor   = 2.0
	plateletFloor    = 100.0
	plateletDecline  = 0.5
	lactateFloor     = 2.0
	pressorLookback  = 24 * time.Hour
)

// DetectDysfunction evaluates the organ-dysfunction criteria for one
// anchor and returns the winning event twice: once over all enabled
// criteria and once with lactate excluded. The earliest qualifying event
// wins; equal timestamps fall back to the fixed priority order, so the
// arena is walked in that order and a later criterion must be strictly
// earlier to displace the incumbent.
func DetectDysfunction(rec *model.HospitalizationRecord, anchor model.BloodCulture, bl model.BaselineSet, p Params) (winner, winnerWoLactate *model.DysfunctionEvent) {
	winLo := anchor.CollectDTTM.Add(-p.organWindow())
	winHi := anchor.CollectDTTM.Add(p.organWindow())

	times := map[model.Criterion]*time.Time{
		model.CriterionVasopressor:        vasopressorOnset(rec.Pressors, winLo, winHi),
		model.CriterionIMV:                imvOnset(rec.VentChecks, winLo, winHi),
		model.CriterionAKI:                akiOnset(rec, bl, winLo, winHi),
		model.CriterionHyperbilirubinemia: hyperbilirubinemiaOnset(rec, bl, winLo, winHi),
		model.CriterionThrombocytopenia:   thrombocytopeniaOnset(rec, bl, winLo, winHi),
	}
	if p.IncludeLactate {
		times[model.CriterionLactate] = lactateOnset(rec, winLo, winHi)
	}

	return pickWinner(times, true), pickWinner(times, false)
}

func pickWinner(times map[model.Criterion]*time.Time, withLactate bool) *model.DysfunctionEvent {
	var best *model.DysfunctionEvent
	for _, c := range model.CriteriaByPriority {
		if c == model.CriterionLactate && !withLactate {
			continue
		}
		t := times[c]
		if t == nil {
			continue
		}
		if best == nil || t.Before(best.EventDTTM) {
			best = &model.DysfunctionEvent{Criterion: c, EventDTTM: *t}
		}
	}
	return best
}

// vasopressorOnset finds the earliest in-window initiation: a
// non-procedural active administration with no active vasopressor of any
// category in the preceding 24 hours. Procedural administrations cannot
// initiate but still count as the pressor running for the lookback.
func vasopressorOnset(pressors []model.PressorEvent, winLo, winHi time.Time) *time.Time {
	for i, ev := range pressors {
		if ev.AdminDTTM.Before(winLo) {
			continue
		}
		if ev.AdminDTTM.After(winHi) {
			break
		}
		if ev.Procedural || !ev.Active() {
			continue
		}
		if pressorRunningBefore(pressors[:i], ev.AdminDTTM) {
			continue
		}
		t := ev.AdminDTTM
		return &t
	}
	return nil
}

func pressorRunningBefore(prior []model.PressorEvent, t time.Time) bool {
	cutoff := t.Add(-pressorLookback)
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].AdminDTTM.Before(cutoff) {
			break
		}
		if prior[i].Active() {
			return true
		}
	}
	return false
}

// imvOnset finds the earliest in-window transition onto invasive
// mechanical ventilation. The device sequence is tracked over the whole
// stay so a patient ventilated before the window does not re-trigger
// inside it; a first-ever IMV observation counts as a transition.
func imvOnset(vents []model.VentEvent, winLo, winHi time.Time) *time.Time {
	prevIMV := false
	seen := false
	for _, ev := range vents {
		isIMV := normalize.IsIMVDevice(ev.Device)
		onset := isIMV && (!seen || !prevIMV)
		seen = true
		prevIMV = isIMV
		if !onset {
			continue
		}
		if ev.RecordedDTTM.Before(winLo) {
			continue
		}
		if ev.RecordedDTTM.After(winHi) {
			break
		}
		t := ev.RecordedDTTM
		return &t
	}
	return nil
}

func akiOnset(rec *model.HospitalizationRecord, bl model.BaselineSet, winLo, winHi time.Time) *time.Time {
	if rec.ESRD || bl.Creatinine.Selected == nil {
		return nil
	}
	base := *bl.Creatinine.Selected
	return labOnset(rec.Labs, model.LabCreatinine, winLo, winHi, func(v float64) bool {
		return base > 0 && v >= baselineDoubling*base
	})
}

func hyperbilirubinemiaOnset(rec *model.HospitalizationRecord, bl model.BaselineSet, winLo, winHi time.Time) *time.Time {
	if bl.Bilirubin.Selected == nil {
		return nil
	}
	base := *bl.Bilirubin.Selected
	return labOnset(rec.Labs, model.LabBilirubin, winLo, winHi, func(v float64) bool {
		return v >= bilirubinFloor && base > 0 && v >= baselineDoubling*base
	})
}

func thrombocytopeniaOnset(rec *model.HospitalizationRecord, bl model.BaselineSet, winLo, winHi time.Time) *time.Time {
	if !bl.PlateletEnabled || bl.Platelet.Selected == nil {
		return nil
	}
	base := *bl.Platelet.Selected
	return labOnset(rec.Labs, model.LabPlatelet, winLo, winHi, func(v float64) bool {
		return v < plateletFloor && v <= plateletDecline*base
	})
}

func lactateOnset(rec *model.HospitalizationRecord, winLo, winHi time.Time) *time.Time {
	return labOnset(rec.Labs, model.LabLactate, winLo, winHi, func(v float64) bool {
		return v >= lactateFloor
	})
}

// labOnset returns the time of the earliest in-window observation of the
// kind that satisfies qualify. Labs are sorted, so the scan stops at the
// window's far edge.
func labOnset(labs []model.LabEvent, kind model.LabKind, winLo, winHi time.Time, qualify func(v float64) bool) *time.Time {
	for _, l := range labs {
		if l.DTTM.After(winHi) {
			break
		}
		if l.Kind != kind || l.DTTM.Before(winLo) {
			continue
		}
		if qualify(l.Value) {
			t := l.DTTM
			return &t
		}
	}
	return nil
}

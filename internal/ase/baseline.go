package ase

import (
	"time"

	"github.com/sepsislab/asewatch/internal/model"
)

// SelectBaselines computes the community (whole-stay) and hospital
// (anchor-window) reference values for one anchor and picks between them
// from the anchor's provisional onset classification. The provisional
// class comes from the culture's calendar position; the episode's final
// type is re-derived later from the actual onset time and may disagree.
// That two-phase approximation is the documented behavior, not a bug to
// iterate away.
func SelectBaselines(rec *model.HospitalizationRecord, anchor model.BloodCulture, p Params) model.BaselineSet {
	winLo := anchor.CollectDTTM.Add(-p.organWindow())
	winHi := anchor.CollectDTTM.Add(p.organWindow())
	provisional := onsetTypeAt(rec, anchor.CollectDTTM)

	set := model.BaselineSet{Provisional: provisional}
	set.Creatinine = baselineFor(rec.Labs, model.LabCreatinine, false, winLo, winHi, provisional)
	set.Bilirubin = baselineFor(rec.Labs, model.LabBilirubin, false, winLo, winHi, provisional)
	set.Platelet = baselineFor(rec.Labs, model.LabPlatelet, true, winLo, winHi, provisional)

	for _, l := range rec.Labs {
		if l.Kind == model.LabPlatelet && l.Value >= plateletFloor {
			set.PlateletEnabled = true
			break
		}
	}
	return set
}

// baselineFor scans one lab kind: min over the stay and window for
// creatinine and bilirubin, max when wantMax is set (platelets).
func baselineFor(labs []model.LabEvent, kind model.LabKind, wantMax bool, winLo, winHi time.Time, basis model.OnsetType) model.Baseline {
	var community, hospital *float64
	for _, l := range labs {
		if l.Kind != kind {
			continue
		}
		community = extremal(community, l.Value, wantMax)
		if !l.DTTM.Before(winLo) && !l.DTTM.After(winHi) {
			hospital = extremal(hospital, l.Value, wantMax)
		}
	}
	b := model.Baseline{Community: community, Hospital: hospital, Basis: basis}
	if basis == model.OnsetCommunity {
		b.Selected = community
	} else {
		b.Selected = hospital
	}
	return b
}

func extremal(cur *float64, v float64, wantMax bool) *float64 {
	if cur == nil || (wantMax && v > *cur) || (!wantMax && v < *cur) {
		return &v
	}
	return cur
}

// onsetTypeAt classifies a time against the admission: community within
// the first two days, hospital after.
func onsetTypeAt(rec *model.HospitalizationRecord, t time.Time) model.OnsetType {
	if !t.After(rec.AdmissionDTTM.Add(communityOnsetWindow)) {
		return model.OnsetCommunity
	}
	return model.OnsetHospital
}

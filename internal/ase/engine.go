package ase

import (
	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/normalize"
)

// Detect runs the full determination for one hospitalization: per anchor
// the antimicrobial-day window, baseline selection, and the dysfunction
// arena, then the repeat-infection pass over the assembled episodes.
// Returns one row per anchor in bc_id order. Pure computation: no I/O,
// no clock reads, no shared state, so callers may fan out across
// hospitalizations freely.
func Detect(rec *model.HospitalizationRecord, p Params) []model.ResultRow {
	eps := make([]model.Episode, len(rec.Cultures))
	for i, bc := range rec.Cultures {
		qad := ComputeQAD(rec, bc, p)
		bl := SelectBaselines(rec, bc, p)
		winner, winnerWoLactate := DetectDysfunction(rec, bc, bl, p)
		eps[i] = Assemble(rec, bc, qad, bl, winner, winnerWoLactate)
	}

	AssignEpisodeIDs(eps, p)

	rows := make([]model.ResultRow, len(eps))
	for i := range eps {
		rows[i] = resultRow(rec, &eps[i])
	}
	return rows
}

func resultRow(rec *model.HospitalizationRecord, ep *model.Episode) model.ResultRow {
	r := model.ResultRow{
		HospitalizationID:  rec.HospitalizationID,
		BCID:               ep.BC.BCID,
		EpisodeID:          ep.EpisodeID,
		Type:               ep.Type,
		PresumedInfection:  ep.PresumedInfection,
		Sepsis:             ep.Sepsis,
		SepsisWoLactate:    ep.SepsisWoLactate,
		NoSepsisReason:     ep.NoSepsisReason,
		BloodCultureDTTM:   ep.BC.CollectDTTM,
		TotalQAD:           ep.QAD.TotalQAD,
		AnchorMedsInWindow: ep.QAD.MedsInWindow,
		Censored:           ep.QAD.Censored,
	}
	if ep.Winner != nil {
		t := ep.Winner.EventDTTM
		c := string(ep.Winner.Criterion)
		r.ASEOnsetDTTM = &t
		r.ASEFirstCriterion = &c
	}
	if ep.QAD.TotalQAD > 0 {
		start := normalize.DayStart(ep.QAD.StartDay)
		end := normalize.DayStart(ep.QAD.EndDay)
		r.QADStartDate = &start
		r.QADEndDate = &end
	}
	if ep.QAD.Censored {
		reason := ep.QAD.CensorReason
		r.CensorReason = &reason
	}
	return r
}

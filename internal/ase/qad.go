package ase

import (
	"sort"

	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/normalize"
)

// dayMeds aggregates one calendar day's administrations inside the window.
type dayMeds struct {
	admins        int
	hasNew        bool
	hasParenteral bool
}

// ComputeQAD evaluates the qualifying-antimicrobial-day rule for one
// anchor. Administrations are bucketed by calendar day inside
// [anchor-lookback, anchor+lookahead]; a chain starts on a day with at
// least one new administration and at least one IV/IM administration,
// continues across days with any qualifying administration, bridges
// single-day gaps, and breaks on a two-day gap. The longest chain wins,
// earliest start on ties.
func ComputeQAD(rec *model.HospitalizationRecord, anchor model.BloodCulture, p Params) model.QADWindow {
	anchorDay := normalize.DayOf(anchor.CollectDTTM)
	lo := anchorDay - p.QADLookbackDays
	hi := anchorDay + p.QADLookaheadDays

	byDay := make(map[int]*dayMeds)
	lastAdminDay := 0
	haveAdmins := false
	var meds int
	for _, ev := range rec.Antimicrobials {
		if !haveAdmins || ev.Day > lastAdminDay {
			lastAdminDay = ev.Day
			haveAdmins = true
		}
		if ev.Day < lo || ev.Day > hi {
			continue
		}
		d := byDay[ev.Day]
		if d == nil {
			d = &dayMeds{}
			byDay[ev.Day] = d
		}
		d.admins++
		meds++
		if ev.IsNew {
			d.hasNew = true
		}
		if ev.Parenteral {
			d.hasParenteral = true
		}
	}

	w := model.QADWindow{MedsInWindow: meds}
	if len(byDay) == 0 {
		return w
	}

	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	var bestLen, bestStart, bestEnd int
	for si, sd := range days {
		if d := byDay[sd]; !d.hasNew || !d.hasParenteral {
			continue
		}
		length, end := 1, sd
		for _, nd := range days[si+1:] {
			if nd-end > 2 {
				break
			}
			length++
			end = nd
		}
		if length > bestLen {
			bestLen, bestStart, bestEnd = length, sd, end
		}
	}
	if bestLen == 0 {
		return w
	}
	w.TotalQAD = bestLen
	w.StartDay = bestStart
	w.EndDay = bestEnd

	if w.TotalQAD >= qadThreshold {
		return w
	}

	// A short course still satisfies presumed infection when the patient
	// died or was transferred within the slack window and antimicrobials
	// ran through to the end of the stay.
	censorDay, reason := censorEvent(rec)
	if reason == model.CensorNone {
		return w
	}
	if censorDay < w.StartDay || censorDay-w.StartDay > censorSlackDays {
		return w
	}
	if !haveAdmins || lastAdminDay < censorDay-1 {
		return w
	}
	w.Censored = true
	w.CensorReason = reason
	return w
}

// censorEvent resolves the day and reason of a censoring event. Death
// outranks hospice, hospice outranks an acute-care transfer. Transfers
// without a discharge timestamp cannot censor.
func censorEvent(rec *model.HospitalizationRecord) (int, string) {
	if rec.DeathDTTM != nil {
		return normalize.DayOf(*rec.DeathDTTM), model.CensorDeath
	}
	if rec.DischargeDTTM == nil {
		return 0, model.CensorNone
	}
	day := normalize.DayOf(*rec.DischargeDTTM)
	switch rec.Discharge {
	case model.DischargeDeath:
		return day, model.CensorDeath
	case model.DischargeHospice:
		return day, model.CensorHospice
	case model.DischargeAcuteTransfer:
		return day, model.CensorAcuteTransfer
	}
	return 0, model.CensorNone
}

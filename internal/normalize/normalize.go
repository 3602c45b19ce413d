package normalize

import (
	"sort"
	"time"

	"github.com/sepsislab/asewatch/internal/model"
)

// BuildStats counts everything the builder dropped or repaired so the
// caller can log one line per concern instead of one per row.
type BuildStats struct {
	Hospitalizations     int64
	DuplicateEncounters  int64
	BadAdmissions        int64
	OrphanEvents         int64
	NonBloodCultures     int64
	DroppedCultures      map[string]int
	FilteredMeds         int64
	OutlierLabs          int64
	DroppedLabs          int64
	UnparsedEventTimes   int64
	AnchorsKept          int64
	AntimicrobialsKept   int64
	LabsKept             int64
	PressorEventsKept    int64
	VentObservationsKept int64
}

// BuildRecords projects the raw tables into one self-contained record per
// hospitalization: events parsed, filtered, capped, sorted, anchors
// numbered, and antimicrobial newness precomputed. The function is pure;
// the caller decides what to log from the returned stats.
func BuildRecords(raw *model.RawTables) ([]*model.HospitalizationRecord, *BuildStats) {
	stats := &BuildStats{DroppedCultures: make(map[string]int)}

	type patientInfo struct {
		death *time.Time
		esrd  bool
	}
	patients := make(map[string]*patientInfo)
	if raw.HasPatients {
		for i := range raw.Patients {
			p := &raw.Patients[i]
			info := patients[p.PatientID]
			if info == nil {
				info = &patientInfo{}
				patients[p.PatientID] = info
			}
			if d := ParseDTTMPtr(p.DeathDTTM); d != nil {
				if info.death == nil || d.Before(*info.death) {
					info.death = d
				}
			}
			if IsESRDCode(p.DiagnosisCode) {
				info.esrd = true
			}
		}
	}

	recs := make(map[string]*model.HospitalizationRecord)
	var order []string
	for i := range raw.Hospitalizations {
		h := &raw.Hospitalizations[i]
		if _, dup := recs[h.HospitalizationID]; dup {
			stats.DuplicateEncounters++
			continue
		}
		adm := ParseDTTM(h.AdmissionDTTM)
		if adm == nil {
			stats.BadAdmissions++
			continue
		}
		rec := &model.HospitalizationRecord{
			HospitalizationID: h.HospitalizationID,
			PatientID:         h.PatientID,
			AdmissionDTTM:     *adm,
			DischargeDTTM:     ParseDTTMPtr(h.DischargeDTTM),
			Discharge:         DischargeKindOf(h.DischargeCategory),
		}
		if info := patients[h.PatientID]; info != nil {
			rec.DeathDTTM = info.death
			rec.ESRD = info.esrd
		}
		recs[h.HospitalizationID] = rec
		order = append(order, h.HospitalizationID)
	}
	stats.Hospitalizations = int64(len(order))

	for i := range raw.BloodCultures {
		c := &raw.BloodCultures[i]
		rec := recs[c.HospitalizationID]
		if rec == nil {
			stats.OrphanEvents++
			continue
		}
		if !IsBloodFluid(c.FluidCategory) {
			stats.NonBloodCultures++
			continue
		}
		ts := ParseDTTMPtr(c.CollectDTTM)
		fromOrder := false
		if ts == nil {
			ts = ParseDTTMPtr(c.OrderDTTM)
			fromOrder = ts != nil
		}
		if ts == nil {
			rec.DroppedCultures++
			stats.DroppedCultures[c.HospitalizationID]++
			continue
		}
		rec.Cultures = append(rec.Cultures, model.BloodCulture{
			CollectDTTM: *ts,
			FromOrder:   fromOrder,
		})
		stats.AnchorsKept++
	}

	for i := range raw.Antimicrobials {
		a := &raw.Antimicrobials[i]
		rec := recs[a.HospitalizationID]
		if rec == nil {
			stats.OrphanEvents++
			continue
		}
		if !IsQualifyingMedGroup(a.MedGroup) {
			stats.FilteredMeds++
			continue
		}
		drug := NormalizeName(&a.DrugName)
		ts := ParseDTTM(a.AdminDTTM)
		if drug == nil || ts == nil {
			stats.UnparsedEventTimes++
			continue
		}
		rec.Antimicrobials = append(rec.Antimicrobials, model.AntimicrobialEvent{
			AdminDTTM:  *ts,
			Day:        DayOf(*ts),
			Drug:       *drug,
			Parenteral: IsParenteralRoute(a.Route),
		})
		stats.AntimicrobialsKept++
	}

	for i := range raw.Labs {
		l := &raw.Labs[i]
		rec := recs[l.HospitalizationID]
		if rec == nil {
			stats.OrphanEvents++
			continue
		}
		kind, ok := LabKindOf(l.LabCategory)
		if !ok || l.LabValueNumeric == nil {
			stats.DroppedLabs++
			continue
		}
		ts := ParseDTTMPtr(l.LabResultDTTM)
		if ts == nil {
			ts = ParseDTTMPtr(l.LabCollectDTTM)
		}
		if ts == nil {
			stats.DroppedLabs++
			continue
		}
		value, ok := CapLab(kind, *l.LabValueNumeric)
		if !ok {
			stats.OutlierLabs++
			continue
		}
		rec.Labs = append(rec.Labs, model.LabEvent{Kind: kind, Value: value, DTTM: *ts})
		stats.LabsKept++
	}

	if raw.HasContinuousMeds {
		for i := range raw.ContinuousMeds {
			m := &raw.ContinuousMeds[i]
			rec := recs[m.HospitalizationID]
			if rec == nil {
				stats.OrphanEvents++
				continue
			}
			if !IsVasopressorCategory(m.MedCategory) {
				continue
			}
			ts := ParseDTTM(m.AdminDTTM)
			if ts == nil {
				stats.UnparsedEventTimes++
				continue
			}
			rec.Pressors = append(rec.Pressors, model.PressorEvent{
				AdminDTTM:  *ts,
				Category:   Token(m.MedCategory),
				Dose:       m.MedDose,
				Procedural: IsProceduralLocation(m.LocationCategory),
			})
			stats.PressorEventsKept++
		}
	}

	if raw.HasRespiratorySupport {
		for i := range raw.RespiratorySupport {
			r := &raw.RespiratorySupport[i]
			rec := recs[r.HospitalizationID]
			if rec == nil {
				stats.OrphanEvents++
				continue
			}
			ts := ParseDTTM(r.RecordedDTTM)
			if ts == nil {
				stats.UnparsedEventTimes++
				continue
			}
			rec.VentChecks = append(rec.VentChecks, model.VentEvent{
				RecordedDTTM: *ts,
				Device:       Token(r.DeviceCategory),
			})
			stats.VentObservationsKept++
		}
	}

	sort.Strings(order)
	out := make([]*model.HospitalizationRecord, 0, len(order))
	for _, id := range order {
		rec := recs[id]
		FinishRecord(rec)
		out = append(out, rec)
	}
	return out, stats
}

// FinishRecord sorts every event slice, numbers the anchors, and marks
// antimicrobial newness. Ties keep input order. BuildRecords finishes
// every record it returns; fixture builders that assemble records by
// hand call this directly.
func FinishRecord(rec *model.HospitalizationRecord) {
	sort.SliceStable(rec.Cultures, func(i, j int) bool {
		return rec.Cultures[i].CollectDTTM.Before(rec.Cultures[j].CollectDTTM)
	})
	for i := range rec.Cultures {
		rec.Cultures[i].BCID = i + 1
	}

	sort.SliceStable(rec.Antimicrobials, func(i, j int) bool {
		return rec.Antimicrobials[i].AdminDTTM.Before(rec.Antimicrobials[j].AdminDTTM)
	})
	markNewAntimicrobials(rec.Antimicrobials)

	sort.SliceStable(rec.Labs, func(i, j int) bool {
		return rec.Labs[i].DTTM.Before(rec.Labs[j].DTTM)
	})
	sort.SliceStable(rec.Pressors, func(i, j int) bool {
		return rec.Pressors[i].AdminDTTM.Before(rec.Pressors[j].AdminDTTM)
	})
	sort.SliceStable(rec.VentChecks, func(i, j int) bool {
		return rec.VentChecks[i].RecordedDTTM.Before(rec.VentChecks[j].RecordedDTTM)
	})
}

// markNewAntimicrobials sets IsNew on each administration: true when the
// same drug has no administration on either of the two prior calendar
// days. Earlier doses on the same day do not clear newness.
func markNewAntimicrobials(evs []model.AntimicrobialEvent) {
	days := make(map[string]map[int]bool)
	for _, ev := range evs {
		d := days[ev.Drug]
		if d == nil {
			d = make(map[int]bool)
			days[ev.Drug] = d
		}
		d[ev.Day] = true
	}
	for i := range evs {
		d := days[evs[i].Drug]
		evs[i].IsNew = !d[evs[i].Day-1] && !d[evs[i].Day-2]
	}
}

package ase_test

import (
	"time"

	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/normalize"
)

// ---------- record builders ----------

// ts returns a fixed-cohort timestamp: day is the offset in calendar days
// from the admission day (2024-03-01), hour the hour of that day. Day may
// be negative for pre-admission events.
func ts(day, hour int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, day).
		Add(time.Duration(hour) * time.Hour)
}

type recOpt func(*model.HospitalizationRecord)

// makeRecord builds a finished record admitted 2024-03-01 08:00 UTC.
func makeRecord(opts ...recOpt) *model.HospitalizationRecord {
	rec := &model.HospitalizationRecord{
		HospitalizationID: "H001",
		PatientID:         "P001",
		AdmissionDTTM:     ts(0, 8),
	}
	for _, o := range opts {
		o(rec)
	}
	normalize.FinishRecord(rec)
	return rec
}

func withCulture(day, hour int) recOpt {
	return func(r *model.HospitalizationRecord) {
		r.Cultures = append(r.Cultures, model.BloodCulture{CollectDTTM: ts(day, hour)})
	}
}

// withAbx adds one administration of drug at 10:00 on each listed day.
func withAbx(drug string, parenteral bool, days ...int) recOpt {
	return func(r *model.HospitalizationRecord) {
		for _, d := range days {
			t := ts(d, 10)
			r.Antimicrobials = append(r.Antimicrobials, model.AntimicrobialEvent{
				AdminDTTM:  t,
				Day:        normalize.DayOf(t),
				Drug:       drug,
				Parenteral: parenteral,
			})
		}
	}
}

func withAbxAt(drug string, parenteral bool, day, hour int) recOpt {
	return func(r *model.HospitalizationRecord) {
		t := ts(day, hour)
		r.Antimicrobials = append(r.Antimicrobials, model.AntimicrobialEvent{
			AdminDTTM:  t,
			Day:        normalize.DayOf(t),
			Drug:       drug,
			Parenteral: parenteral,
		})
	}
}

func withLab(kind model.LabKind, day, hour int, value float64) recOpt {
	return func(r *model.HospitalizationRecord) {
		r.Labs = append(r.Labs, model.LabEvent{Kind: kind, Value: value, DTTM: ts(day, hour)})
	}
}

func withPressor(day, hour int, dose float64) recOpt {
	return func(r *model.HospitalizationRecord) {
		r.Pressors = append(r.Pressors, model.PressorEvent{
			AdminDTTM: ts(day, hour),
			Category:  "norepinephrine",
			Dose:      &dose,
		})
	}
}

func withProceduralPressor(day, hour int, dose float64) recOpt {
	return func(r *model.HospitalizationRecord) {
		r.Pressors = append(r.Pressors, model.PressorEvent{
			AdminDTTM:  ts(day, hour),
			Category:   "norepinephrine",
			Dose:       &dose,
			Procedural: true,
		})
	}
}

func withVent(day, hour int, device string) recOpt {
	return func(r *model.HospitalizationRecord) {
		r.VentChecks = append(r.VentChecks, model.VentEvent{
			RecordedDTTM: ts(day, hour),
			Device:       device,
		})
	}
}

func withDeath(day, hour int) recOpt {
	return func(r *model.HospitalizationRecord) {
		t := ts(day, hour)
		r.DeathDTTM = &t
	}
}

func withDischarge(kind model.DischargeKind, day, hour int) recOpt {
	return func(r *model.HospitalizationRecord) {
		t := ts(day, hour)
		r.DischargeDTTM = &t
		r.Discharge = kind
	}
}

func withESRD() recOpt {
	return func(r *model.HospitalizationRecord) { r.ESRD = true }
}

// ---------- assertion helpers ----------

// day returns the epoch-day number of the given cohort day offset.
func day(d int) int {
	return normalize.DayOf(ts(d, 0))
}

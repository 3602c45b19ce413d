// Package synth generates deterministic cohort fixtures. The archetypes
// cover the determination paths end to end: community and hospital
// onset, each organ criterion, censoring, suppressed repeats, and rows
// the normalizer must drop. The same cohorts back the integration tests
// and the mkcohort command, so a demo run always produces episodes.
package synth

import (
	"fmt"
	"time"

	"github.com/sepsislab/asewatch/internal/model"
)

// Cohort is a complete in-memory input table set.
type Cohort struct {
	Hospitalizations   []model.HospitalizationRow
	BloodCultures      []model.BloodCultureRow
	Antimicrobials     []model.AntimicrobialRow
	Labs               []model.LabRow
	ContinuousMeds     []model.ContinuousMedRow
	RespiratorySupport []model.RespiratorySupportRow
	Patients           []model.PatientRow
}

const (
	dttmFormat      = "2006-01-02 15:04:05"
	qualifyingGroup = "cms sepsis qualifying antibiotics"
)

var baseAdmission = time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)

// Generate builds n hospitalizations by cycling the archetype list.
// Output is fully determined by n.
func Generate(n int) *Cohort {
	c := &Cohort{}
	for i := 0; i < n; i++ {
		b := &builder{
			c:      c,
			hospID: fmt.Sprintf("H%04d", i+1),
			patID:  fmt.Sprintf("P%04d", i+1),
			adm:    baseAdmission.AddDate(0, 0, 3*i).Add(time.Duration(i%5) * time.Hour),
		}
		archetypes[i%len(archetypes)](b)
		b.finish()
	}
	return c
}

var archetypes = []func(*builder){
	communityAKI,
	censoredDeath,
	noDysfunction,
	repeatSuppressed,
	hospitalPressor,
	ventTransition,
	oralOnly,
	orderFallback,
	esrdPatient,
	hospiceCensor,
	quietStay,
}

// Community-onset sepsis: full course plus creatinine doubling on the
// culture day.
func communityAKI(b *builder) {
	b.culture(0, 9)
	b.abxDays("vancomycin", "IV", 0, 1, 2, 3)
	b.lab("creatinine", 0, 6, 1.0)
	b.lab("creatinine", 0, 12, 2.1)
	b.dischargeHome(6, 11)
}

// Two antimicrobial days cut short by death: censored, presumed
// infection, no dysfunction.
func censoredDeath(b *builder) {
	b.culture(0, 9)
	b.abxDays("piperacillin-tazobactam", "IV", 0, 1)
	b.death(2, 14)
	b.discharge(2, 14, "Expired")
}

// Full course but the platelet criterion is disabled: counts never reach
// 100 anywhere in the stay.
func noDysfunction(b *builder) {
	b.culture(0, 9)
	b.abxDays("cefepime", "IV", 0, 1, 2, 3)
	b.lab("platelet count", 0, 6, 90)
	b.lab("platelet count", 1, 10, 40)
	b.dischargeHome(6, 10)
}

// Two positive anchors five days apart: the second folds into the
// first's repeat-infection window.
func repeatSuppressed(b *builder) {
	b.culture(0, 9)
	b.culture(5, 9)
	b.abxDays("vancomycin", "IV", 0, 1, 2, 3)
	b.abxDays("meropenem", "IV", 5, 6, 7, 8)
	b.lab("creatinine", 0, 6, 1.0)
	b.lab("creatinine", 1, 10, 2.2)
	b.lab("creatinine", 4, 10, 1.0)
	b.lab("creatinine", 5, 12, 2.2)
	b.dischargeHome(10, 15)
}

// Hospital-onset shock: vasopressor initiation after day four. The
// operating-room dose days earlier exercises the procedural filter
// without touching the outcome.
func hospitalPressor(b *builder) {
	b.culture(4, 15)
	b.abxDays("meropenem", "IV", 4, 5, 6, 7)
	b.pressorAt(1, 10, "norepinephrine", 6.0, strPtr("operating room"))
	b.pressorAt(4, 20, "norepinephrine", 8.0, nil)
	b.lab("creatinine", 0, 6, 0.9)
	b.lab("creatinine", 4, 18, 1.0)
	b.dischargeHome(9, 12)
}

// Intubation inside the window after a room-air observation.
func ventTransition(b *builder) {
	b.culture(1, 9)
	b.abxDays("vancomycin", "IV", 1, 2, 3, 4)
	b.vent(0, 22, "Room Air")
	b.vent(1, 11, "IMV")
	b.vent(3, 7, "IMV")
	b.dischargeHome(8, 13)
}

// Oral-only course: dysfunction present but no qualifying start, so the
// determination fails on the infection side.
func oralOnly(b *builder) {
	b.culture(0, 9)
	b.abxDays("ciprofloxacin", "Oral", 0, 1, 2, 3)
	b.lab("lactate", 0, 11, 2.4)
	b.dischargeHome(4, 10)
}

// One non-blood specimen to drop and one anchor that only carries an
// order timestamp. Lactate alone qualifies, so the two sepsis flags
// split.
func orderFallback(b *builder) {
	b.cultureFluid(0, 9, "urine")
	b.cultureOrderOnly(0, 10)
	b.abxDays("vancomycin", "IV", 0, 1, 2, 3)
	b.lab("lactate", 0, 12, 2.6)
	b.dischargeHome(5, 16)
}

// End-stage renal disease: creatinine doubling is ignored and nothing
// else qualifies.
func esrdPatient(b *builder) {
	b.diagnosis("N18.6")
	b.diagnosis("I10")
	b.culture(0, 9)
	b.abxDays("vancomycin", "IV", 0, 1, 2, 3)
	b.lab("creatinine", 0, 6, 2.0)
	b.lab("creatinine", 1, 10, 4.2)
	b.dischargeHome(6, 9)
}

// Three antimicrobial days ending in a hospice transfer.
func hospiceCensor(b *builder) {
	b.culture(0, 9)
	b.abxDays("cefepime", "IV", 0, 1, 2)
	b.discharge(3, 11, "Hospice")
}

// No cultures at all: contributes input volume but no output rows.
func quietStay(b *builder) {
	b.lab("creatinine", 0, 7, 1.1)
	b.lab("platelet count", 0, 7, 240)
	b.dischargeHome(2, 10)
}

// builder accumulates rows for one hospitalization.
type builder struct {
	c      *Cohort
	hospID string
	patID  string
	adm    time.Time

	dischargeDTTM *string
	dischargeCat  *string
	deathDTTM     *string
	diagnoses     []string
}

// at formats a timestamp at hour o'clock on the given day of the stay,
// counting from the admission's calendar day.
func (b *builder) at(day, hour int) string {
	midnight := time.Date(b.adm.Year(), b.adm.Month(), b.adm.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour).Format(dttmFormat)
}

func (b *builder) culture(day, hour int) {
	b.cultureFluid(day, hour, "Blood")
}

func (b *builder) cultureFluid(day, hour int, fluid string) {
	b.c.BloodCultures = append(b.c.BloodCultures, model.BloodCultureRow{
		HospitalizationID: b.hospID,
		CollectDTTM:       strPtr(b.at(day, hour)),
		FluidCategory:     fluid,
	})
}

func (b *builder) cultureOrderOnly(day, hour int) {
	b.c.BloodCultures = append(b.c.BloodCultures, model.BloodCultureRow{
		HospitalizationID: b.hospID,
		OrderDTTM:         strPtr(b.at(day, hour)),
		FluidCategory:     "Blood",
	})
}

func (b *builder) abxDays(drug, route string, days ...int) {
	for _, d := range days {
		b.c.Antimicrobials = append(b.c.Antimicrobials, model.AntimicrobialRow{
			HospitalizationID: b.hospID,
			AdminDTTM:         b.at(d, 10),
			DrugName:          drug,
			Route:             route,
			MedGroup:          strPtr(qualifyingGroup),
		})
	}
}

func (b *builder) lab(category string, day, hour int, value float64) {
	b.c.Labs = append(b.c.Labs, model.LabRow{
		HospitalizationID: b.hospID,
		LabCategory:       category,
		LabValueNumeric:   &value,
		LabResultDTTM:     strPtr(b.at(day, hour)),
	})
}

func (b *builder) pressorAt(day, hour int, category string, dose float64, location *string) {
	b.c.ContinuousMeds = append(b.c.ContinuousMeds, model.ContinuousMedRow{
		HospitalizationID: b.hospID,
		AdminDTTM:         b.at(day, hour),
		MedCategory:       category,
		MedDose:           &dose,
		LocationCategory:  location,
	})
}

func (b *builder) vent(day, hour int, device string) {
	b.c.RespiratorySupport = append(b.c.RespiratorySupport, model.RespiratorySupportRow{
		HospitalizationID: b.hospID,
		RecordedDTTM:      b.at(day, hour),
		DeviceCategory:    device,
	})
}

func (b *builder) death(day, hour int) {
	b.deathDTTM = strPtr(b.at(day, hour))
}

func (b *builder) diagnosis(code string) {
	b.diagnoses = append(b.diagnoses, code)
}

func (b *builder) discharge(day, hour int, category string) {
	b.dischargeDTTM = strPtr(b.at(day, hour))
	b.dischargeCat = &category
}

func (b *builder) dischargeHome(day, hour int) {
	b.discharge(day, hour, "Home")
}

// finish emits the hospitalization row and the long-format patient rows:
// one per diagnosis code, or a single code-less row.
func (b *builder) finish() {
	b.c.Hospitalizations = append(b.c.Hospitalizations, model.HospitalizationRow{
		HospitalizationID: b.hospID,
		PatientID:         b.patID,
		AdmissionDTTM:     b.adm.Format(dttmFormat),
		DischargeDTTM:     b.dischargeDTTM,
		DischargeCategory: b.dischargeCat,
	})
	if len(b.diagnoses) == 0 {
		b.c.Patients = append(b.c.Patients, model.PatientRow{
			PatientID: b.patID,
			DeathDTTM: b.deathDTTM,
		})
		return
	}
	for _, code := range b.diagnoses {
		b.c.Patients = append(b.c.Patients, model.PatientRow{
			PatientID:     b.patID,
			DeathDTTM:     b.deathDTTM,
			DiagnosisCode: strPtr(code),
		})
	}
}

// Raw repackages the cohort in the shape the load phase produces, with
// every optional table marked present.
func (c *Cohort) Raw() *model.RawTables {
	return &model.RawTables{
		Hospitalizations:      c.Hospitalizations,
		BloodCultures:         c.BloodCultures,
		Antimicrobials:        c.Antimicrobials,
		Labs:                  c.Labs,
		ContinuousMeds:        c.ContinuousMeds,
		RespiratorySupport:    c.RespiratorySupport,
		Patients:              c.Patients,
		HasContinuousMeds:     true,
		HasRespiratorySupport: true,
		HasPatients:           true,
	}
}

func strPtr(s string) *string { return &s }

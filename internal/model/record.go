package model

import "time"

// LabKind is the normalized lab category. Only the four kinds the organ
// dysfunction criteria consume survive normalization.
type LabKind string

const (
	LabCreatinine LabKind = "creatinine"
	LabBilirubin  LabKind = "bilirubin"
	LabPlatelet   LabKind = "platelet"
	LabLactate    LabKind = "lactate"
)

// DischargeKind classifies the hospitalization's discharge disposition
// for censoring purposes.
type DischargeKind int

const (
	DischargeOther DischargeKind = iota
	DischargeDeath
	DischargeHospice
	DischargeAcuteTransfer
)

// BloodCulture is one anchor: a blood-culture collection event around
// which all detection windows are centered. BCID is a dense 1..N sequence
// per hospitalization ordered by collection time.
type BloodCulture struct {
	BCID        int
	CollectDTTM time.Time
	// FromOrder is set when order_dttm stood in for a missing collect_dttm.
	FromOrder bool
}

// AntimicrobialEvent is one qualifying antimicrobial administration.
// Day is the calendar day of AdminDTTM as days since the Unix epoch.
// IsNew is true when the same drug was not administered on either of the
// two prior calendar days.
type AntimicrobialEvent struct {
	AdminDTTM  time.Time
	Day        int
	Drug       string
	Parenteral bool
	IsNew      bool
}

// LabEvent is one usable lab observation, outlier-capped.
type LabEvent struct {
	Kind  LabKind
	Value float64
	DTTM  time.Time
}

// PressorEvent is one vasopressor infusion record. A nil Dose is a
// dose-less continuous-infusion record and still evidences the pressor
// running. Procedural administrations never count as initiations but do
// count toward the running-pressor lookback.
type PressorEvent struct {
	AdminDTTM  time.Time
	Category   string
	Dose       *float64
	Procedural bool
}

// Active reports whether the record evidences a vasopressor being given.
func (p PressorEvent) Active() bool {
	return p.Dose == nil || *p.Dose > 0
}

// VentEvent is one respiratory-support observation.
type VentEvent struct {
	RecordedDTTM time.Time
	Device       string
}

// HospitalizationRecord is the normalized, self-contained bundle for one
// hospitalization. All slices are sorted by time. Records are never
// shared or mutated across hospitalizations, so detection can fan out
// without locking.
type HospitalizationRecord struct {
	HospitalizationID string
	PatientID         string
	AdmissionDTTM     time.Time
	DischargeDTTM     *time.Time
	Discharge         DischargeKind
	DeathDTTM         *time.Time
	ESRD              bool

	Cultures       []BloodCulture
	Antimicrobials []AntimicrobialEvent
	Labs           []LabEvent
	Pressors       []PressorEvent
	VentChecks     []VentEvent

	// DroppedCultures counts anchors discarded for lacking both
	// collect_dttm and order_dttm.
	DroppedCultures int
}

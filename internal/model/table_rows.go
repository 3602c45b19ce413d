package model

// Input row structs mirror the Parquet schemas of the cohort tables.
// Timestamps arrive as strings in mixed formats and are parsed during
// normalization; values that fail to parse are handled by the documented
// recovery rules rather than failing the run.

// HospitalizationRow is one encounter in the hospitalization table.
type HospitalizationRow struct {
	HospitalizationID string  `parquet:"hospitalization_id"`
	PatientID         string  `parquet:"patient_id"`
	AdmissionDTTM     string  `parquet:"admission_dttm"`
	DischargeDTTM     *string `parquet:"discharge_dttm,optional"`
	DischargeCategory *string `parquet:"discharge_category,optional"`
}

// BloodCultureRow is one culture collection event. Only blood and
// buffy-coat specimens anchor episodes; other fluids are dropped.
// An anchor missing both timestamps is skipped with a warning.
type BloodCultureRow struct {
	HospitalizationID string  `parquet:"hospitalization_id"`
	CollectDTTM       *string `parquet:"collect_dttm,optional"`
	OrderDTTM         *string `parquet:"order_dttm,optional"`
	FluidCategory     string  `parquet:"fluid_category"`
}

// AntimicrobialRow is one antimicrobial administration. Rows outside the
// CMS sepsis-qualifying med group do not contribute to QAD counting.
type AntimicrobialRow struct {
	HospitalizationID string  `parquet:"hospitalization_id"`
	AdminDTTM         string  `parquet:"admin_dttm"`
	DrugName          string  `parquet:"drug_name"`
	Route             string  `parquet:"route"`
	MedGroup          *string `parquet:"med_group,optional"`
}

// LabRow is one lab observation. Some sites populate lab_result_dttm,
// others only lab_collect_dttm; the result timestamp wins when both exist.
type LabRow struct {
	HospitalizationID string   `parquet:"hospitalization_id"`
	LabCategory       string   `parquet:"lab_category"`
	LabValueNumeric   *float64 `parquet:"lab_value_numeric,optional"`
	LabResultDTTM     *string  `parquet:"lab_result_dttm,optional"`
	LabCollectDTTM    *string  `parquet:"lab_collect_dttm,optional"`
}

// ContinuousMedRow is one continuous-infusion administration record.
type ContinuousMedRow struct {
	HospitalizationID string   `parquet:"hospitalization_id"`
	AdminDTTM         string   `parquet:"admin_dttm"`
	MedCategory       string   `parquet:"med_category"`
	MedDose           *float64 `parquet:"med_dose,optional"`
	LocationCategory  *string  `parquet:"location_category,optional"`
}

// RespiratorySupportRow is one device-status observation. Non-IMV rows are
// kept because ventilation onset is a transition, not a level.
type RespiratorySupportRow struct {
	HospitalizationID string `parquet:"hospitalization_id"`
	RecordedDTTM      string `parquet:"recorded_dttm"`
	DeviceCategory    string `parquet:"device_category"`
}

// PatientRow is long-format patient metadata: one row per diagnosis code,
// with death_dttm repeated (or a single code-less row when no diagnoses
// are recorded).
type PatientRow struct {
	PatientID     string  `parquet:"patient_id"`
	DeathDTTM     *string `parquet:"death_dttm,optional"`
	DiagnosisCode *string `parquet:"diagnosis_code,optional"`
}

package model

// Table describes one input table in the cohort directory.
type Table struct {
	Name     string
	FileName string
	Required bool
	// Columns that must be present in the Parquet schema for the table
	// to be usable at all. Optional columns are not listed.
	Columns []string
}

// AllTables is the full input surface, required tables first.
var AllTables = []Table{
	{
		Name:     "hospitalization",
		FileName: "hospitalization.parquet",
		Required: true,
		Columns:  []string{"hospitalization_id", "patient_id", "admission_dttm"},
	},
	{
		Name:     "blood_cultures",
		FileName: "blood_cultures.parquet",
		Required: true,
		Columns:  []string{"hospitalization_id", "fluid_category"},
	},
	{
		Name:     "antimicrobials",
		FileName: "antimicrobials.parquet",
		Required: true,
		Columns:  []string{"hospitalization_id", "admin_dttm", "drug_name", "route"},
	},
	{
		Name:     "labs",
		FileName: "labs.parquet",
		Required: true,
		Columns:  []string{"hospitalization_id", "lab_category"},
	},
	{
		Name:     "continuous_meds",
		FileName: "continuous_meds.parquet",
		Required: false,
		Columns:  []string{"hospitalization_id", "admin_dttm", "med_category"},
	},
	{
		Name:     "respiratory_support",
		FileName: "respiratory_support.parquet",
		Required: false,
		Columns:  []string{"hospitalization_id", "recorded_dttm", "device_category"},
	},
	{
		Name:     "patient",
		FileName: "patient.parquet",
		Required: false,
		Columns:  []string{"patient_id"},
	},
}

// TableByName returns the table descriptor for name, if known.
func TableByName(name string) (Table, bool) {
	for _, t := range AllTables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// RequiredTables returns only the tables the run cannot proceed without.
func RequiredTables() []Table {
	var out []Table
	for _, t := range AllTables {
		if t.Required {
			out = append(out, t)
		}
	}
	return out
}

// RawTables holds every input table as read from disk, before normalization.
// The Has* flags record whether the optional tables were present; absent
// optional tables disable the corresponding criteria rather than failing.
type RawTables struct {
	Hospitalizations []HospitalizationRow
	BloodCultures    []BloodCultureRow
	Antimicrobials   []AntimicrobialRow
	Labs             []LabRow

	ContinuousMeds        []ContinuousMedRow
	RespiratorySupport    []RespiratorySupportRow
	Patients              []PatientRow
	HasContinuousMeds     bool
	HasRespiratorySupport bool
	HasPatients           bool
}

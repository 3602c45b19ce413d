package runner

import (
	"fmt"
	"path/filepath"

	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/tableread"
)

// Load reads every present table in the cohort directory into memory.
// present comes from preflight, so required tables are known to exist.
func Load(dir string, present map[string]bool) (*model.RawTables, error) {
	raw := &model.RawTables{}
	var err error

	if raw.Hospitalizations, err = readTable[model.HospitalizationRow](dir, "hospitalization"); err != nil {
		return nil, err
	}
	if raw.BloodCultures, err = readTable[model.BloodCultureRow](dir, "blood_cultures"); err != nil {
		return nil, err
	}
	if raw.Antimicrobials, err = readTable[model.AntimicrobialRow](dir, "antimicrobials"); err != nil {
		return nil, err
	}
	if raw.Labs, err = readTable[model.LabRow](dir, "labs"); err != nil {
		return nil, err
	}

	if present["continuous_meds"] {
		if raw.ContinuousMeds, err = readTable[model.ContinuousMedRow](dir, "continuous_meds"); err != nil {
			return nil, err
		}
		raw.HasContinuousMeds = true
	}
	if present["respiratory_support"] {
		if raw.RespiratorySupport, err = readTable[model.RespiratorySupportRow](dir, "respiratory_support"); err != nil {
			return nil, err
		}
		raw.HasRespiratorySupport = true
	}
	if present["patient"] {
		if raw.Patients, err = readTable[model.PatientRow](dir, "patient"); err != nil {
			return nil, err
		}
		raw.HasPatients = true
	}
	return raw, nil
}

func readTable[T any](dir, name string) ([]T, error) {
	t, ok := model.TableByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	rows, err := tableread.ReadAll[T](filepath.Join(dir, t.FileName))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return rows, nil
}

package normalize

import (
	"strings"

	"github.com/sepsislab/asewatch/internal/model"
)

// DischargeKindOf classifies a discharge_category value for censoring.
// Site vocabularies vary, so matching is substring-based on the token form.
func DischargeKindOf(category *string) model.DischargeKind {
	t := TokenPtr(category)
	switch {
	case t == "":
		return model.DischargeOther
	case strings.Contains(t, "expired") || strings.Contains(t, "deceased") ||
		strings.Contains(t, "death") || t == "died" || t == "dead":
		return model.DischargeDeath
	case strings.Contains(t, "hospice"):
		return model.DischargeHospice
	case strings.Contains(t, "acute"):
		return model.DischargeAcuteTransfer
	default:
		return model.DischargeOther
	}
}

// parenteralRoutes are the exact route tokens counted as IV/IM.
var parenteralRoutes = map[string]bool{
	"iv":            true,
	"im":            true,
	"ivp":           true,
	"ivpb":          true,
	"iv push":       true,
	"iv piggyback":  true,
	"intravenous":   true,
	"intramuscular": true,
}

// IsParenteralRoute reports whether the administration route is IV/IM.
// Unrecognized routes count as non-parenteral, which can only make the
// day-one QAD requirement harder to meet, never easier.
func IsParenteralRoute(route string) bool {
	t := Token(route)
	if parenteralRoutes[t] {
		return true
	}
	return strings.Contains(t, "intraven") || strings.Contains(t, "intramusc")
}

// IsBloodFluid reports whether a culture specimen anchors an episode.
func IsBloodFluid(fluid string) bool {
	t := Token(fluid)
	return strings.Contains(t, "blood") || strings.Contains(t, "buffy")
}

// LabKindOf maps a lab_category value to the internal lab kind.
// Categories outside the four the criteria consume are dropped.
func LabKindOf(category string) (model.LabKind, bool) {
	switch t := Token(category); t {
	case "creatinine", "serum creatinine":
		return model.LabCreatinine, true
	case "bilirubin total", "total bilirubin", "bilirubin":
		return model.LabBilirubin, true
	case "platelet count", "platelets", "platelet":
		return model.LabPlatelet, true
	case "lactate", "lactic acid":
		return model.LabLactate, true
	default:
		return "", false
	}
}

// vasopressorCategories are the med_category values counted as
// vasopressors. Inotropes (dobutamine, milrinone) are deliberately
// absent: they do not satisfy the cardiovascular criterion.
var vasopressorCategories = map[string]bool{
	"norepinephrine": true,
	"epinephrine":    true,
	"phenylephrine":  true,
	"vasopressin":    true,
	"dopamine":       true,
	"angiotensin":    true,
	"angiotensin ii": true,
}

// IsVasopressorCategory reports whether a continuous-med category is a
// vasopressor.
func IsVasopressorCategory(category string) bool {
	return vasopressorCategories[Token(category)]
}

// IsProceduralLocation reports whether the administration happened in a
// procedural area, where transient intraoperative pressor use does not
// count as an initiation.
func IsProceduralLocation(location *string) bool {
	t := TokenPtr(location)
	return t == "or" || strings.Contains(t, "procedur") || strings.Contains(t, "operating")
}

// IsIMVDevice reports whether a device_category value means invasive
// mechanical ventilation.
func IsIMVDevice(device string) bool {
	t := Token(device)
	return t == "imv" || strings.Contains(t, "invasive mech")
}

// qualifyingMedGroup is the med_group annotation carried by rows in the
// antimicrobial table upstream filters down to.
const qualifyingMedGroup = "cms sepsis qualifying antibiotics"

// IsQualifyingMedGroup reports whether an antimicrobial row participates
// in QAD counting. A missing annotation keeps the row: the table's
// contract is that it only carries qualifying agents, so the column is
// confirmation, not the filter of record.
func IsQualifyingMedGroup(group *string) bool {
	if group == nil {
		return true
	}
	t := Token(*group)
	return t == "" || t == qualifyingMedGroup
}

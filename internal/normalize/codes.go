package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeCode trims whitespace, uppercases, and strips non-alphanumeric
// characters, so N18.6, n186 and "N18 6" all compare equal.
// Returns nil if the input is nil or the result is empty.
func NormalizeCode(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = strings.ToUpper(s)
	s = nonAlphanumeric.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	return &s
}

// esrdCodes are the ICD-10 codes (dot-stripped) that mark end-stage renal
// disease. Hospitalizations carrying any of them skip the creatinine
// criterion entirely.
var esrdCodes = map[string]bool{
	"N186":  true, // end stage renal disease
	"Z4931": true, // encounter for extracorporeal dialysis
	"Z4901": true, // encounter for fitting of dialysis catheter
	"I120":  true, // hypertensive CKD with stage 5 CKD or ESRD
	"I1311": true, // hypertensive heart and CKD with stage 5 CKD or ESRD
	"I132":  true, // hypertensive heart and CKD with heart failure and ESRD
}

// IsESRDCode reports whether the diagnosis code matches the end-stage
// renal disease set. Matching is exact on the normalized code, not by
// prefix, so I13.2 does not swallow I13.11.
func IsESRDCode(v *string) bool {
	c := NormalizeCode(v)
	return c != nil && esrdCodes[*c]
}

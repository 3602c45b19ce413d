package normalize

import "github.com/sepsislab/asewatch/internal/model"

// Hard plausibility caps per lab kind. Values beyond the cap are almost
// always unit errors or transcription noise, and a single wild value
// would otherwise poison both the baseline and the criterion it feeds.
var labCaps = map[model.LabKind]float64{
	model.LabCreatinine: 20,
	model.LabBilirubin:  80,
	model.LabPlatelet:   2000,
	model.LabLactate:    30,
}

// CapLab applies the outlier cap for the lab kind. The second return is
// false when the value exceeds the cap and must be treated as missing.
// Negative values are rejected the same way.
func CapLab(kind model.LabKind, value float64) (float64, bool) {
	if value < 0 {
		return 0, false
	}
	cap, ok := labCaps[kind]
	if !ok {
		return value, true
	}
	if value > cap {
		return 0, false
	}
	return value, true
}

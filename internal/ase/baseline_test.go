package ase_test

import (
	"testing"

	"github.com/sepsislab/asewatch/internal/ase"
	"github.com/sepsislab/asewatch/internal/model"
)

func selectBaselines(t *testing.T, rec *model.HospitalizationRecord) model.BaselineSet {
	t.Helper()
	if len(rec.Cultures) != 1 {
		t.Fatalf("expected exactly one culture, got %d", len(rec.Cultures))
	}
	return ase.SelectBaselines(rec, rec.Cultures[0], ase.DefaultParams())
}

func wantVal(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, want)
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

// ---------- basis selection ----------

func TestSelectBaselines_CommunityUsesWholeStay(t *testing.T) {
	// Culture one hour after admission: community onset, so the baseline
	// is the whole-stay minimum even when it falls outside the window.
	rec := makeRecord(
		withCulture(0, 9),
		withLab(model.LabCreatinine, 0, 6, 1.0),
		withLab(model.LabCreatinine, 5, 10, 0.8),
	)
	bl := selectBaselines(t, rec)

	if bl.Provisional != model.OnsetCommunity {
		t.Fatalf("provisional = %v, want community", bl.Provisional)
	}
	wantVal(t, "community", bl.Creatinine.Community, 0.8)
	wantVal(t, "hospital", bl.Creatinine.Hospital, 1.0)
	wantVal(t, "selected", bl.Creatinine.Selected, 0.8)
}

func TestSelectBaselines_HospitalUsesWindow(t *testing.T) {
	rec := makeRecord(
		withCulture(5, 9),
		withLab(model.LabCreatinine, 0, 6, 0.7),
		withLab(model.LabCreatinine, 4, 10, 1.1),
	)
	bl := selectBaselines(t, rec)

	if bl.Provisional != model.OnsetHospital {
		t.Fatalf("provisional = %v, want hospital", bl.Provisional)
	}
	wantVal(t, "community", bl.Creatinine.Community, 0.7)
	wantVal(t, "hospital", bl.Creatinine.Hospital, 1.1)
	wantVal(t, "selected", bl.Creatinine.Selected, 1.1)
}

func TestSelectBaselines_BoundaryCultureIsCommunity(t *testing.T) {
	// Exactly 48 hours after admission still counts as community onset.
	rec := makeRecord(withCulture(2, 8))
	bl := selectBaselines(t, rec)

	if bl.Provisional != model.OnsetCommunity {
		t.Errorf("provisional = %v, want community at the 48h boundary", bl.Provisional)
	}
}

// ---------- per-kind direction ----------

func TestSelectBaselines_PlateletTakesMaximum(t *testing.T) {
	rec := makeRecord(
		withCulture(5, 9),
		withLab(model.LabPlatelet, 0, 6, 250),
		withLab(model.LabPlatelet, 4, 10, 180),
	)
	bl := selectBaselines(t, rec)

	wantVal(t, "community", bl.Platelet.Community, 250)
	wantVal(t, "hospital", bl.Platelet.Hospital, 180)
	wantVal(t, "selected", bl.Platelet.Selected, 180)
	if !bl.PlateletEnabled {
		t.Error("platelet criterion should be enabled when the stay maximum reaches 100")
	}
}

func TestSelectBaselines_PlateletDisabledBelowFloor(t *testing.T) {
	rec := makeRecord(
		withCulture(0, 9),
		withLab(model.LabPlatelet, 0, 6, 90),
		withLab(model.LabPlatelet, 1, 10, 40),
	)
	bl := selectBaselines(t, rec)

	if bl.PlateletEnabled {
		t.Error("platelet criterion should stay disabled when no value reaches 100")
	}
}

// ---------- missing data ----------

func TestSelectBaselines_MissingKindIsNil(t *testing.T) {
	rec := makeRecord(
		withCulture(0, 9),
		withLab(model.LabCreatinine, 0, 6, 1.0),
	)
	bl := selectBaselines(t, rec)

	if bl.Bilirubin.Community != nil || bl.Bilirubin.Hospital != nil || bl.Bilirubin.Selected != nil {
		t.Error("bilirubin baseline should be nil with no bilirubin results")
	}
}

func TestSelectBaselines_HospitalBasisEmptyWindow(t *testing.T) {
	// Hospital-onset anchor whose window holds no creatinine: community
	// value exists but the selected baseline stays nil.
	rec := makeRecord(
		withCulture(5, 9),
		withLab(model.LabCreatinine, 0, 6, 0.9),
	)
	bl := selectBaselines(t, rec)

	wantVal(t, "community", bl.Creatinine.Community, 0.9)
	if bl.Creatinine.Hospital != nil {
		t.Errorf("hospital = %v, want nil", *bl.Creatinine.Hospital)
	}
	if bl.Creatinine.Selected != nil {
		t.Errorf("selected = %v, want nil", *bl.Creatinine.Selected)
	}
}

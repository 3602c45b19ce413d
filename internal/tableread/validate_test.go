package tableread_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/sepsislab/asewatch/internal/model"
	"github.com/sepsislab/asewatch/internal/tableread"
)

// touchTables creates empty placeholder files for the named tables.
// CheckDir only stats for existence, so content does not matter here.
func touchTables(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		tbl, ok := model.TableByName(name)
		if !ok {
			t.Fatalf("unknown table %q", name)
		}
		if err := os.WriteFile(filepath.Join(dir, tbl.FileName), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCheckDir_RequiredOnly(t *testing.T) {
	dir := t.TempDir()
	touchTables(t, dir, "hospitalization", "blood_cultures", "antimicrobials", "labs")

	present, err := tableread.CheckDir(dir)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	for _, name := range []string{"hospitalization", "blood_cultures", "antimicrobials", "labs"} {
		if !present[name] {
			t.Errorf("%s should be present", name)
		}
	}
	for _, name := range []string{"continuous_meds", "respiratory_support", "patient"} {
		if present[name] {
			t.Errorf("%s should be absent", name)
		}
	}
}

func TestCheckDir_MissingRequired(t *testing.T) {
	dir := t.TempDir()
	touchTables(t, dir, "hospitalization", "blood_cultures", "labs") // no antimicrobials

	_, err := tableread.CheckDir(dir)
	var missing *tableread.MissingTableError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingTableError", err)
	}
	if missing.Table != "antimicrobials" {
		t.Errorf("missing table = %q, want antimicrobials", missing.Table)
	}
}

func TestCheckDir_AllTables(t *testing.T) {
	dir := t.TempDir()
	touchTables(t, dir, "hospitalization", "blood_cultures", "antimicrobials", "labs",
		"continuous_meds", "respiratory_support", "patient")

	present, err := tableread.CheckDir(dir)
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if len(present) != len(model.AllTables) {
		t.Errorf("present has %d tables, want %d", len(present), len(model.AllTables))
	}
}

func TestValidateSchema(t *testing.T) {
	tbl, _ := model.TableByName("blood_cultures")

	type goodRow struct {
		HospitalizationID string  `parquet:"hospitalization_id"`
		CollectDTTM       *string `parquet:"collect_dttm,optional"`
		FluidCategory     string  `parquet:"fluid_category"`
		ExtraColumn       string  `parquet:"site_specific_extra"`
	}
	if err := tableread.ValidateSchema(parquet.SchemaOf(goodRow{}), tbl); err != nil {
		t.Errorf("schema with extra column should validate: %v", err)
	}

	type badRow struct {
		HospitalizationID string `parquet:"hospitalization_id"`
	}
	err := tableread.ValidateSchema(parquet.SchemaOf(badRow{}), tbl)
	if err == nil {
		t.Fatal("schema missing fluid_category should fail")
	}
	if !strings.Contains(err.Error(), "fluid_category") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestInspect(t *testing.T) {
	tbl, _ := model.TableByName("blood_cultures")
	dir := t.TempDir()
	path := filepath.Join(dir, tbl.FileName)

	collect := "2024-03-01 12:00:00"
	rows := []model.BloodCultureRow{
		{HospitalizationID: "H1", CollectDTTM: &collect, FluidCategory: "Blood"},
		{HospitalizationID: "H1", CollectDTTM: &collect, FluidCategory: "Urine"},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[model.BloodCultureRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	n, err := tableread.Inspect(path, tbl)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestInspect_WrongSchema(t *testing.T) {
	tbl, _ := model.TableByName("labs")
	dir := t.TempDir()
	path := filepath.Join(dir, tbl.FileName)

	type wrongRow struct {
		Foo string `parquet:"foo"`
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[wrongRow](f)
	if _, err := w.Write([]wrongRow{{Foo: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := tableread.Inspect(path, tbl); err == nil {
		t.Error("expected schema error for wrong columns")
	}
}

package obs

import (
	"reflect"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestTable_AddColumn(t *testing.T) {
	tbl := NewTable(2)
	if err := tbl.AddColumn("ra", []any{10.0, 11.0}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := tbl.AddColumn("ra", []any{12.0, 13.0}); err == nil {
		t.Error("expected error for duplicate column")
	}
	if err := tbl.AddColumn("dec", []any{1.0}); err == nil {
		t.Error("expected error for length mismatch")
	}
	if got := tbl.Cell("ra", 1); got != 11.0 {
		t.Errorf("Cell(ra, 1) = %v, want 11", got)
	}
	if got := tbl.Cell("missing", 0); got != nil {
		t.Errorf("Cell on absent column = %v, want nil", got)
	}
}

func TestFromObservations_ColumnPresence(t *testing.T) {
	recs := []Observation{
		{TrkSub: "A1", MJD: 59000.5, RA: 10, Dec: -5, Mag: 20.1, Band: "g", Station: "F51", Mode: "CCD", AstCat: "Gaia2"},
		{TrkSub: "A2", MJD: 59000.6, RA: 10.1, Dec: -5.1, Mag: 20.2, Band: "g", Station: "F51", Mode: "CCD", AstCat: "Gaia2",
			RMSMag: floatPtr(0.05)},
	}

	tbl := FromObservations(recs)

	want := []string{"trkSub", "mjd", "ra", "dec", "mag", "rmsMag", "band", "stn", "mode", "astCat"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns = %v, want %v", got, want)
	}

	// permID carried by no record: column absent entirely.
	if tbl.HasColumn(ColPermID) {
		t.Error("permID column should be absent")
	}
	// rmsMag carried by one record: column present, other row's cell missing.
	if got := tbl.Cell(ColRMSMag, 0); got != nil {
		t.Errorf("Cell(rmsMag, 0) = %v, want nil", got)
	}
	if got := tbl.Cell(ColRMSMag, 1); got != 0.05 {
		t.Errorf("Cell(rmsMag, 1) = %v, want 0.05", got)
	}
}

func TestFromObservations_RequiredColumnsAlwaysPresent(t *testing.T) {
	// Even with blank categorical values the required columns exist, so the
	// exporter can report them missing per cell rather than per column.
	tbl := FromObservations([]Observation{{TrkSub: "X", MJD: 59000, RA: 1, Dec: 2, Mag: 3}})
	for _, name := range []string{ColBand, ColStation, ColMode, ColAstCat} {
		if !tbl.HasColumn(name) {
			t.Errorf("column %s should always be present", name)
		}
	}
}

func TestObservation_ID(t *testing.T) {
	tests := []struct {
		o    Observation
		want string
	}{
		{Observation{PermID: "12345", TrkSub: "t1"}, "12345"},
		{Observation{ProvID: "2020 AB", TrkSub: "t1"}, "2020 AB"},
		{Observation{TrkSub: "t1"}, "t1"},
		{Observation{}, ""},
	}
	for _, tt := range tests {
		if got := tt.o.ID(); got != tt.want {
			t.Errorf("ID() = %q, want %q", got, tt.want)
		}
	}
}

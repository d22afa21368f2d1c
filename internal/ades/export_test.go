package ades

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ades_exporter/internal/obs"
)

// minimalTable returns a one-row table with the required columns and a
// trkSub identifier.
func minimalTable(t *testing.T) *obs.Table {
	t.Helper()
	tbl := obs.NewTable(1)
	add := func(name string, v any) {
		t.Helper()
		if err := tbl.AddColumn(name, []any{v}); err != nil {
			t.Fatalf("AddColumn(%s): %v", name, err)
		}
	}
	add("trkSub", "A1B2C3")
	add("mjd", 59000.5)
	add("ra", 10.0)
	add("dec", -5.0)
	add("mag", 20.1)
	add("band", "g")
	add("stn", "F51")
	add("mode", "CCD")
	add("astCat", "Gaia2")
	return tbl
}

func TestWrite_EndToEnd(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, minimalTable(t), Options{Metadata: validMetadata()})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# version=2017\n") {
		t.Error("output does not start with version marker")
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	colLine := ""
	dataLine := ""
	for i, line := range lines {
		if line == "trkSub|obsTime|ra|dec|mag|band|stn|mode|astCat" {
			colLine = line
			dataLine = lines[i+1]
		}
	}
	if colLine == "" {
		t.Fatalf("column line not found in output:\n%s", out)
	}

	fields := strings.Split(dataLine, "|")
	if len(fields) != 9 {
		t.Fatalf("data line has %d fields, want 9: %q", len(fields), dataLine)
	}
	want := []string{
		"A1B2C3",
		"2020-05-31T12:00:00.000000000Z",
		"10.0000000000000000",
		"-5.0000000000000000",
		"20.1000000000000014",
		"g", "F51", "CCD", "Gaia2",
	}
	for i, w := range want {
		if fields[i] != w {
			t.Errorf("field %d = %q, want %q", i, fields[i], w)
		}
	}
}

func TestWrite_MissingIdentificationColumns(t *testing.T) {
	tbl := obs.NewTable(1)
	for name, v := range map[string]any{
		"mjd": 59000.0, "ra": 1.0, "dec": 2.0, "mag": 3.0,
		"band": "r", "stn": "703", "mode": "CCD", "astCat": "Gaia2",
	} {
		if err := tbl.AddColumn(name, []any{v}); err != nil {
			t.Fatalf("AddColumn(%s): %v", name, err)
		}
	}

	var buf bytes.Buffer
	err := Write(&buf, tbl, Options{Metadata: validMetadata()})
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
	if buf.Len() != 0 {
		t.Error("output produced despite missing identification columns")
	}
}

func TestWrite_MissingRequiredColumn(t *testing.T) {
	tbl := obs.NewTable(1)
	_ = tbl.AddColumn("trkSub", []any{"X"})
	_ = tbl.AddColumn("mjd", []any{59000.0})

	err := Write(&bytes.Buffer{}, tbl, Options{Metadata: validMetadata()})
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
}

func TestWrite_NumericFidelity(t *testing.T) {
	tbl := minimalTable(t)
	var buf bytes.Buffer

	tbl2 := obs.NewTable(1)
	for _, name := range tbl.Columns() {
		v := tbl.Cell(name, 0)
		if name == "ra" {
			v = 123.456789012345
		}
		_ = tbl2.AddColumn(name, []any{v})
	}
	if err := Write(&buf, tbl2, Options{Metadata: validMetadata()}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var raField string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "A1B2C3|") {
			raField = strings.Split(line, "|")[2]
		}
	}
	// The nearest double to 123.456789012345 rendered at %.16f.
	if raField != "123.4567890123449985" {
		t.Errorf("ra field = %q, want 123.4567890123449985", raField)
	}
	frac := strings.SplitN(raField, ".", 2)[1]
	if len(frac) != 16 {
		t.Errorf("ra field %q has %d fractional digits, want 16", raField, len(frac))
	}
}

func TestWrite_MissingOptionalCell(t *testing.T) {
	tbl := obs.NewTable(2)
	add := func(name string, vs ...any) { _ = tbl.AddColumn(name, vs) }
	add("trkSub", "t1", "t2")
	add("mjd", 59000.0, 59000.1)
	add("ra", 1.0, 2.0)
	add("dec", 3.0, 4.0)
	add("mag", 5.0, 6.0)
	add("rmsMag", 0.05, nil) // second row never measured
	add("band", "g", "g")
	add("stn", "F51", "F51")
	add("mode", "CCD", "CCD")
	add("astCat", "Gaia2", "Gaia2")

	var buf bytes.Buffer
	if err := Write(&buf, tbl, Options{Metadata: validMetadata()}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var row2 string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "t2|") {
			row2 = line
		}
	}
	fields := strings.Split(row2, "|")
	// trkSub|obsTime|ra|dec|mag|rmsMag|band|stn|mode|astCat
	if fields[5] != " " {
		t.Errorf("missing rmsMag cell = %q, want single space", fields[5])
	}
}

func TestWrite_OptionalColumnPropagation(t *testing.T) {
	tbl := minimalTable(t)
	var buf bytes.Buffer
	_ = Write(&buf, tbl, Options{Metadata: validMetadata()})
	if strings.Contains(buf.String(), "remarks") {
		t.Error("remarks column emitted for a table without one")
	}

	tbl2 := obs.NewTable(1)
	for _, name := range tbl.Columns() {
		_ = tbl2.AddColumn(name, []any{tbl.Cell(name, 0)})
	}
	_ = tbl2.AddColumn("remarks", []any{"trailed image"})

	buf.Reset()
	if err := Write(&buf, tbl2, Options{Metadata: validMetadata()}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "trkSub|obsTime|ra|dec|mag|band|stn|mode|astCat|remarks\n") {
		t.Error("remarks column not propagated to output")
	}
	if !strings.Contains(buf.String(), "|trailed image\n") {
		t.Error("remarks value not written")
	}
}

func TestWrite_ObsTimeScaleAndPrecision(t *testing.T) {
	tbl := obs.NewTable(1)
	add := func(name string, v any) { _ = tbl.AddColumn(name, []any{v}) }
	add("trkSub", "X")
	add("mjd", 59000.0)
	add("ra", 1.0)
	add("dec", 2.0)
	add("mag", 3.0)
	add("band", "g")
	add("stn", "F51")
	add("mode", "CCD")
	add("astCat", "Gaia2")

	var buf bytes.Buffer
	if err := Write(&buf, tbl, Options{MJDScale: "utc", SecondsPrecision: 4, Metadata: validMetadata()}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "|2020-05-31T00:00:00.0000Z|") {
		t.Errorf("obsTime not rendered at 4 digits with Z suffix:\n%s", buf.String())
	}
}

func TestWrite_TypeConversion(t *testing.T) {
	tbl := obs.NewTable(1)
	add := func(name string, v any) { _ = tbl.AddColumn(name, []any{v}) }
	add("trkSub", "X")
	add("mjd", 59000.0)
	add("ra", "not-a-number")
	add("dec", 2.0)
	add("mag", 3.0)
	add("band", "g")
	add("stn", "F51")
	add("mode", "CCD")
	add("astCat", "Gaia2")

	var buf bytes.Buffer
	err := Write(&buf, tbl, Options{Metadata: validMetadata()})
	if !errors.Is(err, ErrTypeConversion) {
		t.Errorf("err = %v, want ErrTypeConversion", err)
	}
	if buf.Len() != 0 {
		t.Error("partial output written despite conversion failure")
	}
}

func TestExport_NoPartialFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obs.psv")

	tbl := obs.NewTable(1)
	_ = tbl.AddColumn("mjd", []any{59000.0}) // no identification columns

	err := Export(tbl, path, Options{Metadata: validMetadata()})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("output file created despite validation failure")
	}
}

func TestExport_WritesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obs.psv")

	if err := os.WriteFile(path, []byte("stale contents\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Export(minimalTable(t), path, Options{Metadata: validMetadata()}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "stale") {
		t.Error("existing file not truncated")
	}
	if !strings.HasPrefix(out, "# version=2017\n") {
		t.Error("file does not start with version marker")
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("file does not end with newline")
	}
}

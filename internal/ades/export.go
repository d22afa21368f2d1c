package ades

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"ades_exporter/internal/obstime"
)

// Table is the column access the exporter needs from an observation set.
// Cell returns nil for a missing value; HasColumn distinguishes an absent
// column from a present column with missing cells.
type Table interface {
	Columns() []string
	HasColumn(name string) bool
	Len() int
	Cell(name string, row int) any
}

// Options controls an export. The zero value of MJDScale means "utc" and
// a zero SecondsPrecision means the ADES-customary 9 fractional digits.
type Options struct {
	MJDScale         string
	SecondsPrecision int
	Metadata         Metadata
}

// Output column order. Identification columns come first (only those
// present), then the converted obsTime, then measurements; optional
// columns are included only when the input table carries them.
var (
	idColumns       = []string{"permID", "provID", "trkSub"}
	measureColumns  = []string{"ra", "dec", "rmsRA", "rmsDec", "mag", "rmsMag", "band", "stn", "mode", "astCat", "remarks"}
	requiredColumns = []string{"mjd", "ra", "dec", "mag", "band", "stn", "mode", "astCat"}
	floatColumns    = map[string]bool{"ra": true, "dec": true, "rmsRA": true, "rmsDec": true, "mag": true, "rmsMag": true}
	optionalColumns = map[string]bool{"rmsRA": true, "rmsDec": true, "rmsMag": true, "remarks": true}
)

// document is a fully validated export, ready to be written out.
type document struct {
	header  []string
	columns []string
	rows    [][]string
}

// Export writes the table as an ADES PSV file at path, overwriting any
// existing file. All validation and conversion happens before the file is
// opened, so a failed export never leaves a partial file behind.
func Export(table Table, path string, opts Options) error {
	doc, err := build(table, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := doc.writeTo(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Write writes the table as ADES PSV to w. Same validation semantics as
// Export; nothing is written when the table or metadata is invalid.
func Write(w io.Writer, table Table, opts Options) error {
	doc, err := build(table, opts)
	if err != nil {
		return err
	}
	return doc.writeTo(w)
}

func (d *document) writeTo(w io.Writer) error {
	for _, line := range d.header {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, strings.Join(d.columns, "|")+"\n"); err != nil {
		return err
	}
	for _, row := range d.rows {
		if _, err := io.WriteString(w, strings.Join(row, "|")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func build(table Table, opts Options) (*document, error) {
	if opts.MJDScale == "" {
		opts.MJDScale = "utc"
	}
	if opts.SecondsPrecision == 0 {
		opts.SecondsPrecision = 9
	}

	header, err := BuildHeader(opts.Metadata)
	if err != nil {
		return nil, err
	}

	// Identification gate: the one hard requirement on the table shape.
	var columns []string
	for _, name := range idColumns {
		if table.HasColumn(name) {
			columns = append(columns, name)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: at least one of permID, provID or trkSub must be present in observations", ErrMissingField)
	}

	for _, name := range requiredColumns {
		if !table.HasColumn(name) {
			return nil, fmt.Errorf("%w: observations have no %s column", ErrMissingField, name)
		}
	}

	columns = append(columns, "obsTime")
	for _, name := range measureColumns {
		if optionalColumns[name] && !table.HasColumn(name) {
			continue
		}
		columns = append(columns, name)
	}

	rows := make([][]string, table.Len())
	for i := range rows {
		row := make([]string, 0, len(columns))
		for _, name := range columns {
			cell, err := renderCell(table, name, i, opts)
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
		}
		rows[i] = row
	}

	return &document{header: header, columns: columns, rows: rows}, nil
}

func renderCell(table Table, name string, row int, opts Options) (string, error) {
	if name == "obsTime" {
		mjd, err := asFloat(table.Cell("mjd", row))
		if err != nil || math.IsNaN(mjd) {
			return "", fmt.Errorf("%w: row %d: mjd is not a valid number", ErrTypeConversion, row)
		}
		t, err := obstime.ToUTC(mjd, opts.MJDScale)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", row, err)
		}
		return obstime.FormatISO(t, opts.SecondsPrecision), nil
	}

	v := table.Cell(name, row)
	if v == nil {
		return " ", nil
	}

	if floatColumns[name] {
		f, err := asFloat(v)
		if err != nil {
			return "", fmt.Errorf("%w: row %d: %s value %v is not a number", ErrTypeConversion, row, name, v)
		}
		if math.IsNaN(f) {
			return " ", nil
		}
		return strconv.FormatFloat(f, 'f', 16, 64), nil
	}

	return fmt.Sprint(v), nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

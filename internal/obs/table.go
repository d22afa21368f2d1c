package obs

import "fmt"

// Table is a column-oriented view of a set of observation records. Columns
// keep their insertion order; a nil cell means the value is missing for
// that row. Optional columns that no record carries are simply absent,
// which is distinct from a present column with missing cells.
type Table struct {
	names []string
	cols  map[string][]any
	rows  int
}

// NewTable returns an empty table with capacity for rows rows.
func NewTable(rows int) *Table {
	return &Table{
		cols: make(map[string][]any),
		rows: rows,
	}
}

// AddColumn appends a named column. The value count must match the table's
// row count, and a column may only be added once.
func (t *Table) AddColumn(name string, values []any) error {
	if _, dup := t.cols[name]; dup {
		return fmt.Errorf("column %q already present", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	return nil
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Cell returns the value at (name, row), or nil when the cell is missing
// or the column does not exist.
func (t *Table) Cell(name string, row int) any {
	col, ok := t.cols[name]
	if !ok || row < 0 || row >= len(col) {
		return nil
	}
	return col[row]
}

// FromObservations builds a table from records. A column is included iff
// at least one record carries a value for it; within an included column,
// records without a value get a missing cell. Required measurement columns
// (mjd, ra, dec, mag, band, stn, mode, astCat) are always included.
func FromObservations(recs []Observation) *Table {
	t := NewTable(len(recs))

	addString := func(name string, get func(*Observation) string, always bool) {
		present := always
		for i := range recs {
			if get(&recs[i]) != "" {
				present = true
				break
			}
		}
		if !present {
			return
		}
		values := make([]any, len(recs))
		for i := range recs {
			if s := get(&recs[i]); s != "" {
				values[i] = s
			}
		}
		_ = t.AddColumn(name, values)
	}

	addFloat := func(name string, get func(*Observation) float64) {
		values := make([]any, len(recs))
		for i := range recs {
			values[i] = get(&recs[i])
		}
		_ = t.AddColumn(name, values)
	}

	addOptFloat := func(name string, get func(*Observation) *float64) {
		present := false
		for i := range recs {
			if get(&recs[i]) != nil {
				present = true
				break
			}
		}
		if !present {
			return
		}
		values := make([]any, len(recs))
		for i := range recs {
			if p := get(&recs[i]); p != nil {
				values[i] = *p
			}
		}
		_ = t.AddColumn(name, values)
	}

	addString(ColPermID, func(o *Observation) string { return o.PermID }, false)
	addString(ColProvID, func(o *Observation) string { return o.ProvID }, false)
	addString(ColTrkSub, func(o *Observation) string { return o.TrkSub }, false)
	addFloat(ColMJD, func(o *Observation) float64 { return o.MJD })
	addFloat(ColRA, func(o *Observation) float64 { return o.RA })
	addFloat(ColDec, func(o *Observation) float64 { return o.Dec })
	addOptFloat(ColRMSRA, func(o *Observation) *float64 { return o.RMSRA })
	addOptFloat(ColRMSDec, func(o *Observation) *float64 { return o.RMSDec })
	addFloat(ColMag, func(o *Observation) float64 { return o.Mag })
	addOptFloat(ColRMSMag, func(o *Observation) *float64 { return o.RMSMag })
	addString(ColBand, func(o *Observation) string { return o.Band }, true)
	addString(ColStation, func(o *Observation) string { return o.Station }, true)
	addString(ColMode, func(o *Observation) string { return o.Mode }, true)
	addString(ColAstCat, func(o *Observation) string { return o.AstCat }, true)
	addString(ColRemarks, func(o *Observation) string { return o.Remarks }, false)

	return t
}

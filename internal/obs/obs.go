// Package obs provides observation record types and a column-oriented
// table over them for export.
package obs

// Column names used across the exporter. The three identification columns
// are mutually optional but at least one must be present in a table.
const (
	ColPermID  = "permID"
	ColProvID  = "provID"
	ColTrkSub  = "trkSub"
	ColMJD     = "mjd"
	ColRA      = "ra"
	ColDec     = "dec"
	ColRMSRA   = "rmsRA"
	ColRMSDec  = "rmsDec"
	ColMag     = "mag"
	ColRMSMag  = "rmsMag"
	ColBand    = "band"
	ColStation = "stn"
	ColMode    = "mode"
	ColAstCat  = "astCat"
	ColRemarks = "remarks"
)

// Observation is one astrometric measurement of a moving object: a sky
// position at a time, with photometry and provenance. Optional numeric
// uncertainties are pointers; nil means the value was never measured.
type Observation struct {
	PermID string `json:"permID,omitempty"`
	ProvID string `json:"provID,omitempty"`
	TrkSub string `json:"trkSub,omitempty"`

	MJD float64 `json:"mjd"`
	RA  float64 `json:"ra"`  // degrees
	Dec float64 `json:"dec"` // degrees

	RMSRA  *float64 `json:"rmsRA,omitempty"`
	RMSDec *float64 `json:"rmsDec,omitempty"`

	Mag    float64  `json:"mag"`
	RMSMag *float64 `json:"rmsMag,omitempty"`

	Band    string `json:"band"`
	Station string `json:"stn"`
	Mode    string `json:"mode"`
	AstCat  string `json:"astCat"`

	Remarks string `json:"remarks,omitempty"`
}

// ID returns the first non-empty identifier in permID, provID, trkSub order.
func (o *Observation) ID() string {
	switch {
	case o.PermID != "":
		return o.PermID
	case o.ProvID != "":
		return o.ProvID
	default:
		return o.TrkSub
	}
}

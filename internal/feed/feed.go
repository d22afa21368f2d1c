// Package feed receives candidate observation batches from the survey
// pipeline over NATS and decodes them into observation records.
//
// Note about input formats
// ------------------------
// Producers publish either a wrapped batch:
//
//	{"source": {"name": "nightly", "pipeline": "v2"}, "station": "F51", "observations": [...]}
//
// or a bare JSON array of observations. DecodeBatch autodetects both.
package feed

import (
	"encoding/json"
	"fmt"

	"ades_exporter/internal/obs"
)

// Source identifies the pipeline run that produced a batch.
type Source struct {
	Name     string `json:"name,omitempty"`
	Pipeline string `json:"pipeline,omitempty"`
}

// Batch is one delivery of candidate observations.
type Batch struct {
	Source       *Source           `json:"source,omitempty"`
	Station      string            `json:"station,omitempty"`
	Observations []obs.Observation `json:"observations"`
}

// SourceName returns the producing pipeline's name, or "unknown".
func (b *Batch) SourceName() string {
	if b.Source != nil && b.Source.Name != "" {
		return b.Source.Name
	}
	return "unknown"
}

// DecodeBatch decodes a feed payload, accepting both the wrapped batch
// form and a bare observation array. A batch-level station fills in any
// record that carries no station of its own.
func DecodeBatch(data []byte) (*Batch, error) {
	var batch Batch
	if err := json.Unmarshal(data, &batch); err == nil && len(batch.Observations) > 0 {
		batch.fillStation()
		return &batch, nil
	}

	var recs []obs.Observation
	if err := json.Unmarshal(data, &recs); err == nil && len(recs) > 0 {
		return &Batch{Observations: recs}, nil
	}

	return nil, fmt.Errorf("payload is neither a batch nor an observation array")
}

func (b *Batch) fillStation() {
	if b.Station == "" {
		return
	}
	for i := range b.Observations {
		if b.Observations[i].Station == "" {
			b.Observations[i].Station = b.Station
		}
	}
}

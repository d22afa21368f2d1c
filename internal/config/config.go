// Package config holds the submission metadata that describes who
// observed, measured and is submitting a batch of observations. Values
// come from a JSON file merged over built-in defaults; the exporter
// receives them as an explicit struct rather than reading global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"ades_exporter/internal/ades"
)

// Config mirrors the metadata keys of the submission config file.
type Config struct {
	ObservatoryCode      string   `json:"observatory_code"`
	ObservatoryName      string   `json:"observatory_name,omitempty"`
	Submitter            string   `json:"submitter"`
	SubmitterInstitution string   `json:"submitter_institution,omitempty"`
	TelescopeDesign      string   `json:"telescope_design"`
	TelescopeAperture    string   `json:"telescope_aperture"`
	TelescopeDetector    string   `json:"telescope_detector"`
	TelescopeName        string   `json:"telescope_name,omitempty"`
	Observers            []string `json:"observers"`
	Measurers            []string `json:"measurers"`
}

// Default returns the built-in telescope and observatory settings.
// Observers, measurers and the submitter have no sensible defaults and
// must come from the config file; exports fail validation without them.
func Default() Config {
	return Config{
		ObservatoryCode:   "X05",
		TelescopeDesign:   "Reflector",
		TelescopeAperture: "8.4",
		TelescopeDetector: "CCD",
	}
}

// Load reads a JSON config file, with missing keys falling back to the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Metadata converts the config into header metadata for one export.
// The comment is per-export, not part of the persistent config.
func (c Config) Metadata(comment string) ades.Metadata {
	return ades.Metadata{
		ObservatoryCode:      c.ObservatoryCode,
		ObservatoryName:      c.ObservatoryName,
		Submitter:            c.Submitter,
		SubmitterInstitution: c.SubmitterInstitution,
		TelescopeDesign:      c.TelescopeDesign,
		TelescopeAperture:    c.TelescopeAperture,
		TelescopeDetector:    c.TelescopeDetector,
		TelescopeName:        c.TelescopeName,
		Observers:            c.Observers,
		Measurers:            c.Measurers,
		Comment:              comment,
	}
}

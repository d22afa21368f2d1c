package ades

import (
	"fmt"
	"strings"
)

// Metadata describes the observatory, submitter and telescope for one
// submission. Optional fields are empty strings; Comment is a single
// free-text line emitted verbatim.
type Metadata struct {
	ObservatoryCode string // MPC-assigned code, e.g. "F51"
	ObservatoryName string // optional

	Submitter            string
	SubmitterInstitution string // optional

	TelescopeDesign   string // e.g. "Reflector"
	TelescopeAperture string // primary aperture in meters, e.g. "1.8"
	TelescopeDetector string // e.g. "CCD"
	TelescopeName     string // optional

	Observers []string // "J. Smith" style, in credit order
	Measurers []string

	Comment string // optional
}

func (m *Metadata) validate() error {
	required := []struct {
		name, value string
	}{
		{"observatory code", m.ObservatoryCode},
		{"submitter", m.Submitter},
		{"telescope design", m.TelescopeDesign},
		{"telescope aperture", m.TelescopeAperture},
		{"telescope detector", m.TelescopeDetector},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, f.name)
		}
	}

	if err := validateNames("observers", m.Observers); err != nil {
		return err
	}
	return validateNames("measurers", m.Measurers)
}

func validateNames(field string, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: %s must be a non-empty list of names", ErrInvalidInput, field)
	}
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: %s entry %d is blank", ErrInvalidInput, field, i)
		}
	}
	return nil
}

// BuildHeader assembles the ADES PSV metadata header: the version marker
// followed by observatory, submitter, telescope, observers and measurers
// sections, plus a comment section when a comment is set. Section markers
// start with "# " and key/value lines with "! "; every returned line ends
// with a newline. Telescope aperture and detector come from the supplied
// metadata rather than being fixed values.
func BuildHeader(meta Metadata) ([]string, error) {
	if err := meta.validate(); err != nil {
		return nil, err
	}

	lines := []string{"# version=2017"}

	lines = append(lines, "# observatory")
	lines = append(lines, "! mpcCode "+meta.ObservatoryCode)
	if meta.ObservatoryName != "" {
		lines = append(lines, "! name "+meta.ObservatoryName)
	}

	lines = append(lines, "# submitter")
	lines = append(lines, "! name "+meta.Submitter)
	if meta.SubmitterInstitution != "" {
		lines = append(lines, "! institution "+meta.SubmitterInstitution)
	}

	lines = append(lines, "# telescope")
	if meta.TelescopeName != "" {
		lines = append(lines, "! name "+meta.TelescopeName)
	}
	lines = append(lines, "! aperture "+meta.TelescopeAperture)
	lines = append(lines, "! design "+meta.TelescopeDesign)
	lines = append(lines, "! detector "+meta.TelescopeDetector)

	lines = append(lines, "# observers")
	for _, name := range meta.Observers {
		lines = append(lines, "! name "+name)
	}

	lines = append(lines, "# measurers")
	for _, name := range meta.Measurers {
		lines = append(lines, "! name "+name)
	}

	if meta.Comment != "" {
		lines = append(lines, "# comment")
		lines = append(lines, "! line "+meta.Comment)
	}

	for i := range lines {
		lines[i] += "\n"
	}
	return lines, nil
}

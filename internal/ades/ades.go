// Package ades writes minor-planet observations in the ADES
// (Astrometry Data Exchange Standard) pipe-separated-value format used
// for submissions to the Minor Planet Center. The output is a fixed
// metadata header followed by a pipe-delimited observation table; this
// package only writes the format, it does not read it.
package ades

import "errors"

// Sentinel errors, matched by callers with errors.Is.
var (
	// ErrInvalidInput reports malformed header metadata, such as an empty
	// observer list or a blank required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingField reports a required observation column that is
	// absent from the input table.
	ErrMissingField = errors.New("missing required field")

	// ErrTypeConversion reports a cell value that could not be converted
	// to the type its column requires.
	ErrTypeConversion = errors.New("type conversion failed")
)

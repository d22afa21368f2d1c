// Package obstime converts Modified Julian Date observation times to UTC
// and renders them as ISO-8601 strings for ADES output.
package obstime

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MJD epoch: 1858-11-17T00:00:00 UTC.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// Offsets of the supported time scales ahead of UTC. TAI-UTC is the
// post-2017 leap second count; TT = TAI + 32.184s.
const (
	taiOffset = 37 * time.Second
	ttOffset  = taiOffset + 32184*time.Millisecond
)

// scaleOffset returns how far the named scale runs ahead of UTC.
func scaleOffset(scale string) (time.Duration, error) {
	switch strings.ToLower(scale) {
	case "utc":
		return 0, nil
	case "tai":
		return taiOffset, nil
	case "tt":
		return ttOffset, nil
	default:
		return 0, fmt.Errorf("unknown time scale %q (want utc, tai or tt)", scale)
	}
}

// ToUTC converts a Modified Julian Date in the named time scale to a UTC
// time.Time. The integer day count and the day fraction are split before
// conversion so sub-millisecond precision survives the float64 arithmetic.
func ToUTC(mjd float64, scale string) (time.Time, error) {
	off, err := scaleOffset(scale)
	if err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(mjd) || math.IsInf(mjd, 0) {
		return time.Time{}, fmt.Errorf("invalid mjd value %v", mjd)
	}

	day, frac := math.Modf(mjd)
	t := mjdEpoch.Add(time.Duration(int64(day)) * 24 * time.Hour)
	t = t.Add(time.Duration(math.Round(frac * float64(24*time.Hour))))
	return t.Add(-off), nil
}

// FormatISO renders t in UTC as an ISO-8601 extended timestamp with the
// given number of fractional-second digits and a literal Z suffix. The
// value is rounded, not truncated, to the requested precision. Precision
// is clamped to [0, 9].
func FormatISO(t time.Time, precision int) string {
	if precision < 0 {
		precision = 0
	}
	if precision > 9 {
		precision = 9
	}

	step := time.Nanosecond
	for i := 0; i < 9-precision; i++ {
		step *= 10
	}
	t = t.UTC().Round(step)

	layout := "2006-01-02T15:04:05"
	if precision > 0 {
		layout += "." + strings.Repeat("0", precision)
	}
	return t.Format(layout) + "Z"
}

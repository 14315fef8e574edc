// Package auditdate picks the calendar day a MAR binder audit inspects.
// Binders are printed for the facility day after the one being audited,
// so the audit date is the day before the print date embedded in the
// filename, falling back to the previous facility day when the filename
// carries no date. The facility runs on Central time.
package auditdate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// EnvOverride names the environment variable that pins the audit date for
// reruns, formatted MMDDYYYY.
const EnvOverride = "MAR_AUDIT_DATE_MMDDYYYY"

const facilityTZ = "America/Chicago"

// Exported binders carry the print date year first; scanned ones month
// first. The year-first form is tried ahead of the others.
var filenamePatterns = []struct {
	re               *regexp.Regexp
	month, day, year int
}{
	{regexp.MustCompile(`(\d{4})[-_.](\d{2})[-_.](\d{2})`), 2, 3, 1},
	{regexp.MustCompile(`(\d{2})[-_.](\d{2})[-_.](\d{4})`), 1, 2, 3},
	{regexp.MustCompile(`(\d{2})(\d{2})(\d{4})`), 1, 2, 3},
}

// Location returns the facility time zone, degrading to UTC when the zone
// database is unavailable.
func Location() *time.Location {
	loc, err := time.LoadLocation(facilityTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Resolve determines the audit date. A non-empty override wins and names
// the audit date directly; a date found in the filename is the print date
// and yields the day before; otherwise the audit date is the previous
// facility day relative to now.
func Resolve(filename, override string, now time.Time) (time.Time, error) {
	loc := Location()

	if override != "" {
		t, err := time.ParseInLocation("01022006", override, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse audit date override %q: %w", override, err)
		}
		return t, nil
	}

	base := filepath.Base(filename)
	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		printed, err := time.ParseInLocation("01022006", m[p.month]+m[p.day]+m[p.year], loc)
		if err != nil {
			continue
		}
		return printed.AddDate(0, 0, -1), nil
	}

	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1), nil
}

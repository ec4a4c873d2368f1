package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// canonicalDOBLayout is the single output form: MM-DD-YYYY with
// zero-padded month and day.
const canonicalDOBLayout = "01-02-2006"

// dateConvention pairs a parse layout with the syntactic shape it
// accepts. The shape check separates "no convention matched" (format
// error) from "matched but not a real date" (calendar error).
type dateConvention struct {
	layout string
	shape  *regexp.Regexp
}

// dateConventions are tried in fixed order; the first that parses as a
// real calendar date wins. No content heuristics, trial order only. The
// unpadded layouts accept both "4-22-1980" and "04-22-1980"; a
// zero-padded layout would reject single-digit months and days.
var dateConventions = []dateConvention{
	{"1-2-2006", regexp.MustCompile(`^[0-9]{1,2}-[0-9]{1,2}-[0-9]{4}$`)},
	{"1/2/2006", regexp.MustCompile(`^[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}$`)},
	{"2006-1-2", regexp.MustCompile(`^[0-9]{4}-[0-9]{1,2}-[0-9]{1,2}$`)},
}

// normalizeDOB parses a date substring under the accepted conventions and
// returns the canonical MM-DD-YYYY form. Calendar correctness (real
// day-of-month, leap-year Feb 29, month range) comes from strict
// time.Parse, not digit-range regexes. Failure precedence: format, then
// calendar validity, then future date, then the optional minimum floor.
func (v *Validator) normalizeDOB(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", models.ErrDOBUnparseable
	}

	parsed, shapeMatched := parseConventions(s)
	if parsed == nil {
		// Recover mixed-separator input by rewriting slashes to hyphens
		// and retrying the same convention list once.
		if alt := strings.ReplaceAll(s, "/", "-"); alt != s {
			p, sm := parseConventions(alt)
			parsed = p
			shapeMatched = shapeMatched || sm
		}
	}
	if parsed == nil {
		if shapeMatched {
			return "", models.ErrDOBInvalidDate
		}
		return "", models.ErrDOBUnparseable
	}

	now := v.clock()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.After(today) {
		return "", models.ErrDOBInFuture
	}
	if v.minYear > 0 && parsed.Year() < v.minYear {
		return "", models.ErrDOBBeforeMinimum
	}
	return parsed.Format(canonicalDOBLayout), nil
}

// parseConventions tries each convention in order. The second return
// value reports whether any shape matched, regardless of parse success.
func parseConventions(s string) (*time.Time, bool) {
	shapeMatched := false
	for _, c := range dateConventions {
		if !c.shape.MatchString(s) {
			continue
		}
		shapeMatched = true
		t, err := time.Parse(c.layout, s)
		if err != nil {
			continue
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &day, true
	}
	return nil, shapeMatched
}

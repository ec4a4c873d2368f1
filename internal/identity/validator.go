// Package identity validates and normalizes patient-identity input for
// call prep. It recognizes two mutually exclusive schemes, a
// subscriber/member identifier pair or a name plus date of birth, from
// free conversational text or a structured key-value payload, and returns
// one canonical record or a precise validation error.
//
// Validation is a pure function of its input and the injected clock: no
// I/O, no shared state, safe for concurrent use.
package identity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// DefaultMinBirthYear is the documented floor applied when the stricter
// minimum-birth-year check is enabled without an explicit year.
const DefaultMinBirthYear = 1900

// embeddedTextKeys is the fixed ordered list of structured keys that may
// carry conversational text. The first non-empty match wins and is routed
// through text detection.
var embeddedTextKeys = []string{"input", "text", "message", "query", "user_message", "topic"}

// Validator applies the dual-scheme recognition rules. Zero-value options
// give the tolerant behavior: no birth-year floor, wall-clock time.
type Validator struct {
	clock   func() time.Time
	minYear int
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock injects the time source used for future-date rejection. Tests
// pass a fixed clock to keep validation deterministic.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// WithMinYear enables the minimum-birth-year floor. Dates with a year
// before the floor fail with ErrDOBBeforeMinimum. A year of 0 disables
// the check.
func WithMinYear(year int) Option {
	return func(v *Validator) { v.minYear = year }
}

// New creates a Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{clock: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate determines which identity scheme governs the input, extracts
// and normalizes its fields, and returns the canonical record. On failure
// it returns one of the models sentinel errors; success and failure are
// strictly disjoint; no partial record accompanies an error.
func (v *Validator) Validate(input models.RawInput) (models.Identity, error) {
	switch input.Kind {
	case models.RawInputText:
		return v.validateText(input.Text)
	case models.RawInputStructured:
		return v.validateStructured(input.Fields)
	default:
		return models.Identity{}, models.ErrUnrecognizedInput
	}
}

// validateText runs scheme detection over free text. The ID scheme is
// tried first: it is the cheaper, more constrained check, and the two
// schemes never co-occur in valid input.
func (v *Validator) validateText(raw string) (models.Identity, error) {
	s := strings.TrimSpace(stripInvisible(raw))
	if s == "" {
		return models.Identity{}, models.ErrUnrecognizedInput
	}
	if id, ok := extractID(s); ok {
		return id, nil
	}
	if id, matched, err := v.extractNameDOB(s); matched {
		return id, err
	}
	return models.Identity{}, models.ErrUnrecognizedInput
}

// validateStructured inspects a key-value payload. Embedded free text
// takes priority and recurses into text detection; otherwise an explicit
// subscriber+member pair is preferred over the name+DOB triple.
func (v *Validator) validateStructured(fields map[string]interface{}) (models.Identity, error) {
	for _, key := range embeddedTextKeys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return v.validateText(s)
		}
	}

	sub := firstField(fields, "subscriber_id", "subscriberId", "subscriber")
	mem := firstField(fields, "member_id", "memberId", "member", "suffix", "member_suffix", "suffix_id")
	if sub != "" && mem != "" {
		return idFromStructured(sub, mem)
	}

	first := firstField(fields, "first_name", "firstName", "fname")
	last := firstField(fields, "last_name", "lastName", "lname")
	dob := firstField(fields, "dob", "date_of_birth", "birthdate")
	if first != "" || last != "" || dob != "" {
		if first == "" || last == "" || dob == "" {
			return models.Identity{}, models.ErrMissingFields
		}
		return v.nameDOBFromParts(first+" "+last, dob)
	}

	return models.Identity{}, models.ErrMissingFields
}

// nameDOBFromParts normalizes a structurally supplied name+DOB triple
// through the same cleanup used for free text.
func (v *Validator) nameDOBFromParts(fullName, rawDOB string) (models.Identity, error) {
	first, last, err := cleanNameCandidate(fullName)
	if err != nil {
		return models.Identity{}, err
	}
	dob, err := v.normalizeDOB(rawDOB)
	if err != nil {
		return models.Identity{}, err
	}
	return newNameDOBIdentity(first, last, dob), nil
}

// firstField returns the first non-empty value among the given keys,
// coerced to a trimmed string.
func firstField(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := safeString(fields[key]); s != "" {
			return s
		}
	}
	return ""
}

// safeString coerces a structured value to a trimmed string. JSON numbers
// arrive as float64; integral values are rendered without an exponent so
// numeric subscriber IDs survive the round trip.
func safeString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// stripInvisible removes zero-width and BOM characters that web chat
// frontends occasionally embed in pasted input.
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\ufeff', '\u200e', '\u200f':
			return -1
		}
		return r
	}, s)
}

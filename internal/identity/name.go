package identity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// Name+DOB recognition runs in two tiers. The strict pattern handles
// clean "First Last, DATE" / "First,Last,DATE" input cheaply; only when
// it fails does the tolerant date-anchor extraction run, which absorbs
// honorifics, suffixes, and incidental phrasing.
var (
	reStrictNameDOB = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z'\-]*)\s*[, ]\s*([A-Za-z](?:[A-Za-z'\- ]*[A-Za-z])?)\s*,\s*([0-9]{1,4}[-/][0-9]{1,2}[-/][0-9]{2,4})\s*$`)

	// reDateToken is the permissive anchor pattern. A date is the most
	// unambiguous token in messy input, so everything before it is
	// treated as the name region.
	reDateToken = regexp.MustCompile(`[0-9]{1,4}[-/][0-9]{1,2}[-/][0-9]{2,4}`)
)

// fillerPhrases are stripped from the front of a name candidate,
// case-insensitive, longest match first.
var fillerPhrases = []string{
	"give me details of",
	"give me details for",
	"give me details",
	"show me details of",
	"show me",
	"details of",
	"details for",
	"look up",
	"pull up",
	"find",
	"fetch",
	"get",
}

// honorifics and suffixes discarded during name cleanup. Compared
// lowercased with any trailing period removed.
var honorifics = map[string]bool{
	"mr":         true,
	"mrs":        true,
	"ms":         true,
	"miss":       true,
	"dr":         true,
	"prof":       true,
	"sr":         true,
	"jr":         true,
	"esq":        true,
	"md":         true,
	"phd":        true,
	"ii":         true,
	"iii":        true,
	"iv":         true,
	"subscriber": true,
	"member":     true,
	"patient":    true,
}

// extractNameDOB recovers a name+DOB identity from free text. The second
// return value reports whether the scheme's shape was recognized at all:
// when it is true, err carries the precise field-level failure instead of
// the generic unrecognized-input error.
func (v *Validator) extractNameDOB(s string) (models.Identity, bool, error) {
	if m := reStrictNameDOB.FindStringSubmatch(s); m != nil {
		first, last, err := cleanNameCandidate(m[1] + " " + m[2])
		if err != nil {
			return models.Identity{}, true, err
		}
		dob, err := v.normalizeDOB(m[3])
		if err != nil {
			return models.Identity{}, true, err
		}
		return newNameDOBIdentity(first, last, dob), true, nil
	}
	return v.extractNameDOBTolerant(s)
}

// extractNameDOBTolerant is the anchor-based fallback. It locates the
// date token, requires a comma directly before it (bare "First Last DATE"
// phrasing is not accepted), takes the trailing one or two comma segments
// of the name region, and cleans the result.
func (v *Validator) extractNameDOBTolerant(s string) (models.Identity, bool, error) {
	loc := reDateToken.FindStringIndex(s)
	if loc == nil {
		return models.Identity{}, false, nil
	}
	region := strings.TrimSpace(s[:loc[0]])
	if !strings.HasSuffix(region, ",") {
		return models.Identity{}, false, nil
	}
	region = strings.TrimSuffix(region, ",")

	segments := strings.Split(region, ",")
	var candidate string
	if len(segments) >= 2 {
		// "Last, First" or honorific-interrupted phrasing: the last two
		// segments together carry the name.
		candidate = strings.TrimSpace(segments[len(segments)-2]) + " " + strings.TrimSpace(segments[len(segments)-1])
	} else {
		candidate = strings.TrimSpace(segments[0])
	}

	first, last, err := cleanNameCandidate(candidate)
	if err != nil {
		return models.Identity{}, true, err
	}
	dob, err := v.normalizeDOB(s[loc[0]:loc[1]])
	if err != nil {
		return models.Identity{}, true, err
	}
	return newNameDOBIdentity(first, last, dob), true, nil
}

// cleanNameCandidate strips filler phrases and honorific tokens, removes
// stray punctuation while preserving apostrophes and hyphens (O'Neil,
// Ana-María), and requires at least two surviving words.
func cleanNameCandidate(candidate string) (first, last string, err error) {
	candidate = stripFiller(candidate)

	tokens := strings.FieldsFunc(candidate, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	var words []string
	for _, tok := range tokens {
		if honorifics[strings.ToLower(strings.TrimRight(tok, "."))] {
			continue
		}
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || r == '\'' || r == '-' {
				return r
			}
			return -1
		}, tok)
		if cleaned == "" {
			continue
		}
		words = append(words, cleaned)
	}

	if len(words) < 2 {
		return "", "", models.ErrNameTooShort
	}
	first = strings.ToLower(words[0])
	last = strings.ToLower(strings.Join(words[1:], " "))
	return first, last, nil
}

// stripFiller removes leading filler phrases repeatedly until none match.
// A phrase only matches at a word boundary so "get" never bites into a
// name starting with those letters.
func stripFiller(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		lower := strings.ToLower(trimmed)
		stripped := false
		for _, phrase := range fillerPhrases {
			if !strings.HasPrefix(lower, phrase) {
				continue
			}
			rest := trimmed[len(phrase):]
			if rest != "" && rest[0] != ' ' && rest[0] != ',' {
				continue
			}
			s = rest
			stripped = true
			break
		}
		if !stripped {
			return strings.TrimSpace(s)
		}
	}
}

// newNameDOBIdentity builds the canonical record. DisplayName is always
// reconstructed from the cleaned lowercased parts, never from raw input
// casing.
func newNameDOBIdentity(first, last, dob string) models.Identity {
	return models.Identity{
		Method:      models.MethodNameDOB,
		FirstName:   first,
		LastName:    last,
		DisplayName: titleCase(first) + " " + titleCase(last),
		DOB:         dob,
	}
}

// titleCase uppercases the first letter of every word, including letters
// following an apostrophe or hyphen, so "o'neil" renders as "O'Neil".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(r)
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

package identity

import (
	"regexp"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// ID-scheme patterns. The pair form matches anywhere in conversational
// text ("pull up 050028449/00 please"); the bare 11-digit form is split
// positionally into 9+2. There is no checksum or delimiter confirming the
// split point, so any 11 consecutive digits (a phone-number fragment
// included) will be read as an identifier. Known, accepted ambiguity.
var (
	reIDPair = regexp.MustCompile(`([0-9]{9})[/\\]([0-9]{2})`)
	reID11   = regexp.MustCompile(`[0-9]{11}`)

	reSubscriber = regexp.MustCompile(`^[0-9]{9}$`)
	reMember     = regexp.MustCompile(`^[0-9]{2}$`)
)

// extractID scans free text for either ID-scheme encoding. The separator
// form is tried first so "050028449/00" never falls into the 11-digit
// branch.
func extractID(s string) (models.Identity, bool) {
	if m := reIDPair.FindStringSubmatch(s); m != nil {
		return newIDIdentity(m[1], m[2]), true
	}
	if m := reID11.FindString(s); m != "" {
		return newIDIdentity(m[:9], m[9:]), true
	}
	return models.Identity{}, false
}

// idFromStructured validates explicitly supplied subscriber and
// member/suffix fields. Widths are enforced exactly; values are never
// truncated or padded.
func idFromStructured(subscriber, member string) (models.Identity, error) {
	if !reSubscriber.MatchString(subscriber) {
		return models.Identity{}, models.ErrSubscriberIDWidth
	}
	if !reMember.MatchString(member) {
		return models.Identity{}, models.ErrMemberIDWidth
	}
	return newIDIdentity(subscriber, member), nil
}

// newIDIdentity builds the canonical ID record. FullID is always
// reconstructed as subscriber/member regardless of the input separator.
func newIDIdentity(subscriber, member string) models.Identity {
	return models.Identity{
		Method:       models.MethodID,
		SubscriberID: subscriber,
		MemberID:     member,
		FullID:       subscriber + "/" + member,
	}
}

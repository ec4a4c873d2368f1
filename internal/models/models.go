// Package models defines the core data structures for CallPrep.
//
// It includes the raw-input union, the normalized identity record, the
// validation error taxonomy, and the shared API response envelope.
package models

import (
	"errors"
)

// RawInputKind discriminates the two accepted input shapes.
type RawInputKind string

const (
	// RawInputText is free conversational text.
	RawInputText RawInputKind = "text"
	// RawInputStructured is a key-value structure with identity fields
	// and/or an embedded free-text field.
	RawInputStructured RawInputKind = "structured"
)

// RawInput is the tagged union handed to the identity validator. It is
// constructed at the boundary so each branch's contract stays explicit;
// exactly one of Text or Fields is meaningful depending on Kind.
type RawInput struct {
	Kind   RawInputKind
	Text   string
	Fields map[string]interface{}
}

// TextInput wraps free text as a RawInput.
func TextInput(s string) RawInput {
	return RawInput{Kind: RawInputText, Text: s}
}

// StructuredInput wraps a key-value structure as a RawInput.
func StructuredInput(fields map[string]interface{}) RawInput {
	return RawInput{Kind: RawInputStructured, Fields: fields}
}

// IdentityMethod names which identity scheme produced a record.
type IdentityMethod string

const (
	// MethodID is the subscriber/member identifier scheme.
	MethodID IdentityMethod = "id"
	// MethodNameDOB is the name-plus-birthdate scheme.
	MethodNameDOB IdentityMethod = "name_dob"
)

// Identity is the canonical record produced by the validator. Exactly one
// scheme's fields are populated; the other scheme's fields stay empty and
// are omitted from JSON.
type Identity struct {
	Method IdentityMethod `json:"method"`

	// ID scheme fields.
	SubscriberID string `json:"subscriber_id,omitempty"` // exactly 9 ASCII digits
	MemberID     string `json:"member_id,omitempty"`     // exactly 2 ASCII digits
	FullID       string `json:"full_id,omitempty"`       // always "subscriber/member"

	// Name+DOB scheme fields.
	FirstName   string `json:"first_name,omitempty"`   // lowercased
	LastName    string `json:"last_name,omitempty"`    // lowercased, may be multi-word
	DisplayName string `json:"display_name,omitempty"` // title-cased "First Last"
	DOB         string `json:"dob,omitempty"`          // canonical MM-DD-YYYY
}

// Validation error taxonomy. Messages are user-facing and enumerate the
// accepted input shapes, so handlers return them verbatim.
var (
	ErrUnrecognizedInput = errors.New("input not recognized. Expected ID like '#########/##' or '###########', or Name+DOB like 'First Last, MM-DD-YYYY'")
	ErrMissingFields     = errors.New("structured input missing required fields. Provide subscriber_id and member_id, or first_name, last_name, and dob")
	ErrSubscriberIDWidth = errors.New("subscriber_id must be exactly 9 digits")
	ErrMemberIDWidth     = errors.New("suffix/member_id must be exactly 2 digits")
	ErrNameTooShort      = errors.New("name must include first and last name, e.g. 'Raja Panda, 04-22-1980'")
	ErrDOBUnparseable    = errors.New("DOB unparseable. Expected MM-DD-YYYY (or MM/DD/YYYY / YYYY-MM-DD)")
	ErrDOBInvalidDate    = errors.New("DOB is not a real calendar date. Use MM-DD-YYYY or MM/DD/YYYY")
	ErrDOBInFuture       = errors.New("DOB cannot be in the future")
	ErrDOBBeforeMinimum  = errors.New("DOB is before the minimum supported birth year")
)

// CallPrepResult is the payload returned by the call-prep endpoint: the
// validated identity, the deterministic clinical snapshot, and the
// generated briefing. Summary is empty when no GenAI client is
// configured or generation failed; Snapshot is always present.
type CallPrepResult struct {
	Identity Identity `json:"identity"`
	Snapshot string   `json:"snapshot"`
	Summary  string   `json:"summary,omitempty"`
}

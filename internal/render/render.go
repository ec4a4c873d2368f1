// Package render produces the plain-text clinical snapshot consumed by
// care managers. Section headers, order, and fallback strings are a fixed
// contract with downstream tooling and must not change casually.
//
// Rendering is a pure function of the patient record: no inference, no
// fabrication. Missing data always surfaces as the documented fallback
// line.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// Fixed section headers and fallback strings.
const (
	HeaderContact     = "Contact Information:"
	HeaderSituation   = "Current Situation & Diagnosis:"
	HeaderMedications = "Current Medications (Last 120 Days):"
	HeaderEncounters  = "Most Recent ER Visit and Hospitalization Dates:"
	HeaderHospital    = "Hospitalizations:"
	HeaderERVisits    = "ER Visits:"

	FallbackName          = "Patient: Name not found."
	FallbackSubscriberID  = "Subscriber ID: Not found."
	FallbackDisposition   = "Disposition Upon Discharge: Not found."
	FallbackPharmacy      = "Pharmacy Status: Not found."
	FallbackContact       = "Contact information not found."
	FallbackPrimaryPhone  = "Primary phone number not found."
	FallbackAltPhones     = "Alternate phone numbers not found."
	FallbackSituation     = "Current Situation & Diagnosis: Not found."
	FallbackDiagnoses     = "No diagnoses on record."
	FallbackMedications   = "No recent medications on record."
	FallbackHospital      = "No recent hospitalizations on record."
	FallbackERVisits      = "No recent ER visits on record."
	FallbackFacility      = "Facility: Not found"
	FallbackAdmitted      = "Admitted: Not found"
	CurrentlyAdmitted     = "Currently Admitted"
	DoNotCallLine         = "Member on Do Not Call List."
	ClosingLine           = "Please verify this information before use."
)

// Snapshot renders the full clinical snapshot for one patient record.
// All sections appear in fixed order even when empty.
func Snapshot(record *models.PatientRecord) string {
	var b strings.Builder

	writeIdentification(&b, record)
	b.WriteString("\n")
	writeSnapshotStatus(&b, record)
	b.WriteString("\n")
	writeContact(&b, record)
	b.WriteString("\n")
	writeSituation(&b, record)
	b.WriteString("\n")
	writeMedications(&b, record)
	b.WriteString("\n")
	writeEncounters(&b, record)
	b.WriteString("\n")
	b.WriteString(ClosingLine)
	b.WriteString("\n")

	return b.String()
}

func writeIdentification(b *strings.Builder, record *models.PatientRecord) {
	d := record.Demographics
	name := strings.TrimSpace(displayName(d.FirstName) + " " + displayName(d.LastName))
	if name == "" {
		b.WriteString(FallbackName + "\n")
	} else {
		fmt.Fprintf(b, "Patient: %s\n", name)
	}
	if d.SubscriberID == "" {
		b.WriteString(FallbackSubscriberID + "\n")
	} else if d.MemberID == "" {
		fmt.Fprintf(b, "Subscriber ID: %s\n", d.SubscriberID)
	} else {
		fmt.Fprintf(b, "Subscriber ID: %s/%s\n", d.SubscriberID, d.MemberID)
	}
}

func writeSnapshotStatus(b *strings.Builder, record *models.PatientRecord) {
	d := record.Demographics
	if d.Disposition == "" {
		b.WriteString(FallbackDisposition + "\n")
	} else {
		fmt.Fprintf(b, "Disposition Upon Discharge: %s\n", d.Disposition)
	}
	if d.PharmacyStatus == "" {
		b.WriteString(FallbackPharmacy + "\n")
	} else {
		fmt.Fprintf(b, "Pharmacy Status: %s\n", d.PharmacyStatus)
	}
}

func writeContact(b *strings.Builder, record *models.PatientRecord) {
	b.WriteString(HeaderContact + "\n")
	phones := record.Demographics.PhoneNumbers
	if len(phones) == 0 {
		// No contact data at all: the single fallback replaces every
		// other contact line.
		b.WriteString(FallbackContact + "\n")
		return
	}

	var primary string
	var alternates []string
	for _, p := range phones {
		if p.Type == "Primary" && primary == "" {
			primary = p.Number
		} else {
			alternates = append(alternates, p.Number)
		}
	}

	if primary == "" {
		b.WriteString(FallbackPrimaryPhone + "\n")
	} else {
		fmt.Fprintf(b, "Primary Phone Number: %s\n", primary)
	}
	if len(alternates) == 0 {
		b.WriteString(FallbackAltPhones + "\n")
	} else {
		fmt.Fprintf(b, "Alternate Phone Numbers: %s\n", strings.Join(alternates, ", "))
	}
	if record.Demographics.DoNotCall {
		b.WriteString(DoNotCallLine + "\n")
	}
}

func writeSituation(b *strings.Builder, record *models.PatientRecord) {
	s := record.Status
	if s.CurrentSituation == "" {
		b.WriteString(FallbackSituation + "\n")
	} else {
		fmt.Fprintf(b, "%s %s\n", HeaderSituation, s.CurrentSituation)
	}
	if len(s.Diagnoses) == 0 {
		b.WriteString(FallbackDiagnoses + "\n")
		return
	}
	for _, dx := range s.Diagnoses {
		if dx.Code != "" {
			fmt.Fprintf(b, "• %s (%s)\n", dx.Description, dx.Code)
		} else {
			fmt.Fprintf(b, "• %s\n", dx.Description)
		}
	}
}

func writeMedications(b *strings.Builder, record *models.PatientRecord) {
	b.WriteString(HeaderMedications + "\n")
	meds := record.MedicalVisits.Pharmacy
	if len(meds) == 0 {
		b.WriteString(FallbackMedications + "\n")
		return
	}
	for _, m := range meds {
		// Missing subfields are omitted from the bullet, never padded.
		parts := make([]string, 0, 3)
		for _, p := range []string{m.DrugName, m.Dosage, m.Frequency} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 && m.Display != "" {
			parts = append(parts, m.Display)
		}
		if len(parts) == 0 {
			continue
		}
		fmt.Fprintf(b, "• %s\n", strings.Join(parts, " - "))
	}
}

func writeEncounters(b *strings.Builder, record *models.PatientRecord) {
	b.WriteString(HeaderEncounters + "\n")
	b.WriteString(HeaderHospital + "\n")
	if len(record.MedicalVisits.Hospitalization) == 0 {
		b.WriteString(FallbackHospital + "\n")
	} else {
		for _, e := range record.MedicalVisits.Hospitalization {
			b.WriteString(encounterLine(e) + "\n")
		}
	}
	b.WriteString(HeaderERVisits + "\n")
	if len(record.MedicalVisits.Emergency) == 0 {
		b.WriteString(FallbackERVisits + "\n")
	} else {
		for _, e := range record.MedicalVisits.Emergency {
			b.WriteString(encounterLine(e) + "\n")
		}
	}
}

// encounterLine formats one encounter as
// "<facility> | Admitted: <start> | Discharged: <end>". An empty end date
// reads as an active stay.
func encounterLine(e models.Encounter) string {
	facility := e.ProviderName
	if facility == "" {
		facility = FallbackFacility
	}
	admitted := "Admitted: " + e.StartDate
	if e.StartDate == "" {
		admitted = FallbackAdmitted
	}
	discharged := "Discharged: " + e.EndDate
	if e.EndDate == "" {
		discharged = "Discharged: " + CurrentlyAdmitted
	}
	return facility + " | " + admitted + " | " + discharged
}

// displayName title-cases an upstream name field, which typically arrives
// fully uppercased.
func displayName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
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

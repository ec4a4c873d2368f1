// Package models: aggregated patient record shapes returned by the
// healthcare data API. Field names follow the upstream aggregator JSON.
package models

// PhoneNumber is a single contact entry. Type is "Primary" or "Alternate".
type PhoneNumber struct {
	Type   string `json:"phone_type"`
	Number string `json:"phone_number"`
}

// Demographics holds patient identification and contact data.
type Demographics struct {
	SubscriberID   string        `json:"subscriberId"`
	MemberID       string        `json:"memberId"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	BirthDate      string        `json:"birthDate"`
	IsFEP          bool          `json:"isFep"`
	PhoneNumbers   []PhoneNumber `json:"phoneNumbers"`
	DoNotCall      bool          `json:"doNotCall"`
	Disposition    string        `json:"dischargeDisposition,omitempty"`
	PharmacyStatus string        `json:"pharmacyStatus,omitempty"`
}

// Medication is one pharmacy claim line. Display carries the raw claim
// text; the broken-out fields are present when the source provides them.
type Medication struct {
	ClaimSource string `json:"claimSource"`
	Display     string `json:"display"`
	DrugName    string `json:"drugName,omitempty"`
	Dosage      string `json:"dosage,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
}

// Encounter is an ER visit or hospitalization claim.
type Encounter struct {
	ClaimSource  string `json:"claimSource"`
	ProviderName string `json:"providerName,omitempty"`
	StartDate    string `json:"headerServicedStartDate"`
	EndDate      string `json:"headerServicedEndDate"`
}

// MedicalVisits groups claims by category.
type MedicalVisits struct {
	Pharmacy        []Medication `json:"pharmacy"`
	Emergency       []Encounter  `json:"emergency"`
	Hospitalization []Encounter  `json:"hospitalization"`
}

// Diagnosis is a coded diagnosis with its description.
type Diagnosis struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PatientStatus summarizes the current clinical situation.
type PatientStatus struct {
	CurrentStatus          string      `json:"current_status"`
	PrimaryDiagnosis       string      `json:"primary_diagnosis"`
	CurrentSituation       string      `json:"current_situation,omitempty"`
	Diagnoses              []Diagnosis `json:"diagnoses,omitempty"`
	NextReviewDate         string      `json:"next_review_date,omitempty"`
	EstimatedDischargeDate string      `json:"estimated_discharge_date,omitempty"`
}

// PatientRecord is the aggregated record fetched for one identity.
type PatientRecord struct {
	Demographics  Demographics  `json:"demographics"`
	MedicalVisits MedicalVisits `json:"medical_visits"`
	Status        PatientStatus `json:"status"`
}

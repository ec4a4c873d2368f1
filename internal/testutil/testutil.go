// Package testutil provides common test utilities and fixtures for
// CallPrep tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// FixedClock returns a deterministic "now" (2025-06-15) for validators
// under test.
func FixedClock() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

// SamplePatientRecord returns a representative aggregated record, shaped
// like real aggregator output, for renderer and handler tests.
func SamplePatientRecord() *models.PatientRecord {
	return &models.PatientRecord{
		Demographics: models.Demographics{
			SubscriberID: "967598209",
			MemberID:     "00",
			FirstName:    "KINGBIRD",
			LastName:     "PITWICZ",
			BirthDate:    "1980-04-17",
			PhoneNumbers: []models.PhoneNumber{
				{Type: "Primary", Number: "714-313-4556"},
				{Type: "Alternate", Number: "714-313-9000"},
			},
			DoNotCall:      true,
			Disposition:    "Home",
			PharmacyStatus: "Carved In",
		},
		MedicalVisits: models.MedicalVisits{
			Pharmacy: []models.Medication{
				{ClaimSource: "cvs", Display: "Metformin 100mg", DrugName: "Metformin", Dosage: "100mg", Frequency: "Once daily"},
				{ClaimSource: "cvs", DrugName: "Lisinopril", Dosage: "20mg"},
			},
			Emergency: []models.Encounter{
				{ClaimSource: "er", ProviderName: "Memorial Hospital", StartDate: "2024-09-11", EndDate: "2024-09-11"},
			},
			Hospitalization: []models.Encounter{
				{ClaimSource: "Hospital", ProviderName: "St. Elizabeth", StartDate: "2024-09-30", EndDate: ""},
			},
		},
		Status: models.PatientStatus{
			CurrentStatus:    "Post-Discharge",
			PrimaryDiagnosis: "Hypertension",
			CurrentSituation: "Patient presents with nausea and is advised to increase fluid intake.",
			Diagnoses: []models.Diagnosis{
				{Code: "D48", Description: "Neoplasm of unspecified behavior"},
			},
			NextReviewDate: "2025-11-20",
		},
	}
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

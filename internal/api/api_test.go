package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BTreeMap/CallPrep/internal/identity"
	"github.com/BTreeMap/CallPrep/internal/lookup"
	"github.com/BTreeMap/CallPrep/internal/models"
	"github.com/BTreeMap/CallPrep/internal/testutil"
)

// stubFetcher implements recordFetcher for testing.
type stubFetcher struct {
	record *models.PatientRecord
	err    error
	gotID  models.Identity
}

func (f *stubFetcher) Fetch(ctx context.Context, id models.Identity) (*models.PatientRecord, error) {
	f.gotID = id
	return f.record, f.err
}

// stubSummarizer implements summarizer for testing.
type stubSummarizer struct {
	summary string
	err     error
}

func (s *stubSummarizer) ClinicalSummary(ctx context.Context, record *models.PatientRecord) (string, error) {
	return s.summary, s.err
}

func newTestServer(t *testing.T, fetcher recordFetcher, sum summarizer) *Server {
	t.Helper()
	opts := []Option{
		WithValidator(identity.New(identity.WithClock(testutil.FixedClock))),
		WithLookupClient(fetcher),
	}
	if sum != nil {
		opts = append(opts, WithGenAIClient(sum))
	}
	srv, err := NewServer(opts...)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestNewServer_RequiresLookupClient(t *testing.T) {
	if _, err := NewServer(); err == nil {
		t.Error("expected error when lookup client not provided, got nil")
	}
}

func TestValidateHandler_TextID(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/validate", map[string]interface{}{"input": "050028449/00"})
	rr := httptest.NewRecorder()
	srv.validateHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "validate text ID")
	resp := testutil.AssertJSONResponse(t, rr, "ok")
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing result object in response %v", resp)
	}
	if result["method"] != "id" || result["full_id"] != "050028449/00" {
		t.Errorf("unexpected identity result %v", result)
	}
}

func TestValidateHandler_StructuredNameDOB(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/validate", map[string]interface{}{
		"input": map[string]interface{}{
			"first_name": "Raja",
			"last_name":  "Panda",
			"dob":        "1980-04-22",
		},
	})
	rr := httptest.NewRecorder()
	srv.validateHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "validate structured name+DOB")
	resp := testutil.AssertJSONResponse(t, rr, "ok")
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing result object in response %v", resp)
	}
	if result["method"] != "name_dob" || result["dob"] != "04-22-1980" {
		t.Errorf("unexpected identity result %v", result)
	}
}

func TestValidateHandler_Unrecognized(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/validate", map[string]interface{}{"input": "hello there"})
	rr := httptest.NewRecorder()
	srv.validateHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusUnprocessableEntity, rr.Code, "validate unrecognized input")
	resp := testutil.AssertJSONResponse(t, rr, "error")
	msg, _ := resp["message"].(string)
	if !strings.Contains(msg, "not recognized") {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestValidateHandler_BadJSON(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	srv.validateHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusBadRequest, rr.Code, "validate bad JSON")
	testutil.AssertJSONResponse(t, rr, "error")
}

func TestValidateHandler_MissingInput(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/validate", map[string]interface{}{})
	rr := httptest.NewRecorder()
	srv.validateHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusBadRequest, rr.Code, "validate missing input")
}

func TestValidateHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodGet, "/validate", nil)
	rr := httptest.NewRecorder()
	srv.validateHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, "validate wrong method")
}

func TestCallPrepHandler_FullFlow(t *testing.T) {
	fetcher := &stubFetcher{record: testutil.SamplePatientRecord()}
	srv := newTestServer(t, fetcher, &stubSummarizer{summary: "Patient briefing text"})
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/callprep", map[string]interface{}{"input": "967598209/00"})
	rr := httptest.NewRecorder()
	srv.callPrepHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "call prep full flow")
	resp := testutil.AssertJSONResponse(t, rr, "ok")
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing result object in response %v", resp)
	}
	if fetcher.gotID.SubscriberID != "967598209" {
		t.Errorf("fetcher received wrong identity %v", fetcher.gotID)
	}
	snapshot, _ := result["snapshot"].(string)
	if !strings.Contains(snapshot, "Kingbird Pitwicz") {
		t.Errorf("snapshot missing patient name:\n%s", snapshot)
	}
	if result["summary"] != "Patient briefing text" {
		t.Errorf("unexpected summary %v", result["summary"])
	}
}

func TestCallPrepHandler_SummaryFailureKeepsSnapshot(t *testing.T) {
	fetcher := &stubFetcher{record: testutil.SamplePatientRecord()}
	srv := newTestServer(t, fetcher, &stubSummarizer{err: errors.New("model unavailable")})
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/callprep", map[string]interface{}{"input": "967598209/00"})
	rr := httptest.NewRecorder()
	srv.callPrepHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "call prep summary failure")
	resp := testutil.AssertJSONResponse(t, rr, "ok")
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing result object in response %v", resp)
	}
	if _, present := result["summary"]; present {
		t.Errorf("summary should be omitted on generation failure, got %v", result["summary"])
	}
	if snapshot, _ := result["snapshot"].(string); snapshot == "" {
		t.Error("snapshot must still be returned when summary generation fails")
	}
}

func TestCallPrepHandler_NoSummarizer(t *testing.T) {
	fetcher := &stubFetcher{record: testutil.SamplePatientRecord()}
	srv := newTestServer(t, fetcher, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/callprep", map[string]interface{}{"input": "967598209/00"})
	rr := httptest.NewRecorder()
	srv.callPrepHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "call prep without genai")
	resp := testutil.AssertJSONResponse(t, rr, "ok")
	result, _ := resp["result"].(map[string]interface{})
	if snapshot, _ := result["snapshot"].(string); snapshot == "" {
		t.Error("snapshot must be returned when no summarizer is configured")
	}
}

func TestCallPrepHandler_RecordNotFound(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{err: lookup.ErrNotFound}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/callprep", map[string]interface{}{"input": "967598209/00"})
	rr := httptest.NewRecorder()
	srv.callPrepHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "call prep record not found")
	testutil.AssertJSONResponse(t, rr, "error")
}

func TestCallPrepHandler_UpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{err: errors.New("aggregator down")}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/callprep", map[string]interface{}{"input": "967598209/00"})
	rr := httptest.NewRecorder()
	srv.callPrepHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusBadGateway, rr.Code, "call prep upstream failure")
	testutil.AssertJSONResponse(t, rr, "error")
}

func TestCallPrepHandler_ValidationFailure(t *testing.T) {
	fetcher := &stubFetcher{record: testutil.SamplePatientRecord()}
	srv := newTestServer(t, fetcher, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/callprep", map[string]interface{}{"input": "who dis"})
	rr := httptest.NewRecorder()
	srv.callPrepHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusUnprocessableEntity, rr.Code, "call prep validation failure")
	if fetcher.gotID.Method != "" {
		t.Error("fetcher must not be called when validation fails")
	}
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	req := testutil.CreateHTTPRequest(t, http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.healthHandler(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "health check")
	testutil.AssertJSONResponse(t, rr, "ok")
}

func TestHandler_Routes(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{record: testutil.SamplePatientRecord()}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	testutil.AssertHTTPStatus(t, http.StatusOK, resp.StatusCode, "routed health check")
}

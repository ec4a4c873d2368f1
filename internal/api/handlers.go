// Package api provides HTTP handlers for CallPrep endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BTreeMap/CallPrep/internal/lookup"
	"github.com/BTreeMap/CallPrep/internal/models"
	"github.com/BTreeMap/CallPrep/internal/render"
	"github.com/BTreeMap/CallPrep/internal/util"
)

// requestBody is the shared request shape: "input" is either a free-text
// string or a key-value object with identity fields.
type requestBody struct {
	Input json.RawMessage `json:"input"`
}

// parseInput decodes the request body into a RawInput, distinguishing
// the string and object forms.
func parseInput(r *http.Request) (models.RawInput, error) {
	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return models.RawInput{}, errors.New("Invalid JSON format")
	}
	if len(body.Input) == 0 {
		return models.RawInput{}, errors.New("Missing required field: input")
	}

	var text string
	if err := json.Unmarshal(body.Input, &text); err == nil {
		return models.TextInput(text), nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(body.Input, &fields); err == nil {
		return models.StructuredInput(fields), nil
	}
	return models.RawInput{}, errors.New("Field 'input' must be a string or an object")
}

func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.validateHandler: processing validate request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.validateHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input, err := parseInput(r)
	if err != nil {
		slog.Warn("Server.validateHandler: failed to parse request", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	id, err := s.validator.Validate(input)
	if err != nil {
		slog.Info("Server.validateHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusUnprocessableEntity, models.Error(err.Error()))
		return
	}

	slog.Info("Server.validateHandler: identity validated", "method", id.Method)
	writeJSONResponse(w, http.StatusOK, models.Success(id))
}

func (s *Server) callPrepHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	reqID := util.GenerateRequestID()
	slog.Debug("Server.callPrepHandler: processing call-prep request", "request_id", reqID, "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.callPrepHandler: method not allowed", "request_id", reqID, "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input, err := parseInput(r)
	if err != nil {
		slog.Warn("Server.callPrepHandler: failed to parse request", "request_id", reqID, "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	id, err := s.validator.Validate(input)
	if err != nil {
		slog.Info("Server.callPrepHandler: validation failed", "request_id", reqID, "error", err)
		writeJSONResponse(w, http.StatusUnprocessableEntity, models.Error(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultRequestTimeout)
	defer cancel()

	record, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			slog.Info("Server.callPrepHandler: no record found", "request_id", reqID, "method", id.Method)
			writeJSONResponse(w, http.StatusNotFound, models.Error("No patient record found for the given identity"))
			return
		}
		slog.Error("Server.callPrepHandler: aggregator lookup failed", "request_id", reqID, "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Failed to fetch patient record"))
		return
	}

	result := models.CallPrepResult{
		Identity: id,
		Snapshot: render.Snapshot(record),
	}

	// Summary generation is best-effort: a GenAI failure never fails the
	// request, the snapshot still goes out.
	if s.summarize != nil {
		summary, genErr := s.summarize.ClinicalSummary(ctx, record)
		if genErr != nil {
			slog.Error("Server.callPrepHandler: summary generation failed", "request_id", reqID, "error", genErr)
		} else {
			result.Summary = summary
		}
	}

	slog.Info("Server.callPrepHandler: call prep generated", "request_id", reqID, "method", id.Method, "summary_set", result.Summary != "")
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Service is healthy", nil))
}

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/logger"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text" validate:"required"`
	Lang      string `json:"lang" validate:"omitempty,min=2,max=8"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

type summaryRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	PatientName string `json:"patient_name"`
}

type summaryResponse struct {
	Summary    string `json:"summary"`
	ReportFile string `json:"report_file"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type ingestResponse struct {
	Status    string `json:"status"`
	Files     int    `json:"files"`
	Passages  int    `json:"passages"`
	Dimension int    `json:"dimension"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Triage API is running",
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.ports.Dialogue.StartSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.validateRequest(&req); err != nil {
		writeError(w, err)
		return
	}

	if req.SessionID == "" {
		req.SessionID = domain.DefaultSessionID
	}
	if req.Lang == "" {
		req.Lang = domain.DefaultLanguage
	}

	reply, err := s.ports.Dialogue.Ask(r.Context(), req.SessionID, req.Text, req.Lang)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, SessionID: req.SessionID})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if isJSON(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		req.SessionID = r.FormValue("session_id")
		req.PatientName = r.FormValue("patient_name")
	}
	if err := s.validateRequest(&req); err != nil {
		writeError(w, err)
		return
	}

	name := strings.TrimSpace(req.PatientName)
	if name == "" {
		name = domain.DefaultDisplayName
	}

	report, err := s.ports.Summary.Report(r.Context(), req.SessionID, name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: report.Text, ReportFile: report.Location})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.ports.Ingest.Ingest(r.Context(), s.ports.CorpusDir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Status:    "ingested",
		Files:     result.Files,
		Passages:  result.Passages,
		Dimension: result.Dimension,
	})
}

// validateRequest checks struct tags and reports the first failing field.
func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %q", domain.ErrInvalidInput, jsonName(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
}

// jsonName maps a request struct field to its JSON key.
func jsonName(field string) string {
	switch field {
	case "SessionID":
		return "session_id"
	case "PatientName":
		return "patient_name"
	default:
		return strings.ToLower(field)
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTranslationUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGeneration),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("http: %v", err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encode response: %v", err)
	}
}

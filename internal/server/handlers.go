package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/minjae/interview-report/internal/augment"
	"github.com/minjae/interview-report/internal/config"
)

// ModelAnswerRequest represents the request body for /api/reports/model-answer
type ModelAnswerRequest struct {
	Question string `json:"question"`
	Type     string `json:"type,omitempty"`
}

// ModelAnswerResponse represents the response for /api/reports/model-answer
type ModelAnswerResponse struct {
	ModelAnswer string `json:"modelAnswer"`
}

// handleGetReport serves the report for a session, rebuilding it when the
// stored one is missing or degenerate.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	rpt, err := s.svc.GetReport(r.Context(), sessionID, flagsFromQuery(r))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, rpt)
}

// handleBuildReport forces a fresh build and upsert for a session.
func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	rpt, err := s.svc.BuildReport(r.Context(), sessionID, flagsFromQuery(r))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, rpt)
}

// handleDeleteReport drops a session's stored report so the next read
// rebuilds it from the transcript.
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteReport(r.Context(), sessionID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleModelAnswer produces a best-effort model answer for one question.
// The answer is "" when generation is disabled or unavailable.
func (s *Server) handleModelAnswer(w http.ResponseWriter, r *http.Request) {
	var req ModelAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		s.errorResponse(w, http.StatusBadRequest, "question is required")
		return
	}

	answer := s.svc.ModelAnswerForRound(r.Context(),
		augment.RoundLite{Question: req.Question, Type: req.Type},
		flagsFromQuery(r))
	s.jsonResponse(w, http.StatusOK, ModelAnswerResponse{ModelAnswer: answer})
}

// sessionID parses the path session identifier, writing the error response
// itself when the value is malformed.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("sessionId")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

// flagsFromQuery reads the per-request augmentation overrides. Absent
// parameters leave the environment defaults in force.
func flagsFromQuery(r *http.Request) config.Flags {
	var flags config.Flags
	if v, ok := config.ParseBool(r.URL.Query().Get("generator")); ok {
		flags.Generator = &v
	}
	if v, ok := config.ParseBool(r.URL.Query().Get("embeddings")); ok {
		flags.Embeddings = &v
	}
	return flags
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gradepilot/gradepilot/internal/core"
)

type generateKeyRequest struct {
	Questionnaire string `json:"questionnaire"`
}

type refineKeyRequest struct {
	AnswerKey    string `json:"answer_key"`
	Instructions string `json:"instructions"`
}

type answerKeyResponse struct {
	AnswerKey string `json:"answer_key"`
}

// handleGenerateAnswerKey produces an initial answer key from a questionnaire.
func (s *Server) handleGenerateAnswerKey(w http.ResponseWriter, r *http.Request) {
	var req generateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "invalid request body: "+err.Error()))
		return
	}

	key, err := s.svc.GenerateAnswerKey(r.Context(), req.Questionnaire)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, answerKeyResponse{AnswerKey: key})
}

// handleRefineAnswerKey rewrites an answer key following teacher instructions.
func (s *Server) handleRefineAnswerKey(w http.ResponseWriter, r *http.Request) {
	var req refineKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "invalid request body: "+err.Error()))
		return
	}

	key, err := s.svc.RefineAnswerKey(r.Context(), req.AnswerKey, req.Instructions)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, answerKeyResponse{AnswerKey: key})
}

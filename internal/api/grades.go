package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/service"
)

// handleGradeSubmission grades one submission.
func (s *Server) handleGradeSubmission(w http.ResponseWriter, r *http.Request) {
	var req service.GradeSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "invalid request body: "+err.Error()))
		return
	}

	result, err := s.svc.GradeSubmission(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

// handleGradeBatch grades every submission of one assignment.
func (s *Server) handleGradeBatch(w http.ResponseWriter, r *http.Request) {
	var req service.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "invalid request body: "+err.Error()))
		return
	}

	result, err := s.svc.GradeBatch(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleListGrades returns stored grade records, newest first.
func (s *Server) handleListGrades(w http.ResponseWriter, r *http.Request) {
	filter, err := gradeFilterFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	records, err := s.svc.ListGrades(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"grades": records,
		"total":  len(records),
	})
}

// gradeFilterFromQuery builds a record filter from query parameters.
func gradeFilterFromQuery(r *http.Request) (core.GradeFilter, error) {
	q := r.URL.Query()
	filter := core.GradeFilter{
		CourseID:     q.Get("course_id"),
		AssignmentID: q.Get("assignment_id"),
		StudentName:  q.Get("student_name"),
	}

	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return core.GradeFilter{}, core.ErrValidation(core.CodeMissingField, "since must be an RFC 3339 timestamp")
		}
		filter.Since = since
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return core.GradeFilter{}, core.ErrValidation(core.CodeMissingField, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gradepilot/gradepilot/internal/core"
)

// handleDistribution returns the grade histogram for the matching records.
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	filter, err := gradeFilterFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	dist, err := s.svc.Distribution(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, dist)
}

// handleStudentSummaries returns per-student aggregates, best average first.
func (s *Server) handleStudentSummaries(w http.ResponseWriter, r *http.Request) {
	filter, err := gradeFilterFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	summaries, err := s.svc.StudentSummaries(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"students": summaries,
		"total":    len(summaries),
	})
}

// handleSearchStudents fuzzy-matches student names.
func (s *Server) handleSearchStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "query parameter q is required"))
		return
	}

	matches, err := s.svc.SearchStudents(r.Context(), query)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// handleStudentHistory returns one student's full grading history.
func (s *Server) handleStudentHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "studentName")

	hist, err := s.svc.StudentHistory(r.Context(), name)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, hist)
}

// handleCourseStats returns one course's per-assignment aggregates.
func (s *Server) handleCourseStats(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	stats, err := s.svc.CourseStats(r.Context(), courseID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// handleTrends returns the chronological grade series and its direction.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	filter, err := gradeFilterFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	report, err := s.svc.Trends(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// handleCompare compares courses or assignments side by side. Exactly one of
// the courses and assignments parameters must be given, as a comma-separated
// id list.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	courses := splitIDs(r.URL.Query().Get("courses"))
	assignments := splitIDs(r.URL.Query().Get("assignments"))

	switch {
	case len(courses) > 0 && len(assignments) > 0:
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "compare either courses or assignments, not both"))
	case len(courses) > 0:
		entries, err := s.svc.CompareCourses(r.Context(), courses)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{"comparison": entries})
	case len(assignments) > 0:
		entries, err := s.svc.CompareAssignments(r.Context(), assignments)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]any{"comparison": entries})
	default:
		s.respondError(w, core.ErrValidation(core.CodeMissingField, "courses or assignments parameter is required"))
	}
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

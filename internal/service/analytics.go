package service

import (
	"context"
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/gradepilot/gradepilot/internal/core"
)

// Distribution buckets the matching records into the grade histogram.
func (s *Service) Distribution(ctx context.Context, filter core.GradeFilter) (core.Distribution, error) {
	records, err := s.store.ListGrades(ctx, filter)
	if err != nil {
		return core.Distribution{}, err
	}
	return core.ComputeDistribution(records), nil
}

// StudentHistory returns one student's full grading history. An unknown exact
// name falls back to a fuzzy match, so "jon smith" still finds "John Smith".
func (s *Service) StudentHistory(ctx context.Context, studentName string) (core.StudentHistory, error) {
	if studentName == "" {
		return core.StudentHistory{}, core.ErrValidation(core.CodeMissingField, "student name is required")
	}

	records, err := s.store.ListGrades(ctx, core.GradeFilter{StudentName: studentName})
	if err != nil {
		return core.StudentHistory{}, err
	}
	if len(records) == 0 {
		matches, err := s.SearchStudents(ctx, studentName)
		if err != nil {
			return core.StudentHistory{}, err
		}
		if len(matches) == 0 {
			return core.StudentHistory{}, core.ErrNotFound("student", studentName)
		}
		studentName = matches[0]
		records, err = s.store.ListGrades(ctx, core.GradeFilter{StudentName: studentName})
		if err != nil {
			return core.StudentHistory{}, err
		}
	}
	return core.ComputeStudentHistory(studentName, records), nil
}

// SearchStudents fuzzy-matches the query against every known student name and
// returns matches best first.
func (s *Service) SearchStudents(ctx context.Context, query string) ([]string, error) {
	records, err := s.store.ListGrades(ctx, core.GradeFilter{})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	names := []string{}
	for _, rec := range records {
		if !seen[rec.StudentName] {
			seen[rec.StudentName] = true
			names = append(names, rec.StudentName)
		}
	}
	sort.Strings(names)

	matched := []string{}
	for _, m := range fuzzy.Find(query, names) {
		matched = append(matched, m.Str)
	}
	return matched, nil
}

// CourseStats aggregates one course's grades per assignment.
func (s *Service) CourseStats(ctx context.Context, courseID string) (core.CourseStats, error) {
	if courseID == "" {
		return core.CourseStats{}, core.ErrValidation(core.CodeMissingField, "course id is required")
	}
	records, err := s.store.ListGrades(ctx, core.GradeFilter{CourseID: courseID})
	if err != nil {
		return core.CourseStats{}, err
	}
	return core.ComputeCourseStats(courseID, records), nil
}

// StudentSummaries aggregates per-student performance across the matching
// records, best average first.
func (s *Service) StudentSummaries(ctx context.Context, filter core.GradeFilter) ([]core.StudentSummary, error) {
	records, err := s.store.ListGrades(ctx, filter)
	if err != nil {
		return nil, err
	}
	return core.ComputeStudentSummaries(records), nil
}

// Trends reports the chronological grade series for the matching records and
// its overall direction.
func (s *Service) Trends(ctx context.Context, filter core.GradeFilter) (core.TrendReport, error) {
	records, err := s.store.ListGrades(ctx, filter)
	if err != nil {
		return core.TrendReport{}, err
	}
	return core.ComputeTrendReport(records), nil
}

// CompareCourses builds a side-by-side average comparison of the requested
// courses. Courses without records are left out.
func (s *Service) CompareCourses(ctx context.Context, courseIDs []string) ([]core.ComparisonEntry, error) {
	if len(courseIDs) == 0 {
		return nil, core.ErrValidation(core.CodeMissingField, "course ids are required")
	}
	records, err := s.store.ListGrades(ctx, core.GradeFilter{})
	if err != nil {
		return nil, err
	}
	return core.CompareCourses(courseIDs, records), nil
}

// CompareAssignments builds a side-by-side average comparison of the requested
// assignments. Assignments without records are left out.
func (s *Service) CompareAssignments(ctx context.Context, assignmentIDs []string) ([]core.ComparisonEntry, error) {
	if len(assignmentIDs) == 0 {
		return nil, core.ErrValidation(core.CodeMissingField, "assignment ids are required")
	}
	records, err := s.store.ListGrades(ctx, core.GradeFilter{})
	if err != nil {
		return nil, err
	}
	return core.CompareAssignments(assignmentIDs, records), nil
}

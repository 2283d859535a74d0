package core

import (
	"context"
	"time"
)

// SimilarityScorer produces a semantic similarity score between an answer key
// and a student answer. Implementations may be temporarily unavailable, in
// which case Score returns a model-category error and the caller degrades to
// Gemini-only grading.
type SimilarityScorer interface {
	// Score returns a raw cosine similarity in [-1, 1].
	Score(ctx context.Context, answerKey, studentAnswer string) (float64, error)
	// Available reports whether the underlying model is loaded.
	Available() bool
}

// AnswerGradingRequest carries everything the generative grader needs to
// evaluate one submission.
type AnswerGradingRequest struct {
	AssignmentTitle string
	Questionnaire   string
	AnswerKey       string
	StudentAnswer   string
	StudentName     string
}

// AnswerGrader grades submissions and manages answer keys through a
// generative model.
type AnswerGrader interface {
	GradeAnswer(ctx context.Context, req AnswerGradingRequest) (*GeminiGradeResult, error)
	GenerateAnswerKey(ctx context.Context, questionnaire string) (string, error)
	RefineAnswerKey(ctx context.Context, currentKey, instructions string) (string, error)
}

// GradeFilter selects a subset of stored grade records. Zero-value fields
// match everything.
type GradeFilter struct {
	CourseID     string
	AssignmentID string
	StudentName  string
	Since        time.Time
	Limit        int
}

// Matches reports whether rec satisfies the filter. Limit is ignored here;
// stores apply it after filtering.
func (f GradeFilter) Matches(rec *GradeRecord) bool {
	if f.CourseID != "" && rec.CourseID != f.CourseID {
		return false
	}
	if f.AssignmentID != "" && rec.AssignmentID != f.AssignmentID {
		return false
	}
	if f.StudentName != "" && rec.StudentName != f.StudentName {
		return false
	}
	if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// GradeStore persists grade records.
type GradeStore interface {
	// SaveGrade stores one record. Records are append-only.
	SaveGrade(ctx context.Context, rec *GradeRecord) error
	// ListGrades returns records matching the filter, newest first.
	ListGrades(ctx context.Context, filter GradeFilter) ([]GradeRecord, error)
	// CountGrades returns the total number of stored records.
	CountGrades(ctx context.Context) (int, error)
	// Backend names the storage backend for status reporting.
	Backend() string
	Close() error
}

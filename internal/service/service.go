// Package service orchestrates grading: it combines the similarity scorer and
// the generative grader, reconciles their signals and persists the outcome.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gradepilot/gradepilot/internal/adapters/embed"
	"github.com/gradepilot/gradepilot/internal/config"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/logging"
)

// Service is the grading engine facade used by the HTTP API and the CLI.
type Service struct {
	cfg    config.GradingConfig
	scorer core.SimilarityScorer
	grader core.AnswerGrader
	store  core.GradeStore
	log    *logging.Logger

	now func() time.Time
}

// New creates a grading service. scorer may be nil when no similarity model is
// configured; grading then runs Gemini-only.
func New(cfg config.GradingConfig, scorer core.SimilarityScorer, grader core.AnswerGrader, store core.GradeStore, log *logging.Logger) *Service {
	return &Service{
		cfg:    cfg,
		scorer: scorer,
		grader: grader,
		store:  store,
		log:    log.WithComponent("service"),
		now:    time.Now,
	}
}

// GradeSubmissionRequest describes one submission to grade.
type GradeSubmissionRequest struct {
	CourseID        string `json:"course_id"`
	CourseName      string `json:"course_name"`
	AssignmentID    string `json:"assignment_id"`
	AssignmentTitle string `json:"assignment_title"`
	SubmissionID    string `json:"submission_id"`
	StudentName     string `json:"student_name"`
	Questionnaire   string `json:"questionnaire"`
	AnswerKey       string `json:"answer_key"`
	StudentAnswer   string `json:"student_answer"`
	// GeminiOnly disables the similarity signal for this submission.
	GeminiOnly bool `json:"gemini_only"`
	// Threshold overrides the configured agreement threshold when positive.
	Threshold int `json:"threshold,omitempty"`
}

// GradeResult is the full outcome of grading one submission. Stored is false
// when persisting the record failed; the grade itself is still valid.
type GradeResult struct {
	Record         core.GradeRecord    `json:"record"`
	Reconciliation core.Reconciliation `json:"reconciliation"`
	Stored         bool                `json:"stored"`
}

// GradeSubmission grades one submission. The similarity signal degrades
// gracefully: if the scorer is unavailable or fails, grading continues with
// Gemini alone. A Gemini failure is fatal because there is no grade without it.
func (s *Service) GradeSubmission(ctx context.Context, req GradeSubmissionRequest) (*GradeResult, error) {
	if req.StudentName == "" {
		return nil, core.ErrValidation(core.CodeMissingField, "student_name is required")
	}
	if req.AnswerKey == "" {
		return nil, core.ErrValidation(core.CodeMissingField, "answer_key is required")
	}
	if req.StudentAnswer == "" {
		return nil, core.ErrValidation(core.CodeMissingField, "student_answer is required")
	}

	log := s.log.WithStudent(req.StudentName).WithAssignment(req.AssignmentID)

	hybrid := s.cfg.HybridEnabled && !req.GeminiOnly && s.scorer != nil
	var minilmGrade *int
	if hybrid {
		sim, err := s.scorer.Score(ctx, req.AnswerKey, req.StudentAnswer)
		if err != nil {
			log.Warn("similarity scoring failed, degrading to Gemini only", "error", err)
		} else {
			minilmGrade = core.NormalizeOptionalSimilarity(&sim)
			log.Debug("similarity grade computed", "similarity", sim, "grade", *minilmGrade)
		}
	}

	gemini, err := s.grader.GradeAnswer(ctx, core.AnswerGradingRequest{
		AssignmentTitle: req.AssignmentTitle,
		Questionnaire:   req.Questionnaire,
		AnswerKey:       req.AnswerKey,
		StudentAnswer:   req.StudentAnswer,
		StudentName:     req.StudentName,
	})
	if err != nil {
		return nil, err
	}

	threshold := s.cfg.AgreementThreshold
	if req.Threshold > 0 {
		threshold = req.Threshold
	}

	var recon core.Reconciliation
	if s.cfg.HybridEnabled && !req.GeminiOnly {
		recon = core.Reconcile(minilmGrade, gemini.Grade, threshold)
	} else {
		recon = core.GeminiOnly(gemini.Grade)
	}

	record := core.GradeRecord{
		ID:              uuid.NewString(),
		CourseID:        req.CourseID,
		CourseName:      req.CourseName,
		AssignmentID:    req.AssignmentID,
		AssignmentTitle: req.AssignmentTitle,
		SubmissionID:    req.SubmissionID,
		StudentName:     req.StudentName,
		AssignedGrade:   recon.FinalGrade,
		Confidence:      recon.Confidence,
		Method:          recon.Method,
		Feedback:        gemini.Feedback,
		Justification:   gemini.Justification,
		Remarks:         recon.Recommendation,
		Timestamp:       s.now().UTC(),
	}

	result := &GradeResult{Record: record, Reconciliation: recon, Stored: true}
	if err := s.store.SaveGrade(ctx, &record); err != nil {
		// The grade is already computed, losing persistence should not
		// lose the grading work.
		log.Warn("storing grade record failed", "error", err)
		result.Stored = false
	}

	log.Info("submission graded",
		"grade", recon.FinalGrade,
		"method", string(recon.Method),
		"confidence", string(recon.Confidence),
		"needs_review", recon.NeedsReview,
	)
	return result, nil
}

// GenerateAnswerKey produces an initial answer key from a questionnaire.
func (s *Service) GenerateAnswerKey(ctx context.Context, questionnaire string) (string, error) {
	if questionnaire == "" {
		return "", core.ErrValidation(core.CodeMissingField, "questionnaire is required")
	}
	return s.grader.GenerateAnswerKey(ctx, questionnaire)
}

// RefineAnswerKey rewrites an answer key following teacher instructions.
func (s *Service) RefineAnswerKey(ctx context.Context, currentKey, instructions string) (string, error) {
	if currentKey == "" {
		return "", core.ErrValidation(core.CodeMissingField, "current answer key is required")
	}
	if instructions == "" {
		return "", core.ErrValidation(core.CodeMissingField, "instructions are required")
	}
	return s.grader.RefineAnswerKey(ctx, currentKey, instructions)
}

// ListGrades returns stored grade records matching the filter, newest first.
func (s *Service) ListGrades(ctx context.Context, filter core.GradeFilter) ([]core.GradeRecord, error) {
	return s.store.ListGrades(ctx, filter)
}

// Status reports the health of the engine's moving parts.
type Status struct {
	StoreBackend        string              `json:"store_backend"`
	TotalGrades         int                 `json:"total_grades"`
	HybridEnabled       bool                `json:"hybrid_enabled"`
	SimilarityAvailable bool                `json:"similarity_available"`
	Similarity          *embed.ScorerStatus `json:"similarity,omitempty"`
}

type scorerStatusReporter interface {
	Status() embed.ScorerStatus
}

// Status implements the status endpoint's view of the engine.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	count, err := s.store.CountGrades(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		StoreBackend:  s.store.Backend(),
		TotalGrades:   count,
		HybridEnabled: s.cfg.HybridEnabled,
	}
	if s.scorer != nil {
		st.SimilarityAvailable = s.scorer.Available()
		if reporter, ok := s.scorer.(scorerStatusReporter); ok {
			status := reporter.Status()
			st.Similarity = &status
		}
	}
	return st, nil
}

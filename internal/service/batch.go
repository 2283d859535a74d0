package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gradepilot/gradepilot/internal/core"
)

// Batch item statuses.
const (
	BatchStatusSuccess = "success"
	BatchStatusError   = "error"
	BatchStatusSkipped = "skipped"
)

// BatchRequest grades many submissions of one assignment in one call.
type BatchRequest struct {
	CourseID        string            `json:"course_id"`
	CourseName      string            `json:"course_name"`
	AssignmentID    string            `json:"assignment_id"`
	AssignmentTitle string            `json:"assignment_title"`
	Questionnaire   string            `json:"questionnaire"`
	AnswerKey       string            `json:"answer_key"`
	Submissions     []BatchSubmission `json:"submissions"`
}

// BatchSubmission is one student's answer inside a batch.
type BatchSubmission struct {
	SubmissionID  string `json:"submission_id"`
	StudentName   string `json:"student_name"`
	StudentAnswer string `json:"student_answer"`
}

// BatchItemResult is the per-submission outcome of a batch run.
type BatchItemResult struct {
	SubmissionID string       `json:"submission_id"`
	StudentName  string       `json:"student_name"`
	Status       string       `json:"status"`
	Result       *GradeResult `json:"result,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Items   []BatchItemResult `json:"items"`
}

// GradeBatch grades every submission in the request concurrently, bounded by
// the configured batch concurrency. Batch runs are Gemini-only: one slow model
// load must not serialize a whole classroom. A failed submission is recorded
// in its item and does not abort the rest, but a cancelled context does.
func (s *Service) GradeBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if req.AnswerKey == "" {
		return nil, core.ErrValidation(core.CodeMissingField, "answer_key is required")
	}
	if len(req.Submissions) == 0 {
		return nil, core.ErrValidation(core.CodeMissingField, "submissions are required")
	}

	concurrency := s.cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	items := make([]BatchItemResult, len(req.Submissions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, sub := range req.Submissions {
		g.Go(func() error {
			items[i] = BatchItemResult{
				SubmissionID: sub.SubmissionID,
				StudentName:  sub.StudentName,
			}
			if sub.StudentAnswer == "" {
				items[i].Status = BatchStatusSkipped
				items[i].Error = "empty submission"
				return nil
			}

			result, err := s.GradeSubmission(gctx, GradeSubmissionRequest{
				CourseID:        req.CourseID,
				CourseName:      req.CourseName,
				AssignmentID:    req.AssignmentID,
				AssignmentTitle: req.AssignmentTitle,
				SubmissionID:    sub.SubmissionID,
				StudentName:     sub.StudentName,
				Questionnaire:   req.Questionnaire,
				AnswerKey:       req.AnswerKey,
				StudentAnswer:   sub.StudentAnswer,
				GeminiOnly:      true,
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				items[i].Status = BatchStatusError
				items[i].Error = err.Error()
				return nil
			}
			items[i].Status = BatchStatusSuccess
			items[i].Result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &BatchResult{Total: len(items), Items: items}
	for _, item := range items {
		switch item.Status {
		case BatchStatusSuccess:
			batch.Success++
		case BatchStatusError:
			batch.Failed++
		case BatchStatusSkipped:
			batch.Skipped++
		}
	}
	s.log.Info("batch graded",
		"assignment_id", req.AssignmentID,
		"total", batch.Total,
		"success", batch.Success,
		"failed", batch.Failed,
		"skipped", batch.Skipped,
	)
	return batch, nil
}

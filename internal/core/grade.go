package core

import (
	"time"
)

// Confidence labels how much the two grading signals agreed.
type Confidence string

const (
	// ConfidenceHigh means both signals were available and agreed within threshold.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium means only one signal was available or the signals disagreed.
	ConfidenceMedium Confidence = "medium"
)

// Method identifies which reconciliation branch produced the final grade.
type Method string

const (
	// MethodHybridAverage averages both grades when they agree within threshold.
	MethodHybridAverage Method = "hybrid_average"
	// MethodGeminiPreferred uses the Gemini grade when the signals disagree.
	MethodGeminiPreferred Method = "gemini_preferred"
	// MethodGeminiOnly is used when the similarity signal was unavailable or
	// hybrid grading was disabled by the caller.
	MethodGeminiOnly Method = "gemini_only"
)

// DefaultAgreementThreshold is the default tolerance, in grade points, within
// which the similarity grade and the Gemini grade are considered to agree.
const DefaultAgreementThreshold = 15

// GeminiGradeResult is the parsed output of the generative grader. All three
// fields are mandatory; a response missing any of them is a parse failure and
// never yields a partial result.
type GeminiGradeResult struct {
	Grade         int    `json:"grade"`
	Justification string `json:"justification"`
	Feedback      string `json:"feedback"`
}

// Reconciliation is the outcome of combining the two grade signals. It is
// built once per submission and never mutated afterwards.
type Reconciliation struct {
	FinalGrade     int        `json:"final_grade"`
	Confidence     Confidence `json:"confidence"`
	Method         Method     `json:"method"`
	Difference     *int       `json:"difference,omitempty"`
	MiniLMGrade    *int       `json:"minilm_grade,omitempty"`
	GeminiGrade    int        `json:"gemini_grade"`
	Recommendation string     `json:"recommendation"`
	NeedsReview    bool       `json:"needs_review"`
}

// GradeRecord is the persisted result of grading one submission.
type GradeRecord struct {
	ID              string     `json:"id"`
	CourseID        string     `json:"course_id"`
	CourseName      string     `json:"course_name"`
	AssignmentID    string     `json:"assignment_id"`
	AssignmentTitle string     `json:"assignment_title"`
	SubmissionID    string     `json:"submission_id"`
	StudentName     string     `json:"student_name"`
	AssignedGrade   int        `json:"assigned_grade"`
	Confidence      Confidence `json:"confidence"`
	Method          Method     `json:"grading_method"`
	Feedback        string     `json:"feedback"`
	Justification   string     `json:"grade_justification"`
	Remarks         string     `json:"remarks"`
	Timestamp       time.Time  `json:"timestamp"`
}

// ValidGrade reports whether n is on the 0-100 grading scale.
func ValidGrade(n int) bool {
	return n >= 0 && n <= 100
}

// IntPtr returns a pointer to n. Convenience for optional grades.
func IntPtr(n int) *int {
	return &n
}

package llm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gradepilot/gradepilot/internal/core"
)

// The grader's output template. All three fields are mandatory; a response
// missing any of them fails parsing as a whole. No partial results.
var (
	gradeRe         = regexp.MustCompile(`(?i)GRADE:\s*(\d+)/100`)
	justificationRe = regexp.MustCompile(`(?i)GRADE_JUSTIFICATION:\s*(.*)`)
	feedbackRe      = regexp.MustCompile(`(?is)FEEDBACK:\s*(.*)`)
)

// parseGradeResponse extracts the structured grade from the model's raw text.
func parseGradeResponse(raw string) (*core.GeminiGradeResult, error) {
	gradeMatch := gradeRe.FindStringSubmatch(raw)
	if gradeMatch == nil {
		return nil, core.ErrParse(core.CodeMalformedOutput, "missing GRADE line in model response")
	}
	justificationMatch := justificationRe.FindStringSubmatch(raw)
	if justificationMatch == nil {
		return nil, core.ErrParse(core.CodeMalformedOutput, "missing GRADE_JUSTIFICATION line in model response")
	}
	feedbackMatch := feedbackRe.FindStringSubmatch(raw)
	if feedbackMatch == nil {
		return nil, core.ErrParse(core.CodeMalformedOutput, "missing FEEDBACK section in model response")
	}

	grade, err := strconv.Atoi(gradeMatch[1])
	if err != nil {
		return nil, core.ErrParse(core.CodeInvalidGrade, "grade is not a number").WithCause(err)
	}
	if !core.ValidGrade(grade) {
		return nil, core.ErrParse(core.CodeInvalidGrade, "grade outside 0-100 scale")
	}

	return &core.GeminiGradeResult{
		Grade:         grade,
		Justification: strings.TrimSpace(justificationMatch[1]),
		Feedback:      strings.TrimSpace(feedbackMatch[1]),
	}, nil
}

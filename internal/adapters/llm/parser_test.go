package llm

import (
	"strings"
	"testing"

	"github.com/gradepilot/gradepilot/internal/core"
)

func TestParseGradeResponse(t *testing.T) {
	raw := `GRADE: 85/100
GRADE_JUSTIFICATION: Conceptually solid but lacked some precision.
FEEDBACK: Good understanding of the material overall.

You covered the main concepts well but missed the key terminology
in question 3. Review the definitions and try to be more specific.`

	result, err := parseGradeResponse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Grade != 85 {
		t.Errorf("expected grade 85, got %d", result.Grade)
	}
	if result.Justification != "Conceptually solid but lacked some precision." {
		t.Errorf("unexpected justification: %q", result.Justification)
	}
	// FEEDBACK spans multiple lines to the end of the response.
	if !containsAll(result.Feedback, "Good understanding", "key terminology", "more specific.") {
		t.Errorf("feedback lost content: %q", result.Feedback)
	}
}

func TestParseGradeResponseCaseInsensitive(t *testing.T) {
	raw := "grade: 70/100\ngrade_justification: Fair effort.\nfeedback: Needs work."

	result, err := parseGradeResponse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Grade != 70 || result.Feedback != "Needs work." {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseGradeResponseSurroundingNoise(t *testing.T) {
	// Models sometimes wrap the template in commentary despite instructions.
	raw := `Sure! Here is the evaluation:

GRADE: 92/100
GRADE_JUSTIFICATION: Excellent and precise.
FEEDBACK: Great work throughout.`

	result, err := parseGradeResponse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Grade != 92 {
		t.Errorf("expected grade 92, got %d", result.Grade)
	}
}

func TestParseGradeResponseMissingFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing grade", "GRADE_JUSTIFICATION: ok\nFEEDBACK: fine"},
		{"missing justification", "GRADE: 80/100\nFEEDBACK: fine"},
		{"missing feedback", "GRADE: 80/100\nGRADE_JUSTIFICATION: ok"},
		{"empty response", ""},
		{"grade without scale", "GRADE: 80\nGRADE_JUSTIFICATION: ok\nFEEDBACK: fine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseGradeResponse(tt.raw)
			if err == nil {
				t.Fatalf("expected parse error, got %+v", result)
			}
			if !core.IsCategory(err, core.ErrCatParse) {
				t.Errorf("expected parse category, got %v", err)
			}
			if result != nil {
				t.Error("parse failure must not yield a partial result")
			}
		})
	}
}

func TestParseGradeResponseOutOfScaleGrade(t *testing.T) {
	raw := "GRADE: 150/100\nGRADE_JUSTIFICATION: ok\nFEEDBACK: fine"

	_, err := parseGradeResponse(raw)
	if err == nil {
		t.Fatal("expected error for grade above 100")
	}
	if !core.IsCategory(err, core.ErrCatParse) {
		t.Errorf("expected parse category, got %v", err)
	}
}

func TestParseGradeResponseBoundaryGrades(t *testing.T) {
	for _, grade := range []string{"0", "100"} {
		raw := "GRADE: " + grade + "/100\nGRADE_JUSTIFICATION: ok\nFEEDBACK: fine"
		if _, err := parseGradeResponse(raw); err != nil {
			t.Errorf("grade %s should parse, got %v", grade, err)
		}
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

package core

import "fmt"

// Reconcile combines the normalized similarity grade and the Gemini grade into
// one final grade with a confidence label. It is a pure, total function: every
// input combination maps to exactly one of the three methods.
//
// A nil minilmGrade means the similarity model produced no signal; the Gemini
// grade is used alone. When both grades are present and differ by at most
// threshold points, the final grade is their mean rounded half up. When they
// disagree by more, the Gemini grade wins: it carries the reasoning needed to
// defend the score.
//
// A non-positive threshold selects DefaultAgreementThreshold.
func Reconcile(minilmGrade *int, geminiGrade int, threshold int) Reconciliation {
	if threshold <= 0 {
		threshold = DefaultAgreementThreshold
	}

	if minilmGrade == nil {
		return Reconciliation{
			FinalGrade:     geminiGrade,
			Confidence:     ConfidenceMedium,
			Method:         MethodGeminiOnly,
			GeminiGrade:    geminiGrade,
			Recommendation: "Similarity model unavailable, using Gemini only",
		}
	}

	difference := *minilmGrade - geminiGrade
	if difference < 0 {
		difference = -difference
	}

	if difference <= threshold {
		return Reconciliation{
			FinalGrade:     roundHalfUpMean(*minilmGrade, geminiGrade),
			Confidence:     ConfidenceHigh,
			Method:         MethodHybridAverage,
			Difference:     &difference,
			MiniLMGrade:    minilmGrade,
			GeminiGrade:    geminiGrade,
			Recommendation: fmt.Sprintf("Both models agree (diff: %dpts). Using average.", difference),
		}
	}

	return Reconciliation{
		FinalGrade:     geminiGrade,
		Confidence:     ConfidenceMedium,
		Method:         MethodGeminiPreferred,
		Difference:     &difference,
		MiniLMGrade:    minilmGrade,
		GeminiGrade:    geminiGrade,
		Recommendation: fmt.Sprintf("Models disagree by %dpts. Using Gemini (better reasoning).", difference),
		NeedsReview:    true,
	}
}

// GeminiOnly builds the reconciliation used when hybrid grading is disabled by
// the caller: the similarity scorer is never invoked and the Gemini grade is
// final. Unlike the unavailable-model branch of Reconcile, the caller chose
// this mode, so confidence stays high.
func GeminiOnly(geminiGrade int) Reconciliation {
	return Reconciliation{
		FinalGrade:     geminiGrade,
		Confidence:     ConfidenceHigh,
		Method:         MethodGeminiOnly,
		GeminiGrade:    geminiGrade,
		Recommendation: "Graded using Gemini AI only (hybrid grading disabled)",
	}
}

// roundHalfUpMean averages two grades rounding halves up, the rule pinned for
// hybrid averaging: mean(60, 75) = 67.5 -> 68.
func roundHalfUpMean(a, b int) int {
	return (a + b + 1) / 2
}

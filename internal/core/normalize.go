package core

import "math"

// Calibrated bounds for the embedding space: cosine similarity between a
// clearly wrong and a clearly correct answer pair spans roughly this band.
const (
	SimilarityFloor = 0.30
	SimilarityCeil  = 0.85
)

// NormalizeSimilarity maps a raw cosine similarity onto the 0-100 grade scale.
// Values outside [SimilarityFloor, SimilarityCeil] clamp to the bounds, then a
// linear min-max rescale applies:
//
//	grade = round(((clamped - 0.30) / (0.85 - 0.30)) * 100)
//
// so 0.30 -> 0, 0.575 -> 50 and 0.85 -> 100. Halves round up.
func NormalizeSimilarity(raw float64) int {
	clamped := math.Min(SimilarityCeil, math.Max(SimilarityFloor, raw))
	return int(math.Round(((clamped - SimilarityFloor) / (SimilarityCeil - SimilarityFloor)) * 100))
}

// NormalizeOptionalSimilarity propagates the no-signal case: a nil similarity
// (model unavailable) normalizes to a nil grade.
func NormalizeOptionalSimilarity(raw *float64) *int {
	if raw == nil {
		return nil
	}
	grade := NormalizeSimilarity(*raw)
	return &grade
}

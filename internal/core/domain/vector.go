package domain

import "math"

// SimilarityScore maps the cosine similarity of two vectors onto [0,1],
// where 1 means identical direction and 0.5 means orthogonal. Mismatched
// lengths and zero-magnitude vectors score 0, so they never outrank a
// genuine match.
//
// Retrieval thresholds (MinScore) are expressed on this scale.
func SimilarityScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp float drift before mapping.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return (1 + cos) / 2
}

package vectorstore

import (
	"math"
)

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Mismatched lengths and zero vectors score 0. Sums are accumulated
// in float64 so long embeddings keep their precision.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// DotProduct calculates the dot product of two vectors
func DotProduct(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var product float64
	for i := range a {
		product += float64(a[i]) * float64(b[i])
	}

	return float32(product)
}

// NormalizeVector returns a unit-length copy of v. Zero vectors are returned as is.
func NormalizeVector(v []float32) []float32 {
	norm := Magnitude(v)
	if norm == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = val / norm
	}

	return normalized
}

// MagnitudeSquared calculates the squared length of a vector
func MagnitudeSquared(v []float32) float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return float32(sum)
}

// Magnitude calculates the length of a vector
func Magnitude(v []float32) float32 {
	return float32(math.Sqrt(float64(MagnitudeSquared(v))))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores candidate documents against a query embedding and
// orders them by relatedness.
package rank

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different dimension
// are compared.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrZeroVector is returned when a vector has zero magnitude, for which
// cosine similarity is undefined.
var ErrZeroVector = errors.New("zero-magnitude embedding vector")

// Relatedness returns the cosine similarity between a and b, i.e.
// 1 − cosine_distance. Pure and deterministic; the result is in [-1, 1],
// and effectively [0, 1] for normalized embeddings.
func Relatedness(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, ErrZeroVector
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroVector
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

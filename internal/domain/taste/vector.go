// Package taste holds the taste feature vector and its similarity measure.
package taste

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// DefaultDimensions is the vector width used when none is configured.
const DefaultDimensions = 5

// Vector is a fixed-length taste feature vector. Components are nominally in [0,1].
type Vector []float64

// Dim returns the vector length.
func (v Vector) Dim() int { return len(v) }

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Dot returns the inner product of a and b.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrVectorDimMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|).
// A zero-norm operand yields 0 without error.
func CosineSimilarity(a, b Vector) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

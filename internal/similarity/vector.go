package similarity

import (
	"fmt"
	"math"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

// Cosine вычисляет dot(a,b) / (‖a‖·‖b‖).
// Векторы разной длины, пустые или нулевые считаются ошибкой.
func Cosine(a, b domain.FeatureVector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine %d vs %d: %w", len(a), len(b), e.ErrDimensionMismatch)
	}
	if len(a) == 0 {
		return 0, e.ErrEmptyVectors
	}

	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, e.ErrZeroVector
	}

	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}

// Dot возвращает скалярное произведение. Для нормированных векторов совпадает с Cosine.
func Dot(a, b domain.FeatureVector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dot %d vs %d: %w", len(a), len(b), e.ErrDimensionMismatch)
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Normalize возвращает копию вектора единичной L2-нормы.
func Normalize(v domain.FeatureVector) (domain.FeatureVector, error) {
	if len(v) == 0 {
		return nil, e.ErrEmptyVectors
	}

	var norm float64
	for _, val := range v {
		norm += float64(val) * float64(val)
	}
	if norm == 0 {
		return nil, e.ErrZeroVector
	}

	norm = math.Sqrt(norm)
	out := make(domain.FeatureVector, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / norm)
	}
	return out, nil
}

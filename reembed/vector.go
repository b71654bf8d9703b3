package reembed

import "math"

// NormalizeVector scales v to unit length so cosine similarity reduces to a
// dot product. Returns a new vector; a zero vector stays zero.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	result := make([]float32, len(v))
	if sum == 0 {
		return result
	}

	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		result[i] = float32(float64(x) * inv)
	}
	return result
}

// IsNormalized reports whether v has unit length within tolerance.
func IsNormalized(v []float32, tolerance float64) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Abs(math.Sqrt(sum)-1) <= tolerance
}

package ai

import (
	"fmt"
	"math"
)

// ValidateVector checks that vec has exactly dim finite components.
// A dim of 0 skips the length check.
func ValidateVector(vec []float32, dim int) error {
	if dim > 0 && len(vec) != dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, len(vec))
	}
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d is %v", ErrNonFiniteValue, i, v)
		}
	}
	return nil
}

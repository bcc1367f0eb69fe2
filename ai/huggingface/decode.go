package huggingface

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/larder/ai"
)

// decodeSingle accepts a flat vector or a one-element list wrapping it.
// Null components are reported as non-finite.
func decodeSingle(body []byte) ([]float32, error) {
	var flat []*float64
	if err := json.Unmarshal(body, &flat); err == nil {
		return toFloat32(flat)
	}

	var nested [][]*float64
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidResponse, err)
	}
	if len(nested) != 1 {
		return nil, fmt.Errorf("%w: expected one vector, got %d", ai.ErrInvalidResponse, len(nested))
	}
	return toFloat32(nested[0])
}

// decodeMany expects one vector per input.
func decodeMany(body []byte, n int) ([][]float32, error) {
	var nested [][]*float64
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidResponse, err)
	}
	if len(nested) != n {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ai.ErrInvalidResponse, n, len(nested))
	}
	out := make([][]float32, n)
	for i, raw := range nested {
		vec, err := toFloat32(raw)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func toFloat32(raw []*float64) ([]float32, error) {
	vec := make([]float32, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, fmt.Errorf("%w: component %d is null", ai.ErrNonFiniteValue, i)
		}
		vec[i] = float32(*v)
	}
	return vec, nil
}

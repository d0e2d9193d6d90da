// Package score normalizes raw vector distances into [0,1] relevance.
package score

import (
	"fmt"
	"math"

	"ai-notes-rag-be/pkg/rag"
)

// nearDuplicate is the distance below which a match is treated as a near
// duplicate and floored to 0.9 regardless of metric noise.
const nearDuplicate = 0.1

// Score converts a raw distance into a relevance score in [0,1].
// Distances <= 1 are treated as a bounded cosine-like metric (0 means
// identical); larger distances decay as 1/(1+d). Negative or non-finite
// distances violate the caller contract.
func Score(rawDistance float64) (float64, error) {
	if rawDistance < 0 || math.IsNaN(rawDistance) || math.IsInf(rawDistance, 0) {
		return 0, fmt.Errorf("%w: distance %v", rag.ErrInvalidInput, rawDistance)
	}

	var s float64
	if rawDistance <= 1.0 {
		s = 1 - rawDistance
		if s < 0 {
			s = 0
		}
	} else {
		s = 1 / (1 + rawDistance)
	}

	if rawDistance < nearDuplicate && s < 0.9 {
		s = 0.9
	}
	return s, nil
}

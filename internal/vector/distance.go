package vector

import (
	"fmt"

	"github.com/hyperjump/docintel/internal/apperr"
	"github.com/hyperjump/docintel/pkg/utils"
)

// SquaredL2 returns the squared Euclidean distance between a and b.
// Both vectors must have the same length.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func checkDims(got, want int) error {
	if got != want {
		return fmt.Errorf("%w: got %d, expected %d", apperr.ErrDimensionMismatch, got, want)
	}
	return nil
}

// checkVector rejects vectors of the wrong length or with NaN/Inf components, which would
// make distances unordered.
func checkVector(v []float32, dims int) error {
	if err := checkDims(len(v), dims); err != nil {
		return err
	}
	if !utils.AllFinite(v) {
		return fmt.Errorf("%w: vector has non-finite components", apperr.ErrInvalidArgument)
	}
	return nil
}

func checkTopK(topK int) error {
	if topK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", apperr.ErrInvalidArgument, topK)
	}
	return nil
}

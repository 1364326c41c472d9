package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid configuration", fmt.Errorf("chunk size 0: %w", ErrInvalidConfiguration), true},
		{"invalid argument", fmt.Errorf("top_k: %w", ErrInvalidArgument), true},
		{"dimension mismatch", fmt.Errorf("add: %w", ErrDimensionMismatch), true},
		{"extraction", fmt.Errorf("pdf: %w", ErrExtractionFailed), false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalid(tt.err); got != tt.want {
				t.Errorf("IsInvalid(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsExtractionFailedAndNotFound(t *testing.T) {
	if !IsExtractionFailed(fmt.Errorf("wrap: %w", ErrExtractionFailed)) {
		t.Error("wrapped ErrExtractionFailed should match")
	}
	if IsExtractionFailed(ErrNotFound) {
		t.Error("ErrNotFound is not an extraction failure")
	}
	if !IsNotFound(fmt.Errorf("document abc: %w", ErrNotFound)) {
		t.Error("wrapped ErrNotFound should match")
	}
}

package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("NormalizeL2 = %v, want [0.6 0.8]", v)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for _, x := range zero {
		if x != 0 {
			t.Fatalf("zero vector changed: %v", zero)
		}
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite([]float32{1, -2, 0}) {
		t.Error("finite vector reported non-finite")
	}
	if AllFinite([]float32{1, float32(math.NaN())}) {
		t.Error("NaN not detected")
	}
	if AllFinite([]float32{float32(math.Inf(1))}) {
		t.Error("Inf not detected")
	}
}

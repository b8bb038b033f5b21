package report

import (
	"math"
	"path/filepath"
	"testing"
)

// TestMovingMean checks the moving mean over a short series,
// including the prefix where fewer than window values exist.
func TestMovingMean(t *testing.T) {
	data := []float64{1.0, 2.0, 3.0, 4.0, 5.0}
	means := MovingMean(data, 3)

	expected := []float64{1.0, 1.5, 2.0, 3.0, 4.0}
	if len(means) != len(expected) {
		t.Fatalf("invalid length\n\twant(%v)\n\thave(%v)", len(expected),
			len(means))
	}
	for i := range expected {
		if math.Abs(means[i]-expected[i]) > 1e-12 {
			t.Errorf("invalid moving mean at index %v\n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], means[i])
		}
	}
}

// TestMovingMeanWindowOne checks that a window of one returns the
// data unchanged.
func TestMovingMeanWindowOne(t *testing.T) {
	data := []float64{3.0, -1.0, 7.0}
	means := MovingMean(data, 1)
	for i := range data {
		if means[i] != data[i] {
			t.Errorf("invalid moving mean at index %v\n\twant(%v)"+
				"\n\thave(%v)", i, data[i], means[i])
		}
	}
}

// TestRewardCurveWritesFile renders a small curve and checks no error
// is returned.
func TestRewardCurveWritesFile(t *testing.T) {
	returns := []float64{-200.0, -100.0, 0.0, 150.0, 250.0}
	filename := filepath.Join(t.TempDir(), "returns.png")

	if err := RewardCurve(returns, 3, filename); err != nil {
		t.Fatal(err)
	}

	if err := RewardCurve(nil, 3, filename); err == nil {
		t.Error("plotting no returns should fail")
	}
}

// TestEpsilonCurveWritesFile renders a small exploration history and
// checks no error is returned.
func TestEpsilonCurveWritesFile(t *testing.T) {
	history := []float64{1.0, 0.7, 0.4, 0.2, 0.1}
	filename := filepath.Join(t.TempDir(), "epsilon.png")

	if err := EpsilonCurve(history, filename); err != nil {
		t.Fatal(err)
	}

	if err := EpsilonCurve(nil, filename); err == nil {
		t.Error("plotting an empty history should fail")
	}
}

package experiment

import "testing"

// TestSolveCriterion checks the early stopping rule over recent
// episodic returns.
func TestSolveCriterion(t *testing.T) {
	criterion := SolveCriterion{
		Window:     3,
		MinReturn:  200.0,
		MeanReturn: 230.0,
	}

	tests := []struct {
		name    string
		returns []float64
		solved  bool
	}{
		{"too few episodes", []float64{300.0, 300.0}, false},
		{"all high", []float64{100.0, 250.0, 240.0, 260.0}, true},
		{"one low return in window", []float64{250.0, 199.0, 260.0}, false},
		{"min met but mean too low", []float64{201.0, 202.0, 203.0}, false},
		{"old bad episodes ignored", []float64{-500.0, 240.0, 250.0, 260.0},
			true},
		{"empty", nil, false},
	}

	for _, test := range tests {
		if solved := criterion.Solved(test.returns); solved != test.solved {
			t.Errorf("%v: \n\twant(%v)\n\thave(%v)", test.name, test.solved,
				solved)
		}
	}
}

// TestSolveCriterionZeroValue checks that the zero value never
// reports solved, so experiments without a criterion run to their
// step limit.
func TestSolveCriterionZeroValue(t *testing.T) {
	var criterion SolveCriterion
	if criterion.Solved([]float64{1000.0, 1000.0, 1000.0}) {
		t.Error("zero-value criterion should never report solved")
	}
}

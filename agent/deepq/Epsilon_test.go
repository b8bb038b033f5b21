package deepq

import "testing"

// TestLinearDecayNeverDropsBelowMin checks that repeatedly applying a
// linear decay schedule anneals epsilon monotonically down to its
// floor and no further.
func TestLinearDecayNeverDropsBelowMin(t *testing.T) {
	schedule := NewLinearDecay(1.0, 0.1, 0.05)
	if err := schedule.Validate(); err != nil {
		t.Fatal(err)
	}

	epsilon := schedule.Initial
	for i := 0; i < 100; i++ {
		next := schedule.Next(epsilon)
		if next > epsilon {
			t.Fatalf("epsilon increased from %v to %v", epsilon, next)
		}
		if next < schedule.Min {
			t.Fatalf("epsilon %v dropped below minimum %v", next,
				schedule.Min)
		}
		epsilon = next
	}

	if epsilon != schedule.Min {
		t.Errorf("epsilon should settle at the minimum\n\twant(%v)"+
			"\n\thave(%v)", schedule.Min, epsilon)
	}
}

// TestMultiplicativeDecay checks the multiplicative annealing rule
func TestMultiplicativeDecay(t *testing.T) {
	schedule := NewMultiplicativeDecay(1.0, 0.01, 0.5)
	if err := schedule.Validate(); err != nil {
		t.Fatal(err)
	}

	if next := schedule.Next(1.0); next != 0.5 {
		t.Errorf("invalid decayed epsilon\n\twant(%v)\n\thave(%v)", 0.5,
			next)
	}
	if next := schedule.Next(0.0125); next != 0.01 {
		t.Errorf("epsilon should clip at the minimum\n\twant(%v)"+
			"\n\thave(%v)", 0.01, next)
	}
}

// TestDecayScheduleValidate checks rejection of malformed schedules
func TestDecayScheduleValidate(t *testing.T) {
	invalid := []DecaySchedule{
		NewLinearDecay(1.5, 0.1, 0.1),
		NewLinearDecay(0.5, 0.6, 0.1),
		NewLinearDecay(1.0, 0.1, -0.1),
		NewMultiplicativeDecay(1.0, 0.1, 0.0),
		NewMultiplicativeDecay(1.0, 0.1, 1.5),
		{Type: "Exponential", Initial: 1.0, Min: 0.1, Rate: 0.1},
	}

	for _, schedule := range invalid {
		if err := schedule.Validate(); err == nil {
			t.Errorf("schedule %+v should be invalid", schedule)
		}
	}
}

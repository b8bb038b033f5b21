package deepq

import "fmt"

// DecayType describes how the behaviour policy's exploration rate is
// annealed as training progresses
type DecayType string

// Available decay types
const (
	// Linear subtracts a fixed amount from epsilon after each
	// optimization step
	Linear DecayType = "Linear"

	// Multiplicative multiplies epsilon by a fixed factor after each
	// optimization step
	Multiplicative DecayType = "Multiplicative"
)

// DecaySchedule describes an annealing schedule for the exploration
// rate of an epsilon greedy behaviour policy. Epsilon starts at
// Initial and is decayed once per optimization step, never dropping
// below Min.
type DecaySchedule struct {
	Type    DecayType
	Initial float64
	Min     float64
	Rate    float64
}

// NewLinearDecay returns a schedule that anneals epsilon from initial
// to min by subtracting rate after each optimization step
func NewLinearDecay(initial, min, rate float64) DecaySchedule {
	return DecaySchedule{
		Type:    Linear,
		Initial: initial,
		Min:     min,
		Rate:    rate,
	}
}

// NewMultiplicativeDecay returns a schedule that anneals epsilon from
// initial to min by multiplying it by rate after each optimization
// step
func NewMultiplicativeDecay(initial, min, rate float64) DecaySchedule {
	return DecaySchedule{
		Type:    Multiplicative,
		Initial: initial,
		Min:     min,
		Rate:    rate,
	}
}

// Validate returns an error describing why the schedule is invalid,
// or nil if it is valid
func (d DecaySchedule) Validate() error {
	if d.Initial < 0 || d.Initial > 1 {
		return fmt.Errorf("epsilon: initial value must be in [0, 1], "+
			"got %v", d.Initial)
	}
	if d.Min < 0 || d.Min > d.Initial {
		return fmt.Errorf("epsilon: minimum value must be in [0, %v], "+
			"got %v", d.Initial, d.Min)
	}

	switch d.Type {
	case Linear:
		if d.Rate < 0 {
			return fmt.Errorf("epsilon: linear decay rate must be >= 0, "+
				"got %v", d.Rate)
		}
	case Multiplicative:
		if d.Rate <= 0 || d.Rate > 1 {
			return fmt.Errorf("epsilon: multiplicative decay rate must be "+
				"in (0, 1], got %v", d.Rate)
		}
	default:
		return fmt.Errorf("epsilon: unknown decay type %q", d.Type)
	}

	return nil
}

// Next returns the exploration rate that follows epsilon in the
// schedule. The returned value is never larger than epsilon and never
// smaller than the schedule's minimum.
func (d DecaySchedule) Next(epsilon float64) float64 {
	var next float64
	switch d.Type {
	case Multiplicative:
		next = epsilon * d.Rate
	default:
		next = epsilon - d.Rate
	}

	if next < d.Min {
		next = d.Min
	}
	return next
}

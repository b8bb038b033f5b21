package deepq

import "testing"

// TestUpdateTargetsTerminalTransitions checks that terminal
// transitions do not bootstrap from the next state's action values.
func TestUpdateTargetsTerminalTransitions(t *testing.T) {
	rewards := []float64{1.0, -100.0, 2.0}
	dones := []float64{0.0, 1.0, 0.0}
	nextQ := []float64{10.0, 50.0, -4.0}
	gamma := 0.5

	targets := updateTargets(rewards, dones, nextQ, gamma)

	expected := []float64{1.0 + 0.5*10.0, -100.0, 2.0 + 0.5*(-4.0)}
	for i := range expected {
		if targets[i] != expected[i] {
			t.Errorf("invalid update target at index %v\n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], targets[i])
		}
	}
}

// TestMaxEach checks row maxima over a flat batch of action values
func TestMaxEach(t *testing.T) {
	values := []float64{
		1.0, 3.0, 2.0,
		-1.0, -5.0, -2.0,
		0.0, 0.0, 0.0,
	}

	maxima := maxEach(values, 3, 3)
	expected := []float64{3.0, -1.0, 0.0}
	for i := range expected {
		if maxima[i] != expected[i] {
			t.Errorf("invalid row maximum at index %v\n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], maxima[i])
		}
	}
}

// TestDoubleQSelection checks that the bootstrap value is the target
// network's value of the action chosen by the online network.
func TestDoubleQSelection(t *testing.T) {
	onlineValues := []float64{
		1.0, 3.0, 2.0, // argmax 1
		5.0, 0.0, 0.0, // argmax 0
		0.0, 0.0, 9.0, // argmax 2
	}
	targetValues := []float64{
		10.0, 20.0, 30.0,
		40.0, 50.0, 60.0,
		70.0, 80.0, 90.0,
	}

	selected := argmaxEach(onlineValues, 3, 3)
	bootstrap := valuesAt(targetValues, 3, selected)

	expected := []float64{20.0, 40.0, 90.0}
	for i := range expected {
		if bootstrap[i] != expected[i] {
			t.Errorf("invalid bootstrap value at index %v\n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], bootstrap[i])
		}
	}
}

// TestConfigValidate checks rejection of invalid configurations
func TestConfigValidate(t *testing.T) {
	base, err := NewDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}

	broken := []func(Config) Config{
		func(c Config) Config { c.Biases = []bool{true}; return c },
		func(c Config) Config { c.Solver = nil; return c },
		func(c Config) Config { c.InitWFn = nil; return c },
		func(c Config) Config { c.Gamma = 1.5; return c },
		func(c Config) Config { c.BatchSize = 0; return c },
		func(c Config) Config { c.MaximumCapacity = 1; return c },
		func(c Config) Config { c.TrainStride = 0; return c },
		func(c Config) Config { c.TargetUpdateInterval = 0; return c },
		func(c Config) Config { c.Tau = 0.0; return c },
		func(c Config) Config { c.Epsilon.Rate = -1.0; return c },
	}

	for i, mutate := range broken {
		if err := mutate(base).Validate(); err == nil {
			t.Errorf("mutation %v should produce an invalid configuration",
				i)
		}
	}
}

package tracker

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/gravitylab/lander/timestep"
)

// runEpisode tracks a synthetic episode with the argument per-step
// rewards on every registered tracker
func runEpisode(rewards []float64, trackers ...Tracker) {
	obs := mat.NewVecDense(1, nil)

	step := ts.New(ts.First, 0, 1, obs, 0)
	for _, t := range trackers {
		t.Track(step)
	}

	for i, reward := range rewards {
		step = ts.New(ts.Mid, reward, 1, obs, i+1)
		if i == len(rewards)-1 {
			step.SetEnd(ts.TerminalStateReached)
		}
		for _, t := range trackers {
			t.Track(step)
		}
	}
}

// TestReturnAccumulatesEpisodes checks episodic return accumulation
// across several episodes.
func TestReturnAccumulatesEpisodes(t *testing.T) {
	r := NewReturn("")

	runEpisode([]float64{1.0, 2.0, 3.0}, r)
	runEpisode([]float64{-5.0, 5.0}, r)
	runEpisode([]float64{100.0}, r)

	expected := []float64{6.0, 0.0, 100.0}
	returns := r.Returns()
	if len(returns) != len(expected) {
		t.Fatalf("invalid number of episodes\n\twant(%v)\n\thave(%v)",
			len(expected), len(returns))
	}
	for i := range expected {
		if returns[i] != expected[i] {
			t.Errorf("invalid return for episode %v\n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], returns[i])
		}
	}
}

// TestReturnSaveLoad checks that saved returns can be read back
func TestReturnSaveLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(filename)

	runEpisode([]float64{1.0, 1.0}, r)
	runEpisode([]float64{3.0}, r)

	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := LoadData(filename)
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{2.0, 3.0}
	if len(data) != len(expected) {
		t.Fatalf("invalid number of loaded returns\n\twant(%v)"+
			"\n\thave(%v)", len(expected), len(data))
	}
	for i := range expected {
		if data[i] != expected[i] {
			t.Errorf("invalid loaded return %v\n\twant(%v)\n\thave(%v)", i,
				expected[i], data[i])
		}
	}
}

// TestEpsilonRecordsAtEpisodeEnd checks that the exploration rate is
// recorded once per finished episode.
func TestEpsilonRecordsAtEpisodeEnd(t *testing.T) {
	epsilon := 1.0
	e := NewEpsilon("", func() float64 { return epsilon })

	runEpisode([]float64{0.0, 0.0}, e)
	epsilon = 0.5
	runEpisode([]float64{0.0}, e)

	history := e.History()
	expected := []float64{1.0, 0.5}
	if len(history) != len(expected) {
		t.Fatalf("invalid number of recordings\n\twant(%v)\n\thave(%v)",
			len(expected), len(history))
	}
	for i := range expected {
		if history[i] != expected[i] {
			t.Errorf("invalid recorded epsilon %v\n\twant(%v)\n\thave(%v)",
				i, expected[i], history[i])
		}
	}
}

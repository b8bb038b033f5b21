// Package experiment implements functionality for running an
// experiment
package experiment

import (
	"github.com/gravitylab/lander/experiment/tracker"
	ts "github.com/gravitylab/lander/timestep"
)

// Experiment outlines structs that can run experiments. Experiments
// track environment TimeSteps, caching each TimeStep in RAM to be
// later saved to disk. The Save() function takes all cached data and
// saves it to disk, usually after an experiment has been run. The
// Run() method runs episodes until the maximum timestep limit is
// reached or some other ending condition is met. The RunEpisode()
// method runs a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to Trackers using the Tracker's Track() method.
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register() method.
type Experiment interface {
	Run() error

	// RunEpisode runs a single episode, returning whether the
	// experiment has finished
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save() error

	// Register adds a tracker.Tracker to the (possibly already
	// running) experiment. Useful for tracking data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// track sends the current timestep to each tracker
func track(trackers []tracker.Tracker, step ts.TimeStep) {
	for _, t := range trackers {
		t.Track(step)
	}
}

// SolveCriterion decides whether an environment counts as solved from
// the returns of the most recent episodes. The environment is solved
// once at least Window episodes have finished and, over the last
// Window episodes, the minimum return exceeds MinReturn and the mean
// return exceeds MeanReturn.
type SolveCriterion struct {
	Window     int
	MinReturn  float64
	MeanReturn float64
}

// Solved returns whether the slice of episodic returns meets the
// criterion
func (s SolveCriterion) Solved(returns []float64) bool {
	if s.Window <= 0 || len(returns) < s.Window {
		return false
	}

	window := returns[len(returns)-s.Window:]
	min := window[0]
	sum := 0.0
	for _, r := range window {
		if r < min {
			min = r
		}
		sum += r
	}

	return min > s.MinReturn && sum/float64(len(window)) > s.MeanReturn
}

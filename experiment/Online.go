package experiment

import (
	"fmt"

	"github.com/gosuri/uilive"

	"github.com/gravitylab/lander/agent"
	env "github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/experiment/checkpointer"
	"github.com/gravitylab/lander/experiment/tracker"
	ts "github.com/gravitylab/lander/timestep"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	environment env.Environment
	agent       agent.Agent

	maxSteps     uint
	currentSteps uint

	episodes       int
	episodeReturns []float64

	// When set, the experiment stops early once the most recent
	// returns meet the criterion
	solve SolveCriterion

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	// Live single-line progress display, nil when disabled
	status *uilive.Writer
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many environment timesteps the experiment is run for at most. The t
// parameter is a slice of tracker.Tracker which determine what data
// is saved, and the c parameter a slice of
// checkpointer.Checkpointer which snapshot the agent as training
// progresses.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t []tracker.Tracker, c []checkpointer.Checkpointer) *Online {
	return &Online{
		environment:   e,
		agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
	}
}

// SetSolveCriterion makes the experiment stop early once the recent
// episodic returns meet the criterion
func (o *Online) SetSolveCriterion(s SolveCriterion) {
	o.solve = s
}

// ShowProgress makes the experiment render a live progress line to
// standard output while running
func (o *Online) ShowProgress() {
	o.status = uilive.New()
}

// Register registers a tracker.Tracker with the experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Solved returns whether the experiment's solve criterion has been
// met by the most recent episodic returns
func (o *Online) Solved() bool {
	return o.solve.Solved(o.episodeReturns)
}

// Returns returns the episodic returns seen so far
func (o *Online) Returns() []float64 {
	return o.episodeReturns
}

// RunEpisode runs a single episode of the experiment, returning
// whether the experiment has finished
func (o *Online) RunEpisode() (bool, error) {
	step := o.environment.Reset()
	if err := o.agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runepisode: %v", err)
	}
	track(o.trackers, step)

	episodeReturn := 0.0
	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		// Select action, step in environment
		action := o.agent.SelectAction(step)
		var err error
		step, _, err = o.environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runepisode: could not step "+
				"environment: %v", err)
		}
		episodeReturn += step.Reward

		track(o.trackers, step)
		if err := o.checkpoint(step); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}

		// Observe the timestep and step the agent
		if err := o.agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}
		if err := o.agent.Step(); err != nil {
			return false, fmt.Errorf("runepisode: %v", err)
		}
	}

	if step.Last() {
		o.agent.EndEpisode()
		o.episodes++
		o.episodeReturns = append(o.episodeReturns, episodeReturn)
	}
	o.updateStatus()

	return o.currentSteps >= o.maxSteps || o.Solved(), nil
}

// Run runs the entire experiment for all timesteps, or until the
// solve criterion is met
func (o *Online) Run() error {
	if o.status != nil {
		o.status.Start()
		defer o.status.Stop()
	}

	for {
		ended, err := o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
		if ended {
			return nil
		}
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// checkpoint saves the current state of the agent with each
// registered checkpointer
func (o *Online) checkpoint(step ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(step); err != nil {
			return fmt.Errorf("checkpoint: %v", err)
		}
	}
	return nil
}

// updateStatus redraws the live progress line
func (o *Online) updateStatus() {
	if o.status == nil || o.episodes == 0 {
		return
	}

	window := o.episodeReturns
	if len(window) > 20 {
		window = window[len(window)-20:]
	}
	mean := 0.0
	for _, r := range window {
		mean += r
	}
	mean /= float64(len(window))

	fmt.Fprintf(o.status, "episode %v | steps %v/%v | return %.1f | "+
		"mean(%v) %.1f\n", o.episodes, o.currentSteps, o.maxSteps,
		o.episodeReturns[len(o.episodeReturns)-1], len(window), mean)
}

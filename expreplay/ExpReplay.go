// Package expreplay implements experience replay buffers for online
// reinforcement learning.
//
// Transitions are stored in flat []float64 caches so that sampled
// batches can be fed directly into Gorgonia tensors without any
// further copying or reshaping. Actions are stored one-hot encoded so
// that the predicted action value of a stored transition can be
// selected with an elementwise product against the network output.
package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/gravitylab/lander/timestep"
)

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition) error

	// Sample samples a batch of experience uniformly at random and
	// without replacement from the buffer, returning the batch as
	// flat slices of states, one-hot actions, rewards, next states,
	// and termination flags (1.0 if the transition ended its episode,
	// otherwise 0.0).
	Sample() ([]float64, []float64, []float64, []float64, []float64, error)

	// Capacity returns the current number of transitions in the buffer
	Capacity() int

	// MaxCapacity returns the maximum allowable transitions in the
	// buffer
	MaxCapacity() int

	// MinCapacity returns the number of transitions required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of transitions returned by Sample()
	BatchSize() int
}

// fifoCache implements a concrete ExperienceReplayer as a circular
// buffer. Once maxCapacity transitions have been added, each new
// transition overwrites the oldest one, so insertion stays O(1) and
// the buffer never exceeds its maximum capacity.
type fifoCache struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	nextStateCache []float64
	doneCache      []float64

	// insertPos is the index at which the next transition is written
	insertPos int
	isFull    bool

	rng *rand.Rand

	batchSize   int
	minCapacity int
	maxCapacity int
	featureSize int
	actionSize  int
}

// New creates and returns a new ExperienceReplayer with FiFo removal
// and uniform sampling without replacement. The featureSize and
// actionSize parameters define the length of the observation vector
// and the number of discrete actions. The minCapacity parameter
// determines the number of transitions that must be in the buffer
// before sampling is allowed, and maxCapacity the maximum number of
// stored transitions.
//
// Pixel observations should be flattened before adding to the buffer.
func New(minCapacity, maxCapacity, featureSize, actionSize, batchSize int,
	seed uint64) (ExperienceReplayer, error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be >= 1")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("new: batchSize must be >= 1")
	}
	if maxCapacity < batchSize {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > max "+
			"buffer capacity (%v)", batchSize, maxCapacity)
	}
	if featureSize <= 0 || actionSize <= 0 {
		return nil, fmt.Errorf("new: featureSize and actionSize must be "+
			"> 0, got (%v, %v)", featureSize, actionSize)
	}

	return &fifoCache{
		stateCache:     make([]float64, maxCapacity*featureSize),
		actionCache:    make([]float64, maxCapacity*actionSize),
		rewardCache:    make([]float64, maxCapacity),
		nextStateCache: make([]float64, maxCapacity*featureSize),
		doneCache:      make([]float64, maxCapacity),

		rng: rand.New(rand.NewSource(seed)),

		batchSize:   batchSize,
		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		featureSize: featureSize,
		actionSize:  actionSize,
	}, nil
}

// Add adds a transition to the buffer, overwriting the oldest stored
// transition if the buffer is at maximum capacity
func (c *fifoCache) Add(t timestep.Transition) error {
	if t.State.Len() != c.featureSize || t.NextState.Len() != c.featureSize {
		return &ExpReplayError{
			Op: "add",
			Err: fmt.Errorf("invalid feature size \n\twant(%v)\n\thave(%v)",
				c.featureSize, t.State.Len()),
		}
	}
	if t.Action < 0 || t.Action >= c.actionSize {
		return &ExpReplayError{
			Op:  "add",
			Err: fmt.Errorf("action %v out of range [0, %v)", t.Action, c.actionSize),
		}
	}

	index := c.insertPos

	stateInd := index * c.featureSize
	for i := 0; i < c.featureSize; i++ {
		c.stateCache[stateInd+i] = t.State.AtVec(i)
		c.nextStateCache[stateInd+i] = t.NextState.AtVec(i)
	}

	actionInd := index * c.actionSize
	for i := 0; i < c.actionSize; i++ {
		c.actionCache[actionInd+i] = 0.0
	}
	c.actionCache[actionInd+t.Action] = 1.0

	c.rewardCache[index] = t.Reward
	if t.Done {
		c.doneCache[index] = 1.0
	} else {
		c.doneCache[index] = 0.0
	}

	c.insertPos++
	if c.insertPos >= c.maxCapacity {
		c.insertPos = 0
		c.isFull = true
	}

	return nil
}

// Sample samples and returns a batch of transitions from the buffer
func (c *fifoCache) Sample() ([]float64, []float64, []float64, []float64,
	[]float64, error) {
	if c.Capacity() == 0 {
		return nil, nil, nil, nil, nil, &ExpReplayError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
	}
	if c.Capacity() < c.minCapacity || c.Capacity() < c.batchSize {
		return nil, nil, nil, nil, nil, &ExpReplayError{
			Op:  "sample",
			Err: errInsufficientSamples,
		}
	}

	indices := c.rng.Perm(c.Capacity())[:c.batchSize]

	stateBatch := make([]float64, c.batchSize*c.featureSize)
	nextStateBatch := make([]float64, c.batchSize*c.featureSize)
	for i, index := range indices {
		batchStartInd := i * c.featureSize
		expStartInd := index * c.featureSize
		copy(stateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.stateCache[expStartInd:expStartInd+c.featureSize],
		)
		copy(nextStateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.nextStateCache[expStartInd:expStartInd+c.featureSize],
		)
	}

	actionBatch := make([]float64, c.batchSize*c.actionSize)
	for i, index := range indices {
		batchStartInd := i * c.actionSize
		expStartInd := index * c.actionSize
		copy(actionBatch[batchStartInd:batchStartInd+c.actionSize],
			c.actionCache[expStartInd:expStartInd+c.actionSize],
		)
	}

	rewardBatch := make([]float64, c.batchSize)
	doneBatch := make([]float64, c.batchSize)
	for i, index := range indices {
		rewardBatch[i] = c.rewardCache[index]
		doneBatch[i] = c.doneCache[index]
	}

	return stateBatch, actionBatch, rewardBatch, nextStateBatch, doneBatch,
		nil
}

// Capacity returns the current number of transitions in the buffer
func (c *fifoCache) Capacity() int {
	if c.isFull {
		return c.maxCapacity
	}
	return c.insertPos
}

// MaxCapacity returns the maximum number of transitions allowed in the
// buffer
func (c *fifoCache) MaxCapacity() int {
	return c.maxCapacity
}

// MinCapacity returns the minimum number of transitions required in
// the buffer before sampling is allowed
func (c *fifoCache) MinCapacity() int {
	return c.minCapacity
}

// BatchSize returns the number of transitions sampled using Sample()
func (c *fifoCache) BatchSize() int {
	return c.batchSize
}

// String returns the string representation of the buffer
func (c *fifoCache) String() string {
	return fmt.Sprintf("ExperienceReplay with %v/%v transitions "+
		"(batch size %v)", c.Capacity(), c.maxCapacity, c.batchSize)
}

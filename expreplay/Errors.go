package expreplay

import (
	"errors"
	"fmt"
)

var (
	errEmptyBuffer         error = errors.New("no transitions in buffer")
	errInsufficientSamples error = errors.New("fewer transitions in buffer " +
		"than required to sample a full batch")
)

// ExpReplayError describes an error that occurred during an operation
// on an ExperienceReplayer
type ExpReplayError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ExpReplayError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

// IsEmptyBuffer returns whether err indicates sampling from a buffer
// that holds no transitions
func IsEmptyBuffer(err error) bool {
	return errors.Is(err, errEmptyBuffer)
}

// IsUnderfull returns whether err indicates sampling from a buffer
// that holds fewer transitions than a full batch. Callers that learn
// online can skip the current update and retry once the buffer has
// accumulated more transitions.
func IsUnderfull(err error) bool {
	return errors.Is(err, errInsufficientSamples) ||
		errors.Is(err, errEmptyBuffer)
}

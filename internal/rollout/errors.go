// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	// DispatchExhausted is matched by the error returned when the command
	// could not be submitted within the attempt budget.
	DispatchExhausted = errors.ConstError("command dispatch attempts exhausted")

	// PollExhausted is matched by the error returned when the command was
	// not seen executed on every host within the attempt budget.
	PollExhausted = errors.ConstError("command completion attempts exhausted")
)

// Stage names a retried step of the rollout.
type Stage string

const (
	StageDispatch Stage = "dispatch"
	StagePoll     Stage = "poll"
)

// ExhaustedError is returned once a retried stage gives up. The lifecycle
// hold has already been released when it is returned.
type ExhaustedError struct {
	Stage    Stage
	Attempts int
	// Code is the service error code of the last failure, if it had one.
	Code string
	// Err is the last failure observed.
	Err error
}

func (e *ExhaustedError) sentinel() errors.ConstError {
	if e.Stage == StagePoll {
		return PollExhausted
	}
	return DispatchExhausted
}

// Error implements error.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempt(s), last error code %q: %v", e.sentinel(), e.Attempts, e.Code, e.Err)
}

// Is matches DispatchExhausted or PollExhausted depending on the stage.
func (e *ExhaustedError) Is(target error) bool {
	return target == e.sentinel()
}

// Unwrap returns the last failure.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when a trigger is configured without a job or interval
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned when Start is called on a running trigger
	ErrAlreadyRunning = errors.New("trigger is already running")
)

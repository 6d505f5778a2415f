package app

import "errors"

var (
	// ErrQueueFull is returned by Submit when the event queue has no room.
	ErrQueueFull = errors.New("event queue full")
	// ErrStopped is returned once the controller has shut down.
	ErrStopped = errors.New("controller stopped")
	// ErrUnknownTarget is reported for a fetch the controller cannot serve.
	ErrUnknownTarget = errors.New("unknown fetch target")
)

package telemetry

import "errors"

// Sentinel errors for series construction.
var (
	// ErrInvalidCapacity is returned when the capacity is not positive.
	ErrInvalidCapacity = errors.New("telemetry: capacity must be greater than zero")

	// ErrNoChannels is returned when a series is built without channels.
	ErrNoChannels = errors.New("telemetry: at least one channel is required")

	// ErrInvalidChannel is returned for empty or duplicate channel keys.
	ErrInvalidChannel = errors.New("telemetry: invalid channel")
)

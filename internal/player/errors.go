package player

import "errors"

// Domain errors for the player package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, player.ErrStopped) {
//	    // the frame loop has exited
//	}
var (
	// ErrNotBuilt is returned by New when the driver's layout is not finalized.
	ErrNotBuilt = errors.New("player: driver layout not finalized")

	// ErrInvalidInterval is returned by New for a non-positive frame interval.
	ErrInvalidInterval = errors.New("player: invalid frame interval")

	// ErrAlreadyRunning is returned when Run is called more than once.
	ErrAlreadyRunning = errors.New("player: already running")

	// ErrStopped is returned by Do once the frame loop has exited.
	ErrStopped = errors.New("player: stopped")

	// ErrRuntimeFault wraps a driver error that ended the frame loop.
	ErrRuntimeFault = errors.New("player: runtime fault")
)

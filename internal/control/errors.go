package control

import "errors"

var (
	// ErrInvalidCommand is returned for a parameter command that cannot be decoded.
	ErrInvalidCommand = errors.New("control: invalid command")
)

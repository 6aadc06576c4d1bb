package fadecandy

import "errors"

var (
	// ErrNotConnected is returned while waiting to redial the server.
	ErrNotConnected = errors.New("fadecandy: not connected")

	// ErrConnect is returned when the server cannot be dialled.
	ErrConnect = errors.New("fadecandy: connect failed")

	// ErrSend is returned when a message cannot be written.
	ErrSend = errors.New("fadecandy: send failed")

	// ErrFrameTooLarge is returned when a channel would exceed the OPC length field.
	ErrFrameTooLarge = errors.New("fadecandy: channel data too large")
)

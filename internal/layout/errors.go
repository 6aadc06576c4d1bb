package layout

import "errors"

var (
	// ErrInvalidLayout is returned for a layout that fails validation.
	ErrInvalidLayout = errors.New("layout: invalid layout")

	// ErrNotFound is returned when no stored layout has the requested name.
	ErrNotFound = errors.New("layout: not found")
)

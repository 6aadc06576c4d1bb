package animation

import "errors"

// Runtime errors.
//
// Check with errors.Is():
//
//	if errors.Is(err, animation.ErrProtocolViolation) {
//	    // host called an operation in the wrong phase
//	}
var (
	// ErrProtocolViolation is returned when an operation is invoked in a phase
	// that does not support it (tick before finalize, layout after finalize).
	ErrProtocolViolation = errors.New("animation: protocol violation")

	// ErrIndexOutOfRange is returned when a strip or pixel index is outside
	// the current shape.
	ErrIndexOutOfRange = errors.New("animation: index out of range")

	// ErrUnknownParam is returned when a parameter is addressed by a name the
	// record does not have.
	ErrUnknownParam = errors.New("animation: unknown parameter")

	// ErrParamKind is returned when a parameter value of the wrong kind is written.
	ErrParamKind = errors.New("animation: parameter kind mismatch")

	// ErrInvalidParams is returned when a parameter record type has a field
	// that is not one of the six supported numeric kinds.
	ErrInvalidParams = errors.New("animation: invalid parameter record")

	// ErrInvalidDefinition is returned when a Definition is missing its constructor.
	ErrInvalidDefinition = errors.New("animation: invalid definition")
)

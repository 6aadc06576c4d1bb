package hostabi

import (
	"fmt"

	"github.com/nerrad567/ledbetter/animation"
)

// Fault is the panic value raised when the host breaks the call protocol.
type Fault struct {
	Op  string
	Err error
}

// Error implements error.
func (f *Fault) Error() string {
	return fmt.Sprintf("hostabi: %s: %v", f.Op, f.Err)
}

// Unwrap exposes the runtime error for errors.Is.
func (f *Fault) Unwrap() error {
	return f.Err
}

// Exports exposes one runtime under the boundary call names.
type Exports[P any] struct {
	rt      *animation.Runtime[P]
	onFault func(*Fault)
}

// New wraps rt.
func New[P any](rt *animation.Runtime[P]) *Exports[P] {
	return &Exports[P]{rt: rt}
}

// OnFault registers a hook that runs before a fault panics, typically to log
// it through the host's logging import. The hook must not recover.
func (e *Exports[P]) OnFault(fn func(*Fault)) {
	e.onFault = fn
}

// Runtime returns the wrapped runtime.
func (e *Exports[P]) Runtime() *animation.Runtime[P] {
	return e.rt
}

func (e *Exports[P]) check(op string, err error) {
	if err == nil {
		return
	}
	f := &Fault{Op: op, Err: err}
	if e.onFault != nil {
		e.onFault(f)
	}
	panic(f)
}

// InitLayoutSetNumStrips sets the strip count.
func (e *Exports[P]) InitLayoutSetNumStrips(n uint32) {
	e.check("initLayoutSetNumStrips", e.rt.SetStripCount(int(n)))
}

// InitLayoutSetStripLen sets the length of one strip.
func (e *Exports[P]) InitLayoutSetStripLen(strip, length uint32) {
	e.check("initLayoutSetStripLen", e.rt.SetStripLength(int(strip), int(length)))
}

// InitLayoutSetPixelLoc sets the location of one pixel.
func (e *Exports[P]) InitLayoutSetPixelLoc(strip, pixel uint32, x, y float32) {
	e.check("initLayoutSetPixelLoc", e.rt.SetPixelLocation(int(strip), int(pixel), x, y))
}

// InitLayoutDone finalizes the layout.
func (e *Exports[P]) InitLayoutDone() {
	e.check("initLayoutDone", e.rt.FinalizeLayout())
}

// Tick advances and re-renders the animation.
func (e *Exports[P]) Tick() {
	e.check("tick", e.rt.Tick())
}

// GetPixelVal reads one packed colour from the current frame.
func (e *Exports[P]) GetPixelVal(strip, pixel uint32) uint32 {
	v, err := e.rt.Pixel(int(strip), int(pixel))
	e.check("getPixelVal", err)
	return v
}

// Params returns the live parameter record for per-field accessors.
// Always legal.
func (e *Exports[P]) Params() *P {
	return e.rt.Params()
}

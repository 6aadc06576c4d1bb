package animation

import "fmt"

// Animation is the capability every concrete animation implements.
//
// Tick advances internal state by one step and must depend only on that state
// and the parameters, so two runtimes fed the same call sequence stay in
// lockstep. Render writes every pixel of the buffer it is responsible for and
// must not reslice it. Neither call may keep a reference to params.
type Animation[P any] interface {
	Tick(params *P)
	Render(params *P, pixels Pixels)
}

// Definition binds a parameter record type P to exactly one Animation.
//
// New builds the animation from the finalized layout. The layout belongs to
// the animation from then on; it is never shared with the runtime.
type Definition[P any] struct {
	// Name identifies the animation in logs, catalogs and metrics.
	Name string

	// Defaults returns the documented default record. If nil, the zero P is used.
	Defaults func() P

	// New constructs the animation.
	New func(params *P, layout Layout) Animation[P]
}

func (d Definition[P]) validate() error {
	if d.New == nil {
		return fmt.Errorf("%w: %q has no constructor", ErrInvalidDefinition, d.Name)
	}
	return nil
}

func (d Definition[P]) defaults() P {
	if d.Defaults == nil {
		var zero P
		return zero
	}
	return d.Defaults()
}

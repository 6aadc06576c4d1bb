// Package catalog maps animation names to constructors so the host can pick
// the animation to run from configuration.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/animations/blue"
	"github.com/nerrad567/ledbetter/animations/onecolor"
	"github.com/nerrad567/ledbetter/animations/perlincycle"
	"github.com/nerrad567/ledbetter/animations/perlinpalette"
	"github.com/nerrad567/ledbetter/animations/stripindex"
)

// ErrUnknownAnimation is returned for a name with no registered factory.
var ErrUnknownAnimation = errors.New("unknown animation")

// Factory creates a fresh, Uninitialized runtime.
type Factory func() (animation.Driver, error)

var factories = map[string]Factory{
	blue.Definition.Name:          factory(blue.Definition),
	onecolor.Definition.Name:      factory(onecolor.Definition),
	perlincycle.Definition.Name:   factory(perlincycle.Definition),
	perlinpalette.Definition.Name: factory(perlinpalette.Definition),
	stripindex.Definition.Name:    factory(stripindex.Definition),
}

func factory[P any](def animation.Definition[P]) Factory {
	return func() (animation.Driver, error) {
		rt, err := animation.New(def)
		if err != nil {
			// Return a nil interface, not a typed nil *Runtime.
			return nil, err
		}
		return rt, nil
	}
}

// New creates a runtime for the named animation.
func New(name string) (animation.Driver, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownAnimation, name, Names())
	}
	return f()
}

// Names lists the registered animations in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetParams writes numeric overrides into d, converting each to the kind of
// the field it names. Every name and value is checked before the first
// write, so on error d is left as it was.
func SetParams(d animation.Driver, values map[string]float64) error {
	kinds := make(map[string]animation.Kind, len(values))
	for _, f := range d.ParamFields() {
		kinds[f.Name] = f.Kind
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	converted := make([]animation.Value, len(names))
	for i, name := range names {
		kind, ok := kinds[name]
		if !ok {
			return fmt.Errorf("%s: %w: %q", d.Name(), animation.ErrUnknownParam, name)
		}
		v, err := animation.ValueFromFloat(kind, values[name])
		if err != nil {
			return fmt.Errorf("%s: param %q: %w", d.Name(), name, err)
		}
		converted[i] = v
	}

	for i, name := range names {
		if err := d.SetParam(name, converted[i]); err != nil {
			return fmt.Errorf("%s: %w", d.Name(), err)
		}
	}
	return nil
}

package animation

import "fmt"

// stage is the tagged union over the two live phases. A nil stage is the
// Uninitialized phase. Only *building and *built[P] implement it.
type stage interface {
	phase() Phase
}

type building struct {
	builder *Builder
}

func (*building) phase() Phase { return PhaseBuilding }

type built[P any] struct {
	anim   Animation[P]
	pixels Pixels
}

func (*built[P]) phase() Phase { return PhaseBuilt }

// Runtime is the lifecycle state machine for one animation.
//
// The parameter record lives outside the phase union: the same storage is
// read and written while Building, passed to the constructor at finalize,
// and passed to every Tick and Render afterwards.
type Runtime[P any] struct {
	def    Definition[P]
	schema *Schema
	params P
	stage  stage
}

// New creates a runtime for the given definition. The runtime starts
// Uninitialized and enters Building on first use.
//
// Returns ErrInvalidDefinition if def has no constructor and ErrInvalidParams
// if P has a field of an unsupported kind.
func New[P any](def Definition[P]) (*Runtime[P], error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	schema, err := SchemaOf[P]()
	if err != nil {
		return nil, err
	}
	return &Runtime[P]{def: def, schema: schema}, nil
}

// MustNew is like New but panics on error. For package-level runtimes whose
// definition is fixed at compile time.
func MustNew[P any](def Definition[P]) *Runtime[P] {
	r, err := New(def)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the definition name.
func (r *Runtime[P]) Name() string {
	return r.def.Name
}

// Phase returns the current lifecycle phase.
func (r *Runtime[P]) Phase() Phase {
	if r.stage == nil {
		return PhaseUninitialized
	}
	return r.stage.phase()
}

// init collapses Uninitialized into Building, applying parameter defaults.
func (r *Runtime[P]) init() {
	if r.stage == nil {
		r.params = r.def.defaults()
		r.stage = &building{builder: NewBuilder()}
	}
}

// layoutBuilder returns the builder, or a protocol violation naming op if
// the layout has already been finalized.
func (r *Runtime[P]) layoutBuilder(op string) (*Builder, error) {
	r.init()
	switch s := r.stage.(type) {
	case *building:
		return s.builder, nil
	case *built[P]:
		return nil, fmt.Errorf("%w: %s called after layout was finalized", ErrProtocolViolation, op)
	default:
		panic(fmt.Sprintf("animation: unexpected stage %T", s))
	}
}

// SetStripCount resizes the strip list. Building only.
func (r *Runtime[P]) SetStripCount(n int) error {
	b, err := r.layoutBuilder("SetStripCount")
	if err != nil {
		return err
	}
	return b.SetStripCount(n)
}

// SetStripLength resizes one strip. Building only.
func (r *Runtime[P]) SetStripLength(strip, length int) error {
	b, err := r.layoutBuilder("SetStripLength")
	if err != nil {
		return err
	}
	return b.SetStripLength(strip, length)
}

// SetPixelLocation sets the location of one pixel. Building only.
func (r *Runtime[P]) SetPixelLocation(strip, pixel int, x, y float32) error {
	b, err := r.layoutBuilder("SetPixelLocation")
	if err != nil {
		return err
	}
	return b.SetPixelLocation(strip, pixel, x, y)
}

// FinalizeLayout freezes the layout, constructs the animation with the
// current parameters and allocates a zeroed pixel buffer. It succeeds once;
// every later call is a protocol violation.
func (r *Runtime[P]) FinalizeLayout() error {
	r.init()
	switch s := r.stage.(type) {
	case *building:
		anim, pixels := build(s.builder, r.def, &r.params)
		r.stage = &built[P]{anim: anim, pixels: pixels}
		return nil
	case *built[P]:
		return fmt.Errorf("%w: FinalizeLayout called twice", ErrProtocolViolation)
	default:
		panic(fmt.Sprintf("animation: unexpected stage %T", s))
	}
}

// running returns the built stage, or a protocol violation naming op.
// It does not initialize: Tick on a fresh runtime is a violation, not a
// transition into Building.
func (r *Runtime[P]) running(op string) (*built[P], error) {
	switch s := r.stage.(type) {
	case *built[P]:
		return s, nil
	case nil, *building:
		return nil, fmt.Errorf("%w: %s called before layout was finalized", ErrProtocolViolation, op)
	default:
		panic(fmt.Sprintf("animation: unexpected stage %T", s))
	}
}

// Tick advances the animation one step and re-renders the buffer.
// Both calls happen on every Tick, in that order.
func (r *Runtime[P]) Tick() error {
	b, err := r.running("Tick")
	if err != nil {
		return err
	}
	b.anim.Tick(&r.params)
	b.anim.Render(&r.params, b.pixels)
	return nil
}

// Pixel returns one value from the current buffer.
func (r *Runtime[P]) Pixel(strip, pixel int) (uint32, error) {
	b, err := r.running("Pixel")
	if err != nil {
		return 0, err
	}
	if strip < 0 || strip >= len(b.pixels) {
		return 0, fmt.Errorf("%w: strip %d (strip count %d)", ErrIndexOutOfRange, strip, len(b.pixels))
	}
	row := b.pixels[strip]
	if pixel < 0 || pixel >= len(row) {
		return 0, fmt.Errorf("%w: pixel %d on strip %d (length %d)", ErrIndexOutOfRange, pixel, strip, len(row))
	}
	return row[pixel], nil
}

// CopyFrame copies the whole buffer into dst and returns it. dst is reused
// when it already has the right shape, so a host reading every frame
// allocates only once.
func (r *Runtime[P]) CopyFrame(dst Pixels) (Pixels, error) {
	b, err := r.running("CopyFrame")
	if err != nil {
		return dst, err
	}
	return b.pixels.CopyInto(dst), nil
}

// Shape returns the strip lengths: the accumulated layout while Building,
// the buffer shape once Built, nil before first use.
func (r *Runtime[P]) Shape() []int {
	switch s := r.stage.(type) {
	case nil:
		return nil
	case *building:
		return s.builder.Shape()
	case *built[P]:
		return s.pixels.Shape()
	default:
		panic(fmt.Sprintf("animation: unexpected stage %T", s))
	}
}

// Params returns the live parameter record. Legal in every phase; writes
// through the pointer are seen by the next Tick.
func (r *Runtime[P]) Params() *P {
	r.init()
	return &r.params
}

// ParamFields lists the parameter fields of P.
func (r *Runtime[P]) ParamFields() []ParamField {
	return r.schema.Fields()
}

// Param reads one parameter by name.
func (r *Runtime[P]) Param(name string) (Value, error) {
	return r.schema.get(r.Params(), name)
}

// SetParam writes one parameter by name. The value's kind must match the field.
func (r *Runtime[P]) SetParam(name string, v Value) error {
	return r.schema.set(r.Params(), name, v)
}

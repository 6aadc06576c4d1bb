package animation

// Phase is the externally visible lifecycle state of a runtime.
type Phase uint8

const (
	// PhaseUninitialized means no call has touched the runtime yet.
	PhaseUninitialized Phase = iota
	// PhaseBuilding means the layout is still being accumulated.
	PhaseBuilding
	// PhaseBuilt means the layout is frozen and the animation is running.
	PhaseBuilt
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseBuilding:
		return "building"
	case PhaseBuilt:
		return "built"
	default:
		return "unknown"
	}
}

// Driver is the type-erased surface of a Runtime. Host-side code that picks
// an animation by name at run time works against this interface.
type Driver interface {
	Name() string
	Phase() Phase
	Shape() []int

	SetStripCount(n int) error
	SetStripLength(strip, length int) error
	SetPixelLocation(strip, pixel int, x, y float32) error
	FinalizeLayout() error

	Tick() error
	Pixel(strip, pixel int) (uint32, error)
	CopyFrame(dst Pixels) (Pixels, error)

	ParamFields() []ParamField
	Param(name string) (Value, error)
	SetParam(name string, v Value) error
}

var _ Driver = (*Runtime[struct{}])(nil)

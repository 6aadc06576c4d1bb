package animation

import "fmt"

// Builder accumulates a Layout before it is frozen.
//
// Calls may arrive in any order and may repeat; each index is checked
// against the shape at the time of the call.
type Builder struct {
	locs Layout
}

// NewBuilder returns an empty Builder (zero strips).
func NewBuilder() *Builder {
	return &Builder{}
}

// SetStripCount resizes the strip list to n. New strips are empty; removed
// strips are discarded with their locations.
func (b *Builder) SetStripCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: strip count %d is negative", ErrIndexOutOfRange, n)
	}
	if n <= len(b.locs) {
		clear(b.locs[n:])
		b.locs = b.locs[:n]
		return nil
	}
	b.locs = append(b.locs, make(Layout, n-len(b.locs))...)
	return nil
}

// SetStripLength resizes one strip. Locations below the new length are kept;
// new slots hold the default location (0, 0).
func (b *Builder) SetStripLength(strip, length int) error {
	if err := b.checkStrip(strip); err != nil {
		return err
	}
	if length < 0 {
		return fmt.Errorf("%w: strip %d length %d is negative", ErrIndexOutOfRange, strip, length)
	}
	cur := b.locs[strip]
	if length <= len(cur) {
		b.locs[strip] = cur[:length:length]
		return nil
	}
	b.locs[strip] = append(cur, make([]PixelLocation, length-len(cur))...)
	return nil
}

// SetPixelLocation overwrites the location of one pixel.
func (b *Builder) SetPixelLocation(strip, pixel int, x, y float32) error {
	if err := b.checkStrip(strip); err != nil {
		return err
	}
	if pixel < 0 || pixel >= len(b.locs[strip]) {
		return fmt.Errorf("%w: pixel %d on strip %d (length %d)",
			ErrIndexOutOfRange, pixel, strip, len(b.locs[strip]))
	}
	b.locs[strip][pixel] = PixelLocation{X: x, Y: y}
	return nil
}

// Shape returns the current strip lengths.
func (b *Builder) Shape() []int {
	return b.locs.Shape()
}

// Layout returns a copy of the layout accumulated so far.
func (b *Builder) Layout() Layout {
	return b.locs.clone()
}

func (b *Builder) checkStrip(strip int) error {
	if strip < 0 || strip >= len(b.locs) {
		return fmt.Errorf("%w: strip %d (strip count %d)", ErrIndexOutOfRange, strip, len(b.locs))
	}
	return nil
}

// build consumes the builder: it constructs the animation from the current
// layout and allocates a zeroed buffer of the same shape. The builder must
// not be used afterwards.
func build[P any](b *Builder, def Definition[P], params *P) (Animation[P], Pixels) {
	layout := b.locs
	b.locs = nil
	pixels := newPixels(layout.Shape())
	return def.New(params, layout), pixels
}

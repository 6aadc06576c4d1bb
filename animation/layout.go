package animation

// PixelLocation is the 2-D position of one pixel. The runtime never
// interprets it; it is handed to the animation constructor as-is.
type PixelLocation struct {
	X float32
	Y float32
}

// Layout is an ordered list of strips, each an ordered list of pixel locations.
type Layout [][]PixelLocation

// Shape returns the length of every strip.
func (l Layout) Shape() []int {
	shape := make([]int, len(l))
	for i, strip := range l {
		shape[i] = len(strip)
	}
	return shape
}

// clone returns a deep copy so the animation never aliases builder storage.
func (l Layout) clone() Layout {
	out := make(Layout, len(l))
	for i, strip := range l {
		out[i] = append([]PixelLocation(nil), strip...)
	}
	return out
}

// Pixels is the per-frame colour buffer, shape-congruent with a Layout.
// Each value is a packed 32-bit colour whose channel order is chosen by the
// animation that renders it.
type Pixels [][]uint32

// newPixels allocates a zeroed buffer with the given strip lengths.
func newPixels(shape []int) Pixels {
	total := 0
	for _, n := range shape {
		total += n
	}
	// One backing array keeps the buffer to two allocations regardless of strip count.
	backing := make([]uint32, total)
	p := make(Pixels, len(shape))
	off := 0
	for i, n := range shape {
		p[i] = backing[off : off+n : off+n]
		off += n
	}
	return p
}

// RGB splits a value packed as 0xAARRGGBB into its colour bytes, the
// layout the built-in animations render and the outputs expect. Alpha is
// ignored.
func RGB(v uint32) (r, g, b uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Shape returns the length of every strip.
func (p Pixels) Shape() []int {
	shape := make([]int, len(p))
	for i, strip := range p {
		shape[i] = len(strip)
	}
	return shape
}

// Total returns the number of pixels across all strips.
func (p Pixels) Total() int {
	n := 0
	for _, strip := range p {
		n += len(strip)
	}
	return n
}

// Equal reports whether both buffers have the same shape and values.
func (p Pixels) Equal(other Pixels) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if len(p[i]) != len(other[i]) {
			return false
		}
		for j := range p[i] {
			if p[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// CopyInto copies p into dst, reallocating dst only when its shape differs.
// It returns the (possibly new) destination.
func (p Pixels) CopyInto(dst Pixels) Pixels {
	if !sameShape(p, dst) {
		dst = newPixels(p.Shape())
	}
	for i := range p {
		copy(dst[i], p[i])
	}
	return dst
}

func sameShape(a, b Pixels) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}

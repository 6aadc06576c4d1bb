package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/ledbetter/animation"
)

// MaxPixels bounds the total pixel count of one layout.
const MaxPixels = 1 << 16

// Spec is a named pixel layout.
type Spec struct {
	Name   string      `yaml:"name" json:"name"`
	Strips []StripSpec `yaml:"strips" json:"strips"`
}

// StripSpec is one strip. Exactly one of Points and Line is set; an empty
// Points list is a strip of length zero.
type StripSpec struct {
	Points []Point `yaml:"points,omitempty" json:"points,omitempty"`
	Line   *Line   `yaml:"line,omitempty" json:"line,omitempty"`
}

// Line samples Count evenly spaced points from From to To inclusive.
type Line struct {
	From  Point `yaml:"from" json:"from"`
	To    Point `yaml:"to" json:"to"`
	Count int   `yaml:"count" json:"count"`
}

// Point is a pixel location.
type Point struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
}

// UnmarshalYAML accepts either {x: .., y: ..} or a two-element sequence.
func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var xy []float32
		if err := node.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: point needs 2 coordinates, got %d", node.Line, len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	}
	type plain Point
	return node.Decode((*plain)(p))
}

// MarshalYAML writes the compact sequence form.
func (p Point) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []float32{p.X, p.Y} {
		var c yaml.Node
		if err := c.Encode(v); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &c)
	}
	return n, nil
}

// Load reads and validates a layout file. A file without a name takes
// its base name from the path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	s, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML layout.
func Parse(data []byte) (*Spec, error) {
	s, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	return &s, nil
}

// Marshal encodes s as YAML in the same form Parse reads.
func (s *Spec) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks the strip definitions and the pixel budget.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLayout)
	}
	total := 0
	for i, st := range s.Strips {
		switch {
		case st.Line != nil && st.Points != nil:
			return fmt.Errorf("%w: strip %d has both points and line", ErrInvalidLayout, i)
		case st.Line != nil && st.Line.Count < 0:
			return fmt.Errorf("%w: strip %d line count %d is negative", ErrInvalidLayout, i, st.Line.Count)
		}
		n := st.Len()
		if n > MaxPixels-total {
			return fmt.Errorf("%w: strip %d takes the layout past the limit of %d pixels", ErrInvalidLayout, i, MaxPixels)
		}
		total += n
	}
	return nil
}

// Len is the number of pixels on the strip.
func (st StripSpec) Len() int {
	if st.Line != nil {
		return st.Line.Count
	}
	return len(st.Points)
}

// At returns the location of pixel i.
func (st StripSpec) At(i int) Point {
	if st.Line == nil {
		return st.Points[i]
	}
	l := st.Line
	if l.Count < 2 {
		return l.From
	}
	t := float32(i) / float32(l.Count-1)
	return Point{
		X: l.From.X + (l.To.X-l.From.X)*t,
		Y: l.From.Y + (l.To.Y-l.From.Y)*t,
	}
}

// Shape returns the strip lengths.
func (s *Spec) Shape() []int {
	shape := make([]int, len(s.Strips))
	for i, st := range s.Strips {
		shape[i] = st.Len()
	}
	return shape
}

// PixelCount is the total number of pixels.
func (s *Spec) PixelCount() int {
	n := 0
	for _, st := range s.Strips {
		n += st.Len()
	}
	return n
}

// Locations expands the layout into the runtime's location table.
func (s *Spec) Locations() animation.Layout {
	out := make(animation.Layout, len(s.Strips))
	for i, st := range s.Strips {
		out[i] = make([]animation.PixelLocation, st.Len())
		for j := range out[i] {
			p := st.At(j)
			out[i][j] = animation.PixelLocation{X: p.X, Y: p.Y}
		}
	}
	return out
}

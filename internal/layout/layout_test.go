package layout

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nerrad567/ledbetter/animation"
)

const shelfYAML = `
name: shelf
strips:
  - line: {from: [0, 0], to: [1, 0.5], count: 3}
  - points:
      - [0, 1]
      - {x: 0.25, y: 1}
  - points: []
  - line: {from: [2, 2], to: [9, 9], count: 1}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(shelfYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if s.Name != "shelf" {
		t.Errorf("Name = %q, want shelf", s.Name)
	}
	if got, want := s.Shape(), []int{3, 2, 0, 1}; !slices.Equal(got, want) {
		t.Errorf("Shape() = %v, want %v", got, want)
	}
	if s.PixelCount() != 6 {
		t.Errorf("PixelCount() = %d, want 6", s.PixelCount())
	}

	want := animation.Layout{
		{{X: 0, Y: 0}, {X: 0.5, Y: 0.25}, {X: 1, Y: 0.5}},
		{{X: 0, Y: 1}, {X: 0.25, Y: 1}},
		{},
		{{X: 2, Y: 2}},
	}
	got := s.Locations()
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("strip %d locations = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "strips: [oops"},
		{name: "missing name", yaml: "strips: []"},
		{name: "points and line", yaml: "name: x\nstrips:\n  - points: [[0, 0]]\n    line: {count: 2}\n"},
		{name: "negative count", yaml: "name: x\nstrips:\n  - line: {count: -1}\n"},
		{name: "short point", yaml: "name: x\nstrips:\n  - points: [[0]]\n"},
		{name: "too many pixels", yaml: "name: x\nstrips:\n  - line: {count: 70000}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("Parse() error = %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestValidate_PixelBudget(t *testing.T) {
	line := func(n int) StripSpec { return StripSpec{Line: &Line{Count: n}} }

	tests := []struct {
		name    string
		strips  []StripSpec
		wantErr bool
	}{
		{name: "at the limit", strips: []StripSpec{line(MaxPixels / 2), line(MaxPixels / 2)}},
		{name: "one over across strips", strips: []StripSpec{line(MaxPixels), line(1)}, wantErr: true},
		{name: "single huge strip", strips: []StripSpec{line(math.MaxInt)}, wantErr: true},
		{name: "sum wraps negative", strips: []StripSpec{line(math.MaxInt/2 + 1), line(math.MaxInt/2 + 1)}, wantErr: true},
		{name: "huge after small", strips: []StripSpec{line(3), line(math.MaxInt - 1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Spec{Name: "big", Strips: tt.strips}
			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLayout) {
					t.Errorf("Validate() error = %v, want ErrInvalidLayout", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoad_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "porch.yaml")
	if err := os.WriteFile(path, []byte("strips:\n  - line: {count: 4}\n"), 0600); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "porch" {
		t.Errorf("Name = %q, want porch", s.Name)
	}
}

func TestSpec_MarshalRoundTrip(t *testing.T) {
	s, err := Parse([]byte(shelfYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	doc, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v\n%s", err, doc)
	}
	if !slices.Equal(back.Shape(), s.Shape()) {
		t.Errorf("shape after round trip = %v, want %v", back.Shape(), s.Shape())
	}
	if got, want := back.Strips[1].At(1), s.Strips[1].At(1); got != want {
		t.Errorf("point after round trip = %v, want %v", got, want)
	}
}

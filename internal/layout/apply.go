package layout

import (
	"context"
	"fmt"

	"github.com/nerrad567/ledbetter/animation"
)

// Apply sends s to d through the layout calls and finalizes it: strip
// count, then every strip length, then every pixel location. d must be
// fresh; on any error it is left mid-build and should be discarded.
//
// The context is checked between strips.
func Apply(ctx context.Context, d animation.Driver, s *Spec) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := d.SetStripCount(len(s.Strips)); err != nil {
		return fmt.Errorf("applying layout %q: %w", s.Name, err)
	}
	for i, st := range s.Strips {
		if err := d.SetStripLength(i, st.Len()); err != nil {
			return fmt.Errorf("applying layout %q: %w", s.Name, err)
		}
	}
	for i, st := range s.Strips {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := range st.Len() {
			p := st.At(j)
			if err := d.SetPixelLocation(i, j, p.X, p.Y); err != nil {
				return fmt.Errorf("applying layout %q: %w", s.Name, err)
			}
		}
	}

	if err := d.FinalizeLayout(); err != nil {
		return fmt.Errorf("applying layout %q: %w", s.Name, err)
	}
	return nil
}

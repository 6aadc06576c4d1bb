// Package preview draws frames in the terminal: a status line, then one
// row of full-block cells per strip coloured with the pixel's RGB. Strips
// wider than the terminal are sampled down to fit.
//
// The preview owns the terminal while it runs, so the host sends its logs
// to logging.file instead.
package preview

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/internal/player"
)

const cell = '█'

// Sink renders frames to a tcell screen.
type Sink struct {
	screen tcell.Screen
	style  tcell.Style
}

var _ player.Sink = (*Sink)(nil)

// Open takes over the terminal.
func Open() (*Sink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return New(screen), nil
}

// New wraps an initialised screen.
func New(screen tcell.Screen) *Sink {
	screen.HideCursor()
	screen.Clear()
	return &Sink{screen: screen, style: tcell.StyleDefault}
}

// Close restores the terminal.
func (s *Sink) Close() {
	s.screen.Fini()
}

// Name identifies the sink in logs.
func (s *Sink) Name() string {
	return "preview"
}

// WriteFrame redraws the whole screen.
func (s *Sink) WriteFrame(_ context.Context, f *player.Frame) error {
	width, height := s.screen.Size()
	s.screen.Clear()

	status := fmt.Sprintf("%s  frame %d  %d strips  (q to quit)", f.Animation, f.Seq, len(f.Pixels))
	s.drawText(0, status)

	for i, strip := range f.Pixels {
		y := i + 1
		if y >= height {
			break
		}
		n := min(len(strip), width)
		for x := range n {
			// Sample evenly when the strip is wider than the screen.
			v := strip[x*len(strip)/n]
			r, g, b := animation.RGB(v)
			color := tcell.NewRGBColor(int32(r), int32(g), int32(b))
			s.screen.SetContent(x, y, cell, nil, s.style.Foreground(color))
		}
	}

	s.screen.Show()
	return nil
}

func (s *Sink) drawText(y int, text string) {
	x := 0
	for _, r := range text {
		s.screen.SetContent(x, y, r, nil, s.style)
		x++
	}
}

// Watch polls terminal events until the screen is closed, calling stop on
// q, Esc or Ctrl-C. The terminal is in raw mode, so Ctrl-C does not raise
// SIGINT by itself. Run it in its own goroutine.
func (s *Sink) Watch(stop func()) {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				stop()
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

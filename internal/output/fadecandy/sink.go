package fadecandy

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	opc "github.com/kellydunn/go-opc"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/internal/infrastructure/config"
	"github.com/nerrad567/ledbetter/internal/player"
)

const redialInterval = 2 * time.Second

// Logger is the logging surface the sink needs.
type Logger interface {
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}

// placement is where one strip's first pixel lands.
type placement struct {
	channel uint8
	offset  int
}

// Sink writes frames to one OPC server. It is called only from the player
// goroutine and is not safe for concurrent use.
type Sink struct {
	addr   string
	strips []config.OPCStripConfig
	logger Logger

	client   *opc.Client
	lastDial time.Time
	now      func() time.Time
}

var _ player.Sink = (*Sink)(nil)

// New creates a sink for cfg. It does not dial until the first frame.
func New(cfg config.OPCConfig, logger Logger) *Sink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Sink{
		addr:   cfg.Address,
		strips: cfg.Strips,
		logger: logger,
		now:    time.Now,
	}
}

// Name identifies the sink in logs.
func (s *Sink) Name() string {
	return "opc:" + s.addr
}

// WriteFrame sends one message per channel the frame touches, in channel order.
func (s *Sink) WriteFrame(_ context.Context, f *player.Frame) error {
	msgs, err := s.messages(f)
	if err != nil {
		return err
	}
	if err := s.connect(); err != nil {
		return err
	}
	for _, m := range msgs {
		if err := s.client.Send(m); err != nil {
			s.client = nil
			return fmt.Errorf("%w: %s: %w", ErrSend, s.addr, err)
		}
	}
	return nil
}

func (s *Sink) connect() error {
	if s.client != nil {
		return nil
	}
	now := s.now()
	if !s.lastDial.IsZero() && now.Sub(s.lastDial) < redialInterval {
		return ErrNotConnected
	}
	s.lastDial = now

	c := opc.NewClient()
	if err := c.Connect("tcp", s.addr); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnect, s.addr, err)
	}
	s.client = c
	s.logger.Info("fadecandy connected", "address", s.addr)
	return nil
}

// placements resolves where every strip goes for the given shape.
func (s *Sink) placements(shape []int) []placement {
	out := make([]placement, len(shape))
	next := 0
	for i, n := range shape {
		if i < len(s.strips) {
			out[i] = placement{channel: s.strips[i].Channel, offset: s.strips[i].Offset}
			continue
		}
		out[i] = placement{channel: 0, offset: next}
		next += n
	}
	return out
}

// messages builds one SetPixelColors message per channel.
func (s *Sink) messages(f *player.Frame) ([]*opc.Message, error) {
	shape := f.Pixels.Shape()
	places := s.placements(shape)

	// Pixels per channel.
	lengths := make(map[uint8]int)
	for i, p := range places {
		lengths[p.channel] = max(lengths[p.channel], p.offset+shape[i])
	}

	channels := make([]uint8, 0, len(lengths))
	msgs := make(map[uint8]*opc.Message, len(lengths))
	for ch, n := range lengths {
		if n == 0 {
			continue
		}
		if n*3 > math.MaxUint16 {
			return nil, fmt.Errorf("%w: channel %d has %d pixels", ErrFrameTooLarge, ch, n)
		}
		m := opc.NewMessage(ch)
		m.SetLength(uint16(n * 3))
		msgs[ch] = m
		channels = append(channels, ch)
	}

	for i, strip := range f.Pixels {
		p := places[i]
		for j, v := range strip {
			r, g, b := animation.RGB(v)
			msgs[p.channel].SetPixelColor(p.offset+j, r, g, b)
		}
	}

	slices.Sort(channels)
	out := make([]*opc.Message, len(channels))
	for i, ch := range channels {
		out[i] = msgs[ch]
	}
	return out, nil
}

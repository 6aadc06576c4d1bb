package player

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/ledbetter/animation"
)

// sinkErrorLogInterval limits how often a persistently failing sink is logged.
const sinkErrorLogInterval = 10 * time.Second

// Logger is the logging surface the player needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Frame is one rendered frame as handed to sinks.
//
// Pixels is reused for the next frame: a sink must finish with it (or copy
// it) before WriteFrame returns.
type Frame struct {
	Seq       uint64
	Time      time.Time
	Animation string
	RunID     string
	Pixels    animation.Pixels
}

// Sink receives every frame the player renders.
type Sink interface {
	Name() string
	WriteFrame(ctx context.Context, f *Frame) error
}

// MetricsRecorder receives per-frame timing. The InfluxDB client satisfies it.
type MetricsRecorder interface {
	WriteFrameMetric(animation, runID string, seq uint64, tick time.Duration, pixels int, at time.Time)
}

// Config holds the frame loop settings.
type Config struct {
	// Interval is the time between ticks.
	Interval time.Duration

	// RunID tags every frame and metric of this host run.
	RunID string
}

type request struct {
	fn   func(animation.Driver) error
	done chan error
}

type sinkState struct {
	sink       Sink
	failing    bool
	lastLog    time.Time
	suppressed int
}

// Player drives one animation at a fixed frame rate.
//
// Thread Safety: AddSink and SetMetrics must be called before Run. Do,
// Frames and the accessors are safe for concurrent use.
type Player struct {
	driver   animation.Driver
	interval time.Duration
	runID    string
	logger   Logger

	sinks   []*sinkState
	metrics MetricsRecorder

	buf    animation.Pixels
	work   chan request
	done   chan struct{}
	frames atomic.Uint64
	active atomic.Bool
}

// New creates a player for d, whose layout must already be finalized.
func New(d animation.Driver, cfg Config, logger Logger) (*Player, error) {
	if d == nil || d.Phase() != animation.PhaseBuilt {
		return nil, ErrNotBuilt
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.Interval)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Player{
		driver:   d,
		interval: cfg.Interval,
		runID:    cfg.RunID,
		logger:   logger,
		work:     make(chan request),
		done:     make(chan struct{}),
	}, nil
}

// AddSink appends a sink. Sinks are written in the order they were added.
func (p *Player) AddSink(s Sink) {
	p.sinks = append(p.sinks, &sinkState{sink: s})
}

// SetMetrics sets the per-frame metrics recorder. nil disables metrics.
func (p *Player) SetMetrics(m MetricsRecorder) {
	p.metrics = m
}

// Animation returns the name of the animation being played.
func (p *Player) Animation() string {
	return p.driver.Name()
}

// RunID returns the run identifier frames are tagged with.
func (p *Player) RunID() string {
	return p.runID
}

// Interval returns the time between ticks.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// Frames returns the number of frames rendered so far.
func (p *Player) Frames() uint64 {
	return p.frames.Load()
}

// Done is closed when Run returns.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Run ticks the animation until ctx is cancelled (returning nil) or the
// driver faults (returning an error wrapping ErrRuntimeFault).
func (p *Player) Run(ctx context.Context) error {
	if !p.active.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(p.done)

	p.logger.Info("player started",
		"animation", p.driver.Name(),
		"run_id", p.runID,
		"interval", p.interval.String(),
		"sinks", len(p.sinks),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("player stopped", "frames", p.frames.Load())
			return nil

		case req := <-p.work:
			req.done <- p.call(req.fn)

		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			if err := p.step(ctx); err != nil {
				p.logger.Error("player halted", "error", err, "frames", p.frames.Load())
				return err
			}
		}
	}
}

// Do runs fn on the player goroutine, between frames, and returns its error.
// It blocks until Run picks the request up; it returns ErrStopped if the
// loop has exited.
func (p *Player) Do(ctx context.Context, fn func(animation.Driver) error) error {
	req := request{fn: fn, done: make(chan error, 1)}

	select {
	case p.work <- req:
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn, turning a panic into an error so a bad request cannot take
// down the frame loop.
func (p *Player) call(fn func(animation.Driver) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("player: request panicked: %v", r)
		}
	}()
	return fn(p.driver)
}

// step renders one frame and fans it out.
func (p *Player) step(ctx context.Context) error {
	start := time.Now()

	if err := p.driver.Tick(); err != nil {
		return fmt.Errorf("%w: tick: %w", ErrRuntimeFault, err)
	}
	buf, err := p.driver.CopyFrame(p.buf)
	if err != nil {
		return fmt.Errorf("%w: copy frame: %w", ErrRuntimeFault, err)
	}
	p.buf = buf
	elapsed := time.Since(start)

	frame := Frame{
		Seq:       p.frames.Add(1),
		Time:      start,
		Animation: p.driver.Name(),
		RunID:     p.runID,
		Pixels:    buf,
	}
	for _, st := range p.sinks {
		p.write(ctx, st, &frame)
	}

	if p.metrics != nil {
		p.metrics.WriteFrameMetric(frame.Animation, frame.RunID, frame.Seq, elapsed, buf.Total(), start)
	}
	return nil
}

func (p *Player) write(ctx context.Context, st *sinkState, f *Frame) {
	err := st.sink.WriteFrame(ctx, f)
	if err == nil {
		if st.failing {
			p.logger.Info("sink recovered",
				"sink", st.sink.Name(),
				"suppressed", st.suppressed,
			)
			st.failing = false
			st.suppressed = 0
		}
		return
	}

	if st.failing && f.Time.Sub(st.lastLog) < sinkErrorLogInterval {
		st.suppressed++
		return
	}
	p.logger.Warn("sink write failed",
		"sink", st.sink.Name(),
		"seq", f.Seq,
		"error", err,
		"suppressed", st.suppressed,
	)
	st.failing = true
	st.lastLog = f.Time
	st.suppressed = 0
}

package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/animations/stripindex"
)

// newStripIndex returns a built stripindex runtime with strips of 3 and 2 pixels.
func newStripIndex(t *testing.T, offset uint32) *animation.Runtime[stripindex.Params] {
	t.Helper()
	rt := animation.MustNew(stripindex.Definition)
	rt.Params().Offset = offset
	steps := []error{
		rt.SetStripCount(2),
		rt.SetStripLength(0, 3),
		rt.SetStripLength(1, 2),
		rt.FinalizeLayout(),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building layout: %v", err)
		}
	}
	return rt
}

// recordingSink keeps a copy of every frame and cancels after stopAfter frames.
type recordingSink struct {
	mu        sync.Mutex
	frames    []Frame
	stopAfter uint64
	cancel    context.CancelFunc
	fail      func(seq uint64) error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) WriteFrame(_ context.Context, f *Frame) error {
	s.mu.Lock()
	cp := *f
	cp.Pixels = f.Pixels.CopyInto(nil)
	s.frames = append(s.frames, cp)
	s.mu.Unlock()

	if f.Seq >= s.stopAfter && s.cancel != nil {
		s.cancel()
	}
	if s.fail != nil {
		return s.fail(f.Seq)
	}
	return nil
}

type metricCall struct {
	animation string
	runID     string
	seq       uint64
	pixels    int
}

type recordingMetrics struct {
	mu    sync.Mutex
	calls []metricCall
}

func (m *recordingMetrics) WriteFrameMetric(anim, runID string, seq uint64, _ time.Duration, pixels int, _ time.Time) {
	m.mu.Lock()
	m.calls = append(m.calls, metricCall{anim, runID, seq, pixels})
	m.mu.Unlock()
}

type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []string
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	l.infos = append(l.infos, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errs = append(l.errs, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) count(msgs []string, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range msgs {
		if m == msg {
			n++
		}
	}
	return n
}

func TestNew_Validation(t *testing.T) {
	unbuilt := animation.MustNew(stripindex.Definition)

	tests := []struct {
		name   string
		driver animation.Driver
		cfg    Config
		want   error
	}{
		{"nil driver", nil, Config{Interval: time.Millisecond}, ErrNotBuilt},
		{"layout not finalized", unbuilt, Config{Interval: time.Millisecond}, ErrNotBuilt},
		{"zero interval", newStripIndex(t, 0), Config{}, ErrInvalidInterval},
		{"negative interval", newStripIndex(t, 0), Config{Interval: -time.Second}, ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.driver, tt.cfg, nil); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRun_DeliversFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := New(newStripIndex(t, 10), Config{Interval: time.Millisecond, RunID: "run-1"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sink := &recordingSink{stopAfter: 3, cancel: cancel}
	metrics := &recordingMetrics{}
	p.AddSink(sink)
	p.SetMetrics(metrics)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sink.frames) != 3 {
		t.Fatalf("sink got %d frames, want 3", len(sink.frames))
	}
	want := []animation.Pixels{
		{{0, 1, 2}, {1000, 1001}},
		{{10, 11, 12}, {1010, 1011}},
		{{20, 21, 22}, {1020, 1021}},
	}
	for i, f := range sink.frames {
		if f.Seq != uint64(i+1) {
			t.Errorf("frame %d: Seq = %d", i, f.Seq)
		}
		if f.Animation != "stripindex" || f.RunID != "run-1" {
			t.Errorf("frame %d: Animation = %q, RunID = %q", i, f.Animation, f.RunID)
		}
		if !f.Pixels.Equal(want[i]) {
			t.Errorf("frame %d: Pixels = %v, want %v", i, f.Pixels, want[i])
		}
	}

	if len(metrics.calls) != 3 {
		t.Fatalf("metrics got %d calls, want 3", len(metrics.calls))
	}
	if got := metrics.calls[2]; got != (metricCall{"stripindex", "run-1", 3, 5}) {
		t.Errorf("last metric = %+v", got)
	}
	if p.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", p.Frames())
	}
}

func TestRun_SinkErrorsAreNotFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := &recordingLogger{}
	p, err := New(newStripIndex(t, 0), Config{Interval: time.Millisecond}, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sink := &recordingSink{
		stopAfter: 5,
		cancel:    cancel,
		fail: func(seq uint64) error {
			if seq <= 4 {
				return errors.New("device unplugged")
			}
			return nil
		},
	}
	p.AddSink(sink)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sink.frames) != 5 {
		t.Errorf("sink got %d frames, want 5", len(sink.frames))
	}
	if n := log.count(log.warns, "sink write failed"); n != 1 {
		t.Errorf("logged %d sink failures, want 1 (rest suppressed)", n)
	}
	if n := log.count(log.infos, "sink recovered"); n != 1 {
		t.Errorf("logged %d recoveries, want 1", n)
	}
}

// faultyDriver is built but fails to tick.
type faultyDriver struct {
	animation.Driver
}

func (faultyDriver) Name() string           { return "faulty" }
func (faultyDriver) Phase() animation.Phase { return animation.PhaseBuilt }
func (faultyDriver) Tick() error            { return animation.ErrProtocolViolation }

func TestRun_TickFaultIsFatal(t *testing.T) {
	log := &recordingLogger{}
	p, err := New(faultyDriver{}, Config{Interval: time.Millisecond}, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = p.Run(context.Background())
	if !errors.Is(err, ErrRuntimeFault) || !errors.Is(err, animation.ErrProtocolViolation) {
		t.Fatalf("Run() error = %v, want ErrRuntimeFault wrapping ErrProtocolViolation", err)
	}
	if n := log.count(log.errs, "player halted"); n != 1 {
		t.Errorf("logged %d halts, want 1", n)
	}

	if err := p.Do(context.Background(), func(animation.Driver) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Do() after halt error = %v, want ErrStopped", err)
	}
	if err := p.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestDo(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := New(newStripIndex(t, 0), Config{Interval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(ctx) }()

	if err := p.Do(ctx, func(d animation.Driver) error {
		return d.SetParam("offset", animation.U32(7))
	}); err != nil {
		t.Fatalf("Do(SetParam) error = %v", err)
	}

	var got animation.Value
	if err := p.Do(ctx, func(d animation.Driver) error {
		var err error
		got, err = d.Param("offset")
		return err
	}); err != nil {
		t.Fatalf("Do(Param) error = %v", err)
	}
	if got.U32() != 7 {
		t.Errorf("offset = %v, want 7", got)
	}

	boom := errors.New("boom")
	if err := p.Do(ctx, func(animation.Driver) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Do() error = %v, want boom", err)
	}
	if err := p.Do(ctx, func(animation.Driver) error { panic("bad handler") }); err == nil {
		t.Error("Do() with panicking fn returned nil error")
	}

	cancel()
	if err := <-runErr; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if err := p.Do(context.Background(), func(animation.Driver) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Do() after stop error = %v, want ErrStopped", err)
	}
}

func TestDo_ContextCancelledBeforeRun(t *testing.T) {
	p, err := New(newStripIndex(t, 0), Config{Interval: time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := p.Do(ctx, func(animation.Driver) error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want DeadlineExceeded", err)
	}
}

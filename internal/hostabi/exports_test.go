package hostabi

import (
	"errors"
	"testing"

	"github.com/nerrad567/ledbetter/animation"
)

type params struct {
	Level uint32 `param:"level"`
}

type levelAnim struct{}

func (levelAnim) Tick(*params) {}

func (levelAnim) Render(p *params, px animation.Pixels) {
	for s, strip := range px {
		for i := range strip {
			strip[i] = uint32(s*1000+i) + p.Level
		}
	}
}

var definition = animation.Definition[params]{
	Name: "level",
	New: func(*params, animation.Layout) animation.Animation[params] {
		return levelAnim{}
	},
}

func newExports(t *testing.T) *Exports[params] {
	t.Helper()
	rt, err := animation.New(definition)
	if err != nil {
		t.Fatalf("animation.New() error = %v", err)
	}
	return New(rt)
}

// expectFault runs fn and returns the *Fault it panicked with.
func expectFault(t *testing.T, fn func()) (fault *Fault) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic, got none")
		}
		f, ok := r.(*Fault)
		if !ok {
			t.Fatalf("panic value %T, want *Fault", r)
		}
		fault = f
	}()
	fn()
	return nil
}

func TestExports_CallProtocol(t *testing.T) {
	e := newExports(t)

	e.Params().Level = 5
	e.InitLayoutSetNumStrips(2)
	e.InitLayoutSetStripLen(0, 3)
	e.InitLayoutSetStripLen(1, 2)
	e.InitLayoutSetPixelLoc(0, 2, 0.5, 0.25)
	e.InitLayoutDone()
	e.Tick()

	if got := e.GetPixelVal(0, 2); got != 7 {
		t.Errorf("GetPixelVal(0,2) = %d, want 7", got)
	}
	if got := e.GetPixelVal(1, 1); got != 1006 {
		t.Errorf("GetPixelVal(1,1) = %d, want 1006", got)
	}

	e.Params().Level = 0
	e.Tick()
	if got := e.GetPixelVal(1, 1); got != 1001 {
		t.Errorf("GetPixelVal(1,1) after param change = %d, want 1001", got)
	}
}

func TestExports_Faults(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		want    error
		prepare func(*Exports[params])
		call    func(*Exports[params])
	}{
		{
			name: "tick before done",
			op:   "tick",
			want: animation.ErrProtocolViolation,
			call: func(e *Exports[params]) { e.Tick() },
		},
		{
			name:    "layout after done",
			op:      "initLayoutSetNumStrips",
			want:    animation.ErrProtocolViolation,
			prepare: func(e *Exports[params]) { e.InitLayoutDone() },
			call:    func(e *Exports[params]) { e.InitLayoutSetNumStrips(1) },
		},
		{
			name:    "done twice",
			op:      "initLayoutDone",
			want:    animation.ErrProtocolViolation,
			prepare: func(e *Exports[params]) { e.InitLayoutDone() },
			call:    func(e *Exports[params]) { e.InitLayoutDone() },
		},
		{
			name: "strip length on missing strip",
			op:   "initLayoutSetStripLen",
			want: animation.ErrIndexOutOfRange,
			call: func(e *Exports[params]) { e.InitLayoutSetStripLen(0, 4) },
		},
		{
			name: "pixel read out of range",
			op:   "getPixelVal",
			want: animation.ErrIndexOutOfRange,
			prepare: func(e *Exports[params]) {
				e.InitLayoutSetNumStrips(1)
				e.InitLayoutSetStripLen(0, 1)
				e.InitLayoutDone()
			},
			call: func(e *Exports[params]) { e.GetPixelVal(0, 1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExports(t)
			if tt.prepare != nil {
				tt.prepare(e)
			}

			var hooked *Fault
			e.OnFault(func(f *Fault) { hooked = f })

			f := expectFault(t, func() { tt.call(e) })
			if f.Op != tt.op {
				t.Errorf("Fault.Op = %q, want %q", f.Op, tt.op)
			}
			if !errors.Is(f, tt.want) {
				t.Errorf("Fault = %v, want wrapping %v", f, tt.want)
			}
			if hooked != f {
				t.Error("fault hook did not receive the fault")
			}
		})
	}
}

package control

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/internal/catalog"
	"github.com/nerrad567/ledbetter/internal/infrastructure/mqtt"
	"github.com/nerrad567/ledbetter/internal/player"
)

// commandTimeout bounds how long an MQTT command waits for the frame loop.
const commandTimeout = 2 * time.Second

// Logger is the logging surface the controller needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Publisher publishes JSON messages. The MQTT client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// ParamRecorder records parameter changes. The InfluxDB client satisfies it.
type ParamRecorder interface {
	WriteParamChange(animation, runID, name string, value float64, at time.Time)
}

// Param is one parameter field and its current value.
type Param struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// Command is the payload of a parameter command.
type Command struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// paramsMessage is the retained ledbetter/params payload.
type paramsMessage struct {
	Animation string  `json:"animation"`
	RunID     string  `json:"run_id"`
	Params    []Param `json:"params"`
}

// Controller reads and writes the running animation's parameters.
//
// Thread Safety: all methods are safe for concurrent use once the setters
// have been called.
type Controller struct {
	player  *player.Player
	pub     Publisher
	metrics ParamRecorder
	logger  Logger
}

// New creates a controller for p.
func New(p *player.Player, logger Logger) *Controller {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Controller{player: p, logger: logger}
}

// SetPublisher sets where parameter snapshots are published. nil disables publishing.
func (c *Controller) SetPublisher(pub Publisher) {
	c.pub = pub
}

// SetMetrics sets the parameter change recorder. nil disables recording.
func (c *Controller) SetMetrics(m ParamRecorder) {
	c.metrics = m
}

// Animation returns the name of the running animation.
func (c *Controller) Animation() string {
	return c.player.Animation()
}

// RunID returns the current run identifier.
func (c *Controller) RunID() string {
	return c.player.RunID()
}

// Frames returns the number of frames rendered so far.
func (c *Controller) Frames() uint64 {
	return c.player.Frames()
}

// Params returns every parameter field with its current value, in
// declaration order.
func (c *Controller) Params(ctx context.Context) ([]Param, error) {
	var out []Param
	err := c.player.Do(ctx, func(d animation.Driver) error {
		var err error
		out, err = snapshot(d)
		return err
	})
	return out, err
}

// SetParam converts value to the named field's kind and writes it. It
// returns the field as stored, which may differ from value after f32
// rounding. Fractional values for integer fields are rejected.
func (c *Controller) SetParam(ctx context.Context, name string, value float64) (Param, error) {
	var (
		set Param
		all []Param
	)
	err := c.player.Do(ctx, func(d animation.Driver) error {
		if err := catalog.SetParams(d, map[string]float64{name: value}); err != nil {
			return err
		}
		var err error
		all, err = snapshot(d)
		return err
	})
	if err != nil {
		return Param{}, err
	}
	for _, p := range all {
		if p.Name == name {
			set = p
		}
	}

	c.logger.Info("parameter changed", "animation", c.Animation(), "name", name, "value", set.Value)
	if c.metrics != nil {
		c.metrics.WriteParamChange(c.Animation(), c.RunID(), name, set.Value, time.Now())
	}
	c.publish(all)
	return set, nil
}

// PublishParams publishes the current parameter snapshot.
func (c *Controller) PublishParams(ctx context.Context) error {
	all, err := c.Params(ctx)
	if err != nil {
		return err
	}
	c.publish(all)
	return nil
}

func (c *Controller) publish(all []Param) {
	if c.pub == nil {
		return
	}
	msg := paramsMessage{Animation: c.Animation(), RunID: c.RunID(), Params: all}
	if err := c.pub.PublishJSON(mqtt.Topics{}.Params(), msg, true); err != nil {
		c.logger.Warn("publishing parameters failed", "error", err)
	}
}

// Frame returns a copy of the most recently rendered frame.
func (c *Controller) Frame(ctx context.Context) (animation.Pixels, error) {
	var out animation.Pixels
	err := c.player.Do(ctx, func(d animation.Driver) error {
		var err error
		out, err = d.CopyFrame(nil)
		return err
	})
	return out, err
}

// HandleCommand applies a {"name": ..., "value": ...} payload. Its
// signature matches mqtt.MessageHandler.
func (c *Controller) HandleCommand(topic string, payload []byte) error {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCommand, topic, err)
	}
	if cmd.Name == "" || cmd.Value == nil {
		return fmt.Errorf("%w: %s: name and value are required", ErrInvalidCommand, topic)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	_, err := c.SetParam(ctx, cmd.Name, *cmd.Value)
	return err
}

func snapshot(d animation.Driver) ([]Param, error) {
	fields := d.ParamFields()
	out := make([]Param, 0, len(fields))
	for _, f := range fields {
		v, err := d.Param(f.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Name: f.Name, Kind: f.Kind.String(), Value: v.Float64()})
	}
	return out, nil
}

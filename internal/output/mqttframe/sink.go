// Package mqttframe is a player sink that publishes every Nth frame as JSON
// on ledbetter/frame, for dashboards and remote previews.
package mqttframe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/internal/infrastructure/mqtt"
	"github.com/nerrad567/ledbetter/internal/player"
)

// ErrPublish wraps a failed frame publish.
var ErrPublish = errors.New("mqttframe: publish failed")

// Publisher publishes JSON messages. The MQTT client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// Message is the published payload.
type Message struct {
	Animation string           `json:"animation"`
	RunID     string           `json:"run_id"`
	Seq       uint64           `json:"seq"`
	Timestamp string           `json:"timestamp"`
	Pixels    animation.Pixels `json:"pixels"`
}

// Sink publishes one frame in every `every`.
type Sink struct {
	pub   Publisher
	every uint64
	topic string
}

var _ player.Sink = (*Sink)(nil)

// New creates a sink publishing through pub. every below 1 is treated as 1.
func New(pub Publisher, every int) *Sink {
	return &Sink{
		pub:   pub,
		every: uint64(max(every, 1)),
		topic: mqtt.Topics{}.Frame(),
	}
}

// Name identifies the sink in logs.
func (s *Sink) Name() string {
	return "mqtt:" + s.topic
}

// WriteFrame publishes f when its sequence number is a multiple of every.
func (s *Sink) WriteFrame(_ context.Context, f *player.Frame) error {
	if f.Seq%s.every != 0 {
		return nil
	}
	msg := Message{
		Animation: f.Animation,
		RunID:     f.RunID,
		Seq:       f.Seq,
		Timestamp: f.Time.UTC().Format(time.RFC3339Nano),
		// The payload is marshalled before PublishJSON returns, so the
		// reused buffer can be referenced directly.
		Pixels: f.Pixels,
	}
	if err := s.pub.PublishJSON(s.topic, msg, false); err != nil {
		return fmt.Errorf("%w: seq %d: %w", ErrPublish, f.Seq, err)
	}
	return nil
}

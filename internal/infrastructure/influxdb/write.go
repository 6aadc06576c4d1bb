package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementFrame is the measurement written once per rendered frame.
const MeasurementFrame = "frame"

// WriteFrameMetric records how long one frame took to tick and render.
// Non-blocking.
//
// Parameters:
//   - animation: Animation name, stored as a tag
//   - runID: Host run identifier, stored as a tag
//   - seq: Frame sequence number
//   - tick: Time spent in Tick (advance plus render)
//   - pixels: Pixels in the frame
//   - at: Frame timestamp
func (c *Client) WriteFrameMetric(animation, runID string, seq uint64, tick time.Duration, pixels int, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(framePoint(animation, runID, seq, tick, pixels, at))
}

func framePoint(animation, runID string, seq uint64, tick time.Duration, pixels int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementFrame,
		map[string]string{
			"animation": animation,
			"run_id":    runID,
		},
		map[string]any{
			"seq":     seq,
			"tick_us": tick.Microseconds(),
			"pixels":  pixels,
		},
		at,
	)
}

// WriteParamChange records a parameter write, so changes can be lined up
// against frame timings.
func (c *Client) WriteParamChange(animation, runID, name string, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(
		"param_change",
		map[string]string{
			"animation": animation,
			"run_id":    runID,
			"name":      name,
		},
		map[string]any{"value": value},
		at,
	))
}

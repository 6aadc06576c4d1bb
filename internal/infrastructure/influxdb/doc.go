// Package influxdb records host telemetry in InfluxDB.
//
// Each rendered frame becomes one point in the "frame" measurement, tagged
// with the animation name and run ID, carrying the tick duration in
// microseconds and the pixel count. Parameter writes become
// "param_change" points.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteFrameMetric("blue", runID, seq, tickDuration, 144, time.Now())
//
// Writes are batched (batch_size, flush_interval) and never block; batch
// failures are delivered to the SetOnError callback.
package influxdb

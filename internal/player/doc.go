// Package player runs the frame loop of the ledbetter host.
//
// A Player owns one built animation.Driver. The runtime assumes a single
// caller, so every call into the driver happens on the goroutine running
// Player.Run; other goroutines (API handlers, MQTT callbacks) reach the
// driver through Player.Do.
//
// Each frame the player ticks the driver, copies the pixel buffer into a
// reused Frame and hands it to every Sink in order. Sink failures are
// logged (rate-limited per sink) and never stop the loop. A failing Tick or
// CopyFrame means the host broke the call protocol and ends Run.
//
// Usage:
//
//	p, err := player.New(driver, player.Config{Interval: cfg.FrameInterval(), RunID: runID}, logger)
//	p.AddSink(opcSink)
//	p.SetMetrics(influxClient)
//	err = p.Run(ctx)
package player

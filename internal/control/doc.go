// Package control is the remote control surface of the ledbetter host:
// reading and retuning the running animation's parameters and grabbing the
// current frame. The HTTP API and the MQTT command subscription both go
// through a Controller, which in turn reaches the runtime only via
// player.Do.
//
// Every accepted change is published retained on ledbetter/params (when a
// publisher is set) and recorded as a param_change point (when a recorder is
// set).
package control

//go:build wasip1

// Command ledbetter-wasm builds the blue animation as a WebAssembly module
// that a host drives through exported functions:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o blue.wasm ./cmd/ledbetter-wasm
//
// The host calls the initLayout* exports once, then tick and getPixelVal
// each frame. get_param_* and set_param_* are legal at any time. A call
// out of order traps the instance.
package main

import (
	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/animations/blue"
	"github.com/nerrad567/ledbetter/internal/hostabi"
	"github.com/nerrad567/ledbetter/internal/infrastructure/config"
	"github.com/nerrad567/ledbetter/internal/infrastructure/logging"
)

var version = "dev"

var exports = newExports()

func newExports() *hostabi.Exports[blue.Params] {
	log := logging.New(config.LoggingConfig{Level: "warn", Format: "json", Output: "stderr"}, version).
		With("component", "hostabi", "animation", blue.Definition.Name)

	e := hostabi.New(animation.MustNew(blue.Definition))
	e.OnFault(func(f *hostabi.Fault) {
		log.Error("call protocol violated", "op", f.Op, "error", f.Err)
	})
	return e
}

func main() {}

//go:wasmexport initLayoutSetNumStrips
func initLayoutSetNumStrips(n uint32) {
	exports.InitLayoutSetNumStrips(n)
}

//go:wasmexport initLayoutSetStripLen
func initLayoutSetStripLen(strip, length uint32) {
	exports.InitLayoutSetStripLen(strip, length)
}

//go:wasmexport initLayoutSetPixelLoc
func initLayoutSetPixelLoc(strip, pixel uint32, x, y float32) {
	exports.InitLayoutSetPixelLoc(strip, pixel, x, y)
}

//go:wasmexport initLayoutDone
func initLayoutDone() {
	exports.InitLayoutDone()
}

//go:wasmexport tick
func tick() {
	exports.Tick()
}

//go:wasmexport getPixelVal
func getPixelVal(strip, pixel uint32) uint32 {
	return exports.GetPixelVal(strip, pixel)
}

//go:wasmexport get_param_min_hue
func getParamMinHue() float32 {
	return exports.Params().MinHue
}

//go:wasmexport set_param_min_hue
func setParamMinHue(v float32) {
	exports.Params().MinHue = v
}

//go:wasmexport get_param_max_hue
func getParamMaxHue() float32 {
	return exports.Params().MaxHue
}

//go:wasmexport set_param_max_hue
func setParamMaxHue(v float32) {
	exports.Params().MaxHue = v
}

//go:wasmexport get_param_speed
func getParamSpeed() uint32 {
	return exports.Params().Speed
}

//go:wasmexport set_param_speed
func setParamSpeed(v uint32) {
	exports.Params().Speed = v
}

// Package hostabi adapts an animation.Runtime to the foreign-call boundary a
// host process drives.
//
// The boundary uses unsigned 32-bit indices and has no error channel, so
// every runtime error is fatal here: the fault hook (if any) is told, then
// the call panics with a *Fault. Under wasip1 that traps the module
// instance, which is the fail-fast behaviour hosts expect.
//
// # Exclusivity
//
// One Exports value serves one host. The host must issue one call at a time
// and never re-enter; nothing here locks. cmd/ledbetter-wasm keeps a single
// package-level Exports for exactly this reason.
//
// # Usage
//
//	var exports = hostabi.New(animation.MustNew(blue.Definition))
//
//	//go:wasmexport tick
//	func tick() { exports.Tick() }
package hostabi

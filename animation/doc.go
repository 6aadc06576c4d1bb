// Package animation is the lifecycle runtime for addressable LED animations.
//
// A host process that owns the physical pixels drives a Runtime through a
// fixed call protocol:
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Runtime[P]                        │
//	│                                                          │
//	│   Uninitialized ──first touch──▶ Building ──Finalize──▶ Built
//	│                                  (Builder)     (Animation + Pixels)
//	│                                                          │
//	│   Params P: readable/writable in every phase             │
//	└──────────────────────────────────────────────────────────┘
//
//  1. Layout calls (SetStripCount, SetStripLength, SetPixelLocation) in any
//     order, any number of times, while Building.
//  2. Exactly one FinalizeLayout, which constructs the Animation from the
//     Definition and allocates a zeroed Pixels buffer of the same shape.
//  3. Tick / Pixel reads, typically Tick followed by one read per pixel.
//
// Parameter access is legal throughout. The same P value is passed to the
// animation constructor, to every Tick and to every Render, so a parameter
// written between two ticks is seen by the next one.
//
// # Key Types
//
//   - Definition: binds one parameter record type P to one Animation
//   - Animation: the capability interface concrete animations implement
//   - Builder: layout accumulator used while Building
//   - Runtime: the phase state machine
//   - Driver: type-erased view of a Runtime for code that does not know P
//
// # Errors
//
// Every phase violation wraps ErrProtocolViolation and every bad index wraps
// ErrIndexOutOfRange. The runtime itself returns these as errors; callers at
// a foreign-call boundary are expected to treat them as fatal (see
// internal/hostabi).
//
// # Thread Safety
//
// None. A Runtime assumes a single caller issuing one call at a time.
package animation

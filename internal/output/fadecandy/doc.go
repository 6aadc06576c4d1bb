// Package fadecandy is a player sink that sends frames to a fadecandy
// server over Open Pixel Control.
//
// Each layout strip is placed on an OPC channel at a pixel offset, as set in
// outputs.opc.strips. Strips without an entry are laid end to end on
// channel 0. Pixel values are read as 0xAARRGGBB; alpha is dropped.
//
// A lost connection is redialled at most every two seconds; frames in
// between fail fast with ErrNotConnected.
package fadecandy

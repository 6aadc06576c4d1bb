// Package panel serves a browser preview of the running animation.
//
// The page is a canvas that subscribes to the frame and params channels of
// the API's WebSocket and draws each strip as a row of pixels. Its files
// are embedded with go:embed; Handler can serve them from a directory
// instead while editing.
package panel

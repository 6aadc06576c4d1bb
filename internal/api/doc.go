// Package api implements the HTTP control API and WebSocket frame stream
// of the ledbetter host.
//
// This package provides:
//   - REST endpoints to inspect and retune the running animation
//   - Read and write access to stored layouts
//   - A WebSocket hub that streams frames and parameter changes
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// When security.jwt.secret is set, routes that change state (parameter
// writes, layout writes) require an HS256 bearer token minted with
// `ledbetter token`. Reads and the WebSocket stream are open.
//
// # Concurrency
//
// Handlers never touch the runtime directly: every read and write goes
// through control.Controller, which queues work onto the player goroutine.
package api

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ledbetter/internal/panel"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Browser preview (embedded static page driven by the WebSocket stream)
	r.Handle("/panel/*", http.StripPrefix("/panel", panel.Handler(s.cfg.PanelDir)))
	r.Handle("/panel", http.RedirectHandler("/panel/", http.StatusMovedPermanently))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/animation", s.handleGetAnimation)
		r.Get("/params", s.handleListParams)
		r.Get("/frame", s.handleGetFrame)
		r.Get("/ws", s.handleWebSocket)

		r.Route("/layouts", func(r chi.Router) {
			r.Get("/", s.handleListLayouts)
			r.Get("/{name}", s.handleGetLayout)
			r.With(s.authMiddleware).Put("/{name}", s.handlePutLayout)
			r.With(s.authMiddleware).Delete("/{name}", s.handleDeleteLayout)
		})

		// Routes that change state
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Put("/params/{name}", s.handleSetParam)
			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":    "ok",
		"version":   s.version,
		"animation": s.ctl.Animation(),
		"run_id":    s.ctl.RunID(),
		"frames":    s.ctl.Frames(),
	}
	if s.opcServer != nil {
		body["opc_server"] = s.opcServer.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}

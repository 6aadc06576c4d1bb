package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ledbetter/internal/audit"
	"github.com/nerrad567/ledbetter/internal/layout"
)

// handleListLayouts lists stored layouts.
func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	if s.layouts == nil {
		writeUnavailable(w, "layout store not configured")
		return
	}
	list, err := s.layouts.List(r.Context())
	if err != nil {
		s.logger.Error("listing layouts failed", "error", err)
		writeInternalError(w, "failed to list layouts")
		return
	}
	if list == nil {
		list = []layout.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"layouts": list,
		"count":   len(list),
	})
}

// handleGetLayout returns one stored layout.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	if s.layouts == nil {
		writeUnavailable(w, "layout store not configured")
		return
	}
	spec, err := s.layouts.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// handlePutLayout stores a layout under the name in the path. The running
// animation keeps its layout; a stored layout is used on the next start.
func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	if s.layouts == nil {
		writeUnavailable(w, "layout store not configured")
		return
	}

	var spec layout.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	spec.Name = chi.URLParam(r, "name")

	if err := s.layouts.Save(r.Context(), &spec); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("layout stored via API",
		"name", spec.Name,
		"strips", len(spec.Strips),
		"subject", r.Context().Value(ctxKeySubject),
	)
	s.auditLog(r, audit.ActionLayoutPut, spec.Name, map[string]any{
		"strips": len(spec.Strips),
		"pixels": spec.PixelCount(),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   spec.Name,
		"strips": len(spec.Strips),
		"pixels": spec.PixelCount(),
	})
}

// handleDeleteLayout removes a stored layout.
func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if s.layouts == nil {
		writeUnavailable(w, "layout store not configured")
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.layouts.Delete(r.Context(), name); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(r, audit.ActionLayoutDelete, name, nil)
	w.WriteHeader(http.StatusNoContent)
}

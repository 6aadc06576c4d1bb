package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ledbetter/internal/audit"
	"github.com/nerrad567/ledbetter/internal/catalog"
)

// Channels a WebSocket client can subscribe to.
const (
	ChannelFrame  = "frame"
	ChannelParams = "params"
)

// setParamRequest is the body of PUT /params/{name}.
type setParamRequest struct {
	Value *float64 `json:"value"`
}

// handleGetAnimation describes the running animation.
func (s *Server) handleGetAnimation(w http.ResponseWriter, r *http.Request) {
	params, err := s.ctl.Params(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      s.ctl.Animation(),
		"run_id":    s.ctl.RunID(),
		"frames":    s.ctl.Frames(),
		"params":    params,
		"available": catalog.Names(),
	})
}

// handleListParams returns every parameter with its current value.
func (s *Server) handleListParams(w http.ResponseWriter, r *http.Request) {
	params, err := s.ctl.Params(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"params": params,
		"count":  len(params),
	})
}

// handleSetParam writes one parameter and broadcasts the change.
func (s *Server) handleSetParam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req setParamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}

	p, err := s.ctl.SetParam(r.Context(), name, *req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.logger.Info("parameter set via API",
		"name", p.Name,
		"value", p.Value,
		"subject", r.Context().Value(ctxKeySubject),
	)
	s.auditLog(r, audit.ActionParamSet, p.Name, map[string]any{"value": p.Value})
	if s.hub != nil {
		s.hub.Broadcast(ChannelParams, p)
	}
	writeJSON(w, http.StatusOK, p)
}

// frameResponse is the body of GET /frame.
type frameResponse struct {
	Animation string     `json:"animation"`
	Frames    uint64     `json:"frames"`
	Shape     []int      `json:"shape"`
	Pixels    [][]uint32 `json:"pixels"`
}

// handleGetFrame returns the most recently rendered frame.
func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	px, err := s.ctl.Frame(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse{
		Animation: s.ctl.Animation(),
		Frames:    s.ctl.Frames(),
		Shape:     px.Shape(),
		Pixels:    px,
	})
}

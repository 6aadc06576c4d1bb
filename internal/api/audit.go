package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/ledbetter/internal/audit"
)

// auditChanSize bounds queued audit entries; beyond it entries are dropped.
const auditChanSize = 256

// auditLog queues an entry for the request's token subject. It never blocks
// the request: a full queue drops the entry with a warning.
func (s *Server) auditLog(r *http.Request, action, target string, details map[string]any) {
	if s.auditCh == nil {
		return
	}
	subject, _ := r.Context().Value(ctxKeySubject).(string) //nolint:errcheck // absent when auth is off

	entry := &audit.Entry{
		Action:    action,
		Target:    target,
		Subject:   subject,
		Source:    "api",
		Details:   details,
		CreatedAt: time.Now(),
	}
	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit queue full, dropping entry", "action", action, "target", target)
	}
}

// drainAuditLog writes queued entries one at a time until ctx ends, then
// flushes what is left.
func (s *Server) drainAuditLog(ctx context.Context) {
	write := func(e *audit.Entry) {
		if err := s.auditRepo.Create(context.Background(), e); err != nil {
			s.logger.Error("audit write failed", "action", e.Action, "target", e.Target, "error", err)
		}
	}
	for {
		select {
		case e := <-s.auditCh:
			write(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-s.auditCh:
					write(e)
				default:
					return
				}
			}
		}
	}
}

// handleListAudit returns recorded control actions, newest first.
//
// Query parameters: action, target, limit (default 50, max 200), offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeUnavailable(w, "audit log not configured")
		return
	}

	q := r.URL.Query()
	f := audit.Filter{Action: q.Get("action"), Target: q.Get("target")}
	for key, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, key+" must be an integer")
			return
		}
		*dst = n
	}

	res, err := s.auditRepo.List(r.Context(), f)
	if err != nil {
		s.logger.Error("listing audit entries failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

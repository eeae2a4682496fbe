package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerlink-dev/ledgerlink/internal/references"
	"github.com/ledgerlink-dev/ledgerlink/internal/version"
)

// handleHealthcheck is the liveness probe. The body is a fixed contract
// consumed by existing monitors; do not change it.
func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "I'm alive!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if err := s.db.QuickCheck(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Database health check failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]string{
		"status":  status,
		"service": "ledgerlink",
		"version": version.Version,
	})
}

// handleSync triggers a sync run. Without a reference query parameter every
// reference is synced; with one, only that reference.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if referenceID := r.URL.Query().Get("reference"); referenceID != "" {
		result := s.engine.SyncReference(ctx, referenceID)
		if errors.Is(result.Err, references.ErrReferenceNotFound) {
			s.writeError(w, http.StatusNotFound, "reference not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": []interface{}{result}})
		return
	}

	results, err := s.engine.SyncAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Batch sync failed")
		s.writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// handleListReferences returns every reference with its sync cursor.
func (s *Server) handleListReferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refs, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list references")
		s.writeError(w, http.StatusInternalServerError, "failed to list references")
		return
	}

	type referenceWithCursor struct {
		references.AccountReference
		Cursor *references.SyncCursor `json:"cursor,omitempty"`
	}

	out := make([]referenceWithCursor, 0, len(refs))
	for _, ref := range refs {
		cursor, err := s.repo.GetCursor(ctx, ref.ID)
		if err != nil {
			s.log.Error().Err(err).Str("reference", ref.Name).Msg("Failed to load cursor")
			s.writeError(w, http.StatusInternalServerError, "failed to load cursors")
			return
		}
		out = append(out, referenceWithCursor{AccountReference: ref, Cursor: cursor})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"references": out})
}

// handleGetReference returns one reference with its cursor and the health of
// the linked source item. Item lookup is best-effort; an upstream failure is
// reported as item_error instead of failing the request.
func (s *Server) handleGetReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ref, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, references.ErrReferenceNotFound) {
			s.writeError(w, http.StatusNotFound, "reference not found")
			return
		}
		s.log.Error().Err(err).Msg("Failed to load reference")
		s.writeError(w, http.StatusInternalServerError, "failed to load reference")
		return
	}

	cursor, err := s.repo.GetCursor(ctx, ref.ID)
	if err != nil {
		s.log.Error().Err(err).Str("reference", ref.Name).Msg("Failed to load cursor")
		s.writeError(w, http.StatusInternalServerError, "failed to load cursor")
		return
	}

	out := map[string]interface{}{
		"reference": ref,
		"cursor":    cursor,
	}

	if s.source != nil {
		item, err := s.source.GetItem(ctx, ref.SourceItemID)
		if err != nil {
			s.log.Warn().Err(err).Str("item_id", ref.SourceItemID).Msg("Item status lookup failed")
			out["item_error"] = "item status unavailable"
		} else {
			out["item"] = map[string]interface{}{
				"status":           item.Status,
				"execution_status": item.ExecutionStatus,
				"last_updated_at":  item.LastUpdatedAt,
			}
		}
	}

	s.writeJSON(w, http.StatusOK, out)
}

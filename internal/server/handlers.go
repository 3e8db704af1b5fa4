package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
	"github.com/tmarchal/pagegrid/pkg/grid"
	"github.com/tmarchal/pagegrid/pkg/registry"
	"github.com/tmarchal/pagegrid/pkg/store"
)

// recordKey scopes a page record to its owner. Two users customizing the
// same page never share a record.
func recordKey(username, pageKey string) string {
	return fmt.Sprintf("user:%s|%s", username, pageKey)
}

// pageAccess resolves the page and the caller's visible block set, writing
// the error response itself when access fails.
func (s *Server) pageAccess(w http.ResponseWriter, r *http.Request) (pageKey string, allowed map[string]struct{}, ok bool) {
	pageKey = chi.URLParam(r, "pageKey")
	if err := pgerrors.ValidatePageKey(pageKey); err != nil {
		writeError(w, http.StatusBadRequest, pgerrors.ErrCodeInvalidPageKey, pgerrors.UserMessage(err))
		return "", nil, false
	}

	user := userFrom(r.Context())
	allowed, known := s.registry.AllowedBlocks(pageKey, user.Grants())
	if !known {
		writeError(w, http.StatusNotFound, pgerrors.ErrCodePageNotFound, fmt.Sprintf("unknown page %q", pageKey))
		return "", nil, false
	}
	if len(allowed) == 0 {
		writeError(w, http.StatusForbidden, pgerrors.ErrCodeForbidden, "no access to page")
		return "", nil, false
	}
	return pageKey, allowed, true
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	pageKey, allowed, ok := s.pageAccess(w, r)
	if !ok {
		return
	}
	user := userFrom(r.Context())

	rec, err := s.store.Get(r.Context(), recordKey(user.Username, pageKey))
	if err != nil {
		s.logger.Error("load record", "user", user.Username, "page", pageKey, "err", err)
		writeError(w, http.StatusInternalServerError, pgerrors.ErrCodeStore, "failed to load layout")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, pgerrors.ErrCodeRecordNotFound, "no saved layout")
		return
	}

	writeJSON(w, http.StatusOK, sanitizeRecord(rec, pageKey, allowed))
}

// layoutPayload is the PUT request body.
type layoutPayload struct {
	Layout       grid.Set `json:"layout"`
	HiddenBlocks []string `json:"hiddenBlocks"`
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	pageKey, allowed, ok := s.pageAccess(w, r)
	if !ok {
		return
	}
	user := userFrom(r.Context())

	var payload layoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, pgerrors.ErrCodeInvalidLayout, "malformed layout body")
		return
	}

	pageBlocks, _ := s.registry.Page(pageKey)
	if err := validateBlocks(payload, pageBlocks); err != nil {
		writeError(w, http.StatusBadRequest, pgerrors.GetCode(err), pgerrors.UserMessage(err))
		return
	}

	rec := sanitizeRecord(&store.Record{
		Layout:       payload.Layout,
		HiddenBlocks: payload.HiddenBlocks,
	}, pageKey, allowed)

	stored, err := s.store.Put(r.Context(), recordKey(user.Username, pageKey), *rec)
	if err != nil {
		s.logger.Error("save record", "user", user.Username, "page", pageKey, "err", err)
		writeError(w, http.StatusInternalServerError, pgerrors.ErrCodeStore, "failed to save layout")
		return
	}

	s.logger.Info("layout saved", "user", user.Username, "page", pageKey)
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	pageKey, _, ok := s.pageAccess(w, r)
	if !ok {
		return
	}
	user := userFrom(r.Context())

	if err := s.store.Delete(r.Context(), recordKey(user.Username, pageKey)); err != nil {
		s.logger.Error("delete record", "user", user.Username, "page", pageKey, "err", err)
		writeError(w, http.StatusInternalServerError, pgerrors.ErrCodeStore, "failed to delete layout")
		return
	}

	s.logger.Info("layout reset", "user", user.Username, "page", pageKey)
	w.WriteHeader(http.StatusNoContent)
}

// validateBlocks rejects payloads referencing breakpoints or blocks the
// page does not have. Permission filtering happens later; an id that exists
// on the page but is invisible to the caller is not a client error.
func validateBlocks(payload layoutPayload, pageBlocks map[string]*registry.Requirement) error {
	for bp, items := range payload.Layout {
		if !bp.Valid() {
			return pgerrors.New(pgerrors.ErrCodeInvalidLayout, "unknown breakpoint %q", string(bp))
		}
		for _, item := range items {
			if err := pgerrors.ValidateBlockID(item.ID); err != nil {
				return err
			}
			if _, ok := pageBlocks[item.ID]; !ok {
				return pgerrors.New(pgerrors.ErrCodeInvalidBlock, "unknown block: %s", item.ID)
			}
		}
	}
	for _, id := range payload.HiddenBlocks {
		if err := pgerrors.ValidateBlockID(id); err != nil {
			return err
		}
		if _, ok := pageBlocks[id]; !ok {
			return pgerrors.New(pgerrors.ErrCodeInvalidBlock, "unknown block: %s", id)
		}
	}
	return nil
}

// sanitizeRecord normalizes a record against the caller's visible blocks:
// geometry is clamped and deduplicated per breakpoint, and blocks outside
// the visible set vanish from both layout and hidden list.
func sanitizeRecord(rec *store.Record, pageKey string, allowed map[string]struct{}) *store.Record {
	out := &store.Record{
		PageKey:   pageKey,
		Layout:    make(grid.Set, len(rec.Layout)),
		UpdatedAt: rec.UpdatedAt,
	}
	for _, bp := range grid.Breakpoints {
		items, present := rec.Layout[bp]
		if !present {
			continue
		}
		out.Layout[bp] = grid.Normalize(items, bp.Columns(), allowed)
	}

	out.HiddenBlocks = make([]string, 0, len(rec.HiddenBlocks))
	seen := make(map[string]struct{}, len(rec.HiddenBlocks))
	for _, id := range rec.HiddenBlocks {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.HiddenBlocks = append(out.HiddenBlocks, id)
	}
	return out
}

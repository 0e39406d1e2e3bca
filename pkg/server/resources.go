package server

import (
	"net/http"

	"github.com/jala-community/jala-match/pkg/store"
)

// resourceHandler serves one entity collection: GET lists, POST creates,
// PATCH merges by id, DELETE removes by id.
func (s *Server) resourceHandler(kind store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleList(w, r, kind)
		case http.MethodPost:
			s.handleCreate(w, r, kind)
		case http.MethodPatch:
			s.handlePatch(w, r, kind)
		case http.MethodDelete:
			s.handleDelete(w, r, kind)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, kind store.Kind) {
	records, err := s.store.List(r.Context(), kind)
	if err != nil {
		s.fail(w, err)
		return
	}

	// Musicians are wrapped, the other collections are bare arrays.
	if kind == store.KindMusicians {
		writeJSON(w, http.StatusOK, map[string]any{"musicians": records})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, kind store.Kind) {
	payload := store.Record{}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.store.Append(r.Context(), kind, payload)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request, kind store.Kind) {
	body := store.Record{}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, _ := body["id"].(string)
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	delete(body, "id")

	updated, err := s.store.Patch(r.Context(), kind, id, body)
	if err != nil {
		s.fail(w, err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, kind store.Kind) {
	id := r.URL.Query().Get("id")
	if id == "" {
		body := store.Record{}
		if err := decodeBody(r, &body); err == nil {
			id, _ = body["id"].(string)
		}
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	removed, err := s.store.Remove(r.Context(), kind, id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

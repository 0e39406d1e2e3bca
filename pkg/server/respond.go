package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jala-community/jala-match/pkg/payments"
	"github.com/jala-community/jala-match/pkg/store"
)

// errorResponse mirrors the API's error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail translates an error into its HTTP status per the taxonomy:
// validation 400, bad signature 400, config or backend failure 500.
// Unexpected errors never crash the process; they surface as a 500 with
// the error's message.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payments.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payments.ErrSignatureInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConfigMissing):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody parses a JSON request body into dst. An empty body is not
// an error; handlers validate required fields themselves.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

package server

import (
	"errors"
	"net/http"

	"github.com/MrMark1127/arma-tactical/internal/auth"
	"github.com/MrMark1127/arma-tactical/internal/ballistics"
	"github.com/MrMark1127/arma-tactical/internal/grid"
	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/goccy/go-json"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStorageError maps domain error sentinels onto HTTP statuses.
func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrPermission):
		writeError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, core.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrExpiredToken):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ballistics.ErrChargeOutOfRange), errors.Is(err, grid.ErrMalformedReference):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

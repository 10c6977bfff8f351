package server

import (
	"net/http"
	"strings"

	"github.com/MrMark1127/arma-tactical/internal/auth"
	"github.com/MrMark1127/arma-tactical/pkg/core"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	user, err := s.backend.CreateUser(req.Username, hash)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	s.logger.Info("User registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, hash, err := s.backend.GetUserByUsername(req.Username)
	if err != nil {
		// Same reply as a bad password so usernames cannot be probed.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := auth.CheckPassword(hash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	s.logger.Info("User logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the request body for POST /api/auth/register and
// POST /api/auth/login.
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func handleRegister(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.Password == "" {
			writeError(w, codeValidation, "name and password are required")
			return
		}
		if len(req.Name) > 64 {
			writeError(w, codeValidation, "name must be at most 64 characters")
			return
		}
		if len(req.Password) < 8 {
			writeError(w, codeValidation, "password must be at least 8 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		userID, err := store.CreateUser(r.Context(), req.Name, string(hash))
		if errors.Is(err, ErrDuplicate) {
			writeError(w, codeValidation, "name is already taken")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		token, err := store.CreateSession(r.Context(), userID)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		writeData(w, http.StatusCreated, AuthResponse{
			Token:    token,
			UserID:   userID,
			UserName: req.Name,
		})
	}
}

func handleLogin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.Password == "" {
			writeError(w, codeValidation, "name and password are required")
			return
		}

		userID, passwordHash, err := store.UserCredentials(r.Context(), req.Name)
		if errors.Is(err, ErrNotFound) {
			writeError(w, codeAuth, "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			writeError(w, codeAuth, "invalid credentials")
			return
		}

		token, err := store.CreateSession(r.Context(), userID)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		writeData(w, http.StatusOK, AuthResponse{
			Token:    token,
			UserID:   userID,
			UserName: req.Name,
		})
	}
}

func handleLogout(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(auth, "Bearer ")
		if found && token != "" {
			store.DeleteSession(r.Context(), token)
		}
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

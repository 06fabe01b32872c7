package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

// Game catalog management. Only admins may change the catalog; score type
// identifiers are immutable contract with stored records, so updates
// replace the whole definition and the admin owns the compatibility.

func handleAdminListGames(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.ListGames(r.Context())
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		if games == nil {
			games = []puzzle.Game{}
		}
		writeData(w, http.StatusOK, games)
	}
}

func handleAdminCreateGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var game puzzle.Game
		if err := readJSON(r, &game); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}
		if msg := validateGame(&game); msg != "" {
			writeError(w, codeValidation, msg)
			return
		}

		game.ID = uuid.NewString()
		if err := store.PutGame(r.Context(), game); err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		writeData(w, http.StatusCreated, game)
	}
}

func handleAdminUpdateGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if _, err := store.GetGame(r.Context(), gameID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, codeNotFound, "game not found")
				return
			}
			writeError(w, codeInternal, "internal error")
			return
		}

		var game puzzle.Game
		if err := readJSON(r, &game); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}
		if msg := validateGame(&game); msg != "" {
			writeError(w, codeValidation, msg)
			return
		}

		game.ID = gameID
		if err := store.PutGame(r.Context(), game); err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		writeData(w, http.StatusOK, game)
	}
}

func handleAdminDeleteGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		err := store.DeleteGame(r.Context(), gameID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, codeNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func validateGame(game *puzzle.Game) string {
	game.Name = strings.TrimSpace(game.Name)
	if game.Name == "" {
		return "name is required"
	}
	if len(game.ScoreTypes) == 0 {
		return "scoreTypes must declare at least one puzzle"
	}
	for pk, fields := range game.ScoreTypes {
		if len(fields) == 0 {
			return "puzzle " + pk + " must declare at least one score field"
		}
		for field, max := range fields {
			if max != puzzle.NoMaximum && max <= 0 {
				return "score field " + field + " must have a positive maximum or -1"
			}
		}
	}
	if game.ResetTime == "" {
		game.ResetTime = "00:00"
	}
	return ""
}

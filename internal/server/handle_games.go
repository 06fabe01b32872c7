package server

import (
	"net/http"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

func handleListGames(store Store) http.HandlerFunc {
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

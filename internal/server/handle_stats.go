package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playstreak/puzzlelog/internal/puzzle"
	"github.com/playstreak/puzzlelog/internal/ratelimit"
)

const (
	statsLimit  = 30
	statsWindow = 60 * time.Second
)

// StatsResponse bundles aggregates and streaks for one user and game.
// FlaggedRecordIDs names records excluded for unparseable timestamps.
type StatsResponse struct {
	GameID           string           `json:"gameId"`
	Stats            puzzle.GameStats `json:"stats"`
	Streaks          puzzle.Streaks   `json:"streaks"`
	FlaggedRecordIDs []string         `json:"flaggedRecordIds,omitempty"`
}

func handleStats(store Store, limiter *ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := limitKey(r, "stats")
		if !limiter.Allow(key, statsLimit, statsWindow) {
			retry := limiter.TimeUntilNext(key, statsLimit, statsWindow)
			writeThrottled(w, int(math.Ceil(retry.Seconds())))
			return
		}

		gameID := chi.URLParam(r, "gameID")
		game, err := store.GetGame(r.Context(), gameID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, codeNotFound, "game not found")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		var loc *time.Location
		if tz := r.URL.Query().Get("timezone"); tz != "" {
			loc, err = time.LoadLocation(tz)
			if err != nil {
				writeError(w, codeValidation, "unknown timezone")
				return
			}
		}

		sess := userFrom(r)
		records, err := store.UserGameRecords(r.Context(), sess.UserID, gameID)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		field := r.URL.Query().Get("field")
		stats, flaggedStats := puzzle.ComputeStats(records, game, field, loc)
		streaks, flaggedStreaks := puzzle.ComputeStreaks(records, game, time.Now(), loc)

		writeData(w, http.StatusOK, StatsResponse{
			GameID:           gameID,
			Stats:            stats,
			Streaks:          streaks,
			FlaggedRecordIDs: mergeFlagged(flaggedStats, flaggedStreaks),
		})
	}
}

// mergeFlagged deduplicates flagged record IDs from the two computations,
// preserving first-seen order.
func mergeFlagged(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, id := range append(a, b...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

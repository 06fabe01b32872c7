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
	leaderboardRateLimit = 30
	leaderboardWindow    = 60 * time.Second

	authedLimitCeiling = 100
	anonLimitCeiling   = 500
)

// RankResponse is the response for GET /api/leaderboard/{gameID}/rank.
// Rank is 1-based; -1 means the user has no ranked records for the game.
type RankResponse struct {
	GameID string                   `json:"gameId"`
	Rank   int                      `json:"rank"`
	Entry  *puzzle.LeaderboardEntry `json:"entry,omitempty"`
}

func handleLeaderboard(store Store, limiter *ratelimit.Limiter, cache *leaderboardCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := limitKey(r, "leaderboard")
		if !limiter.Allow(key, leaderboardRateLimit, leaderboardWindow) {
			retry := limiter.TimeUntilNext(key, leaderboardRateLimit, leaderboardWindow)
			writeThrottled(w, int(math.Ceil(retry.Seconds())))
			return
		}

		gameID := chi.URLParam(r, "gameID")
		if _, err := store.GetGame(r.Context(), gameID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, codeNotFound, "game not found")
				return
			}
			writeError(w, codeInternal, "internal error")
			return
		}

		sess, authed := maybeUserFrom(r)

		ceiling := anonLimitCeiling
		if authed {
			ceiling = authedLimitCeiling
		}
		limit := clamp(parseIntParam(r, "limit", 50), 1, ceiling)
		offset := parseIntParam(r, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		var since *time.Time
		if raw := r.URL.Query().Get("since"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, codeValidation, "since must be RFC 3339")
				return
			}
			since = &t
		}

		filter := r.URL.Query().Get("filter")
		if filter != "" && filter != "following" {
			writeError(w, codeValidation, "filter must be \"following\"")
			return
		}
		if filter == "following" && !authed {
			writeError(w, codeAuth, "filter=following requires authentication")
			return
		}

		// Only the plain full board is cacheable; since and filter produce
		// caller-specific rankings.
		cacheable := since == nil && filter == ""

		var entries []puzzle.LeaderboardEntry
		if cacheable {
			if cached, ok := cache.get(r.Context(), leaderboardKey(gameID)); ok {
				entries = cached
			}
		}

		if entries == nil {
			rows, err := store.GameRows(r.Context(), gameID)
			if err != nil {
				writeError(w, codeInternal, "internal error")
				return
			}

			if filter == "following" {
				followingIDs, err := store.FollowingIDs(r.Context(), sess.UserID)
				if err != nil {
					writeError(w, codeInternal, "internal error")
					return
				}
				rows = filterRows(rows, followingIDs, sess.UserID)
			}

			entries = puzzle.Rank(rows, 0, since)
			if cacheable {
				cache.set(r.Context(), leaderboardKey(gameID), entries)
			}
		}

		page := pageOf(entries, limit, offset)
		writeList(w, page, len(entries), limit, offset)
	}
}

func handleAllLeaderboards(store Store, limiter *ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := limitKey(r, "leaderboard")
		if !limiter.Allow(key, leaderboardRateLimit, leaderboardWindow) {
			retry := limiter.TimeUntilNext(key, leaderboardRateLimit, leaderboardWindow)
			writeThrottled(w, int(math.Ceil(retry.Seconds())))
			return
		}

		_, authed := maybeUserFrom(r)
		ceiling := anonLimitCeiling
		if authed {
			ceiling = authedLimitCeiling
		}
		limit := clamp(parseIntParam(r, "limit", 10), 1, ceiling)

		var since *time.Time
		if raw := r.URL.Query().Get("since"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, codeValidation, "since must be RFC 3339")
				return
			}
			since = &t
		}

		rows, err := store.AllRows(r.Context())
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		boards, err := puzzle.RankAllGames(r.Context(), rows, limit, since)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		if boards == nil {
			boards = map[string][]puzzle.LeaderboardEntry{}
		}
		writeData(w, http.StatusOK, boards)
	}
}

func handleUserRank(store Store, limiter *ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := limitKey(r, "leaderboard")
		if !limiter.Allow(key, leaderboardRateLimit, leaderboardWindow) {
			retry := limiter.TimeUntilNext(key, leaderboardRateLimit, leaderboardWindow)
			writeThrottled(w, int(math.Ceil(retry.Seconds())))
			return
		}

		gameID := chi.URLParam(r, "gameID")
		sess := userFrom(r)

		rows, err := store.GameRows(r.Context(), gameID)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		rank, entry := puzzle.UserRanking(rows, sess.UserID)
		writeData(w, http.StatusOK, RankResponse{
			GameID: gameID,
			Rank:   rank,
			Entry:  entry,
		})
	}
}

// filterRows keeps rows from the followed users plus the caller's own.
func filterRows(rows []puzzle.RecordRow, followingIDs []string, selfID string) []puzzle.RecordRow {
	keep := make(map[string]struct{}, len(followingIDs)+1)
	for _, id := range followingIDs {
		keep[id] = struct{}{}
	}
	keep[selfID] = struct{}{}

	out := rows[:0:0]
	for _, row := range rows {
		if _, ok := keep[row.UserID]; ok {
			out = append(out, row)
		}
	}
	return out
}

func pageOf(entries []puzzle.LeaderboardEntry, limit, offset int) []puzzle.LeaderboardEntry {
	if offset >= len(entries) {
		return []puzzle.LeaderboardEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

// RecordRequest is the request body for POST /api/records. Exactly one of
// ShareTexts and Scores must be provided: share texts are parsed and
// reduced, manual scores are validated against the game's score types.
type RecordRequest struct {
	GameID     string          `json:"gameId"`
	ShareTexts []string        `json:"shareTexts,omitempty"`
	Scores     puzzle.ScoreMap `json:"scores,omitempty"`
	Failed     bool            `json:"failed,omitempty"`

	// CreatedAt is RFC 3339 and defaults to the server clock. Timezone is
	// an IANA name used for day assignment of asynchronous games.
	CreatedAt string `json:"createdAt,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// BulkRecordsRequest is the request body for POST /api/records/bulk.
type BulkRecordsRequest struct {
	Records []RecordRequest `json:"records"`
}

// BulkRecordsResponse reports per-item outcomes. Saves are sequential and
// at-least-once: a failure mid-batch does not roll back earlier saves.
type BulkRecordsResponse struct {
	Saved  int             `json:"saved"`
	Failed []BulkItemError `json:"failed,omitempty"`
}

type BulkItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

func handleCreateRecord(store Store, broker *Broker, cache *leaderboardCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}

		sess := userFrom(r)
		rec, code, msg := saveRecord(r, store, sess, req)
		if code != "" {
			writeError(w, code, msg)
			return
		}

		notifyFollowers(r, store, broker, sess, rec)
		cache.invalidate(r.Context(), rec.GameID)

		writeData(w, http.StatusCreated, rec)
	}
}

// handleBulkRecords imports a batch, typically a history backfill. Bulk
// saves skip follower notifications.
func handleBulkRecords(store Store, cache *leaderboardCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulkRecordsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}
		if len(req.Records) == 0 {
			writeError(w, codeValidation, "records must not be empty")
			return
		}
		if len(req.Records) > 100 {
			writeError(w, codeValidation, "at most 100 records per batch")
			return
		}

		sess := userFrom(r)
		resp := BulkRecordsResponse{}
		touched := map[string]struct{}{}
		for i, item := range req.Records {
			rec, code, msg := saveRecord(r, store, sess, item)
			if code != "" {
				resp.Failed = append(resp.Failed, BulkItemError{Index: i, Error: msg})
				continue
			}
			resp.Saved++
			touched[rec.GameID] = struct{}{}
		}

		for gameID := range touched {
			cache.invalidate(r.Context(), gameID)
		}

		writeData(w, http.StatusOK, resp)
	}
}

// saveRecord validates, builds, and upserts one record under the
// one-per-user-per-game-per-day rule. It returns an error code and
// message instead of writing, so the bulk path can collect failures.
func saveRecord(r *http.Request, store Store, sess userSession, req RecordRequest) (puzzle.GameRecord, string, string) {
	if req.GameID == "" {
		return puzzle.GameRecord{}, codeValidation, "gameId is required"
	}

	game, err := store.GetGame(r.Context(), req.GameID)
	if errors.Is(err, ErrNotFound) {
		return puzzle.GameRecord{}, codeNotFound, "game not found"
	}
	if err != nil {
		return puzzle.GameRecord{}, codeInternal, "internal error"
	}

	if len(req.ShareTexts) > 0 && len(req.Scores) > 0 {
		return puzzle.GameRecord{}, codeValidation, "provide shareTexts or scores, not both"
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != "" {
		createdAt, err = time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			return puzzle.GameRecord{}, codeValidation, "createdAt must be RFC 3339"
		}
		createdAt = createdAt.UTC()
	}

	var loc *time.Location
	if req.Timezone != "" {
		loc, err = time.LoadLocation(req.Timezone)
		if err != nil {
			return puzzle.GameRecord{}, codeValidation, "unknown timezone"
		}
	}

	rec := puzzle.GameRecord{
		GameID:    game.ID,
		UserID:    sess.UserID,
		CreatedAt: createdAt.Format(time.RFC3339),
	}

	switch {
	case len(req.ShareTexts) > 0:
		entries := make([]puzzle.ShareTextEntry, 0, len(req.ShareTexts))
		allFailed := true
		for _, raw := range req.ShareTexts {
			entry, err := puzzle.GuessGridParser{}.Parse(raw)
			if err != nil {
				return puzzle.GameRecord{}, codeValidation, "unrecognized share text"
			}
			entries = append(entries, entry)
			allFailed = allFailed && entry.Failed
		}
		scores, err := puzzle.Reduce(entries)
		if err != nil {
			return puzzle.GameRecord{}, codeValidation, err.Error()
		}
		rec.Scores = scores
		rec.Failed = game.IsFailable && allFailed
		rec.Metadata = puzzle.RecordMetadata{ShareTexts: entries}

	case len(req.Scores) > 0:
		if msg := validateScores(req.Scores, game); msg != "" {
			return puzzle.GameRecord{}, codeValidation, msg
		}
		rec.Scores = req.Scores
		rec.Failed = game.IsFailable && req.Failed

	default:
		// A bare "I played" record. Only the failed flag carries signal.
		rec.Failed = game.IsFailable && req.Failed
	}

	playedDay := puzzle.PlayedDate(createdAt, game, loc)

	// Same-day resubmission replaces the existing record wholesale and
	// keeps its ID.
	existingID, err := store.RecordIDForDay(r.Context(), sess.UserID, game.ID, playedDay)
	if err != nil {
		return puzzle.GameRecord{}, codeInternal, "internal error"
	}
	if existingID != "" {
		rec.ID = existingID
	} else {
		rec.ID = uuid.NewString()
	}

	if err := store.PutRecord(r.Context(), rec, playedDay); err != nil {
		return puzzle.GameRecord{}, codeInternal, "internal error"
	}
	return rec, "", ""
}

// validateScores checks a manual submission against the game's declared
// score types: every field must be declared, and bounded fields must fall
// in [0, max].
func validateScores(scores puzzle.ScoreMap, game puzzle.Game) string {
	maxima := map[string]float64{}
	for _, fields := range game.ScoreTypes {
		for field, max := range fields {
			maxima[field] = max
		}
	}

	for puzzleKey, fields := range scores {
		if len(fields) == 0 {
			return fmt.Sprintf("puzzle %q has no score fields", puzzleKey)
		}
		for field, v := range fields {
			max, ok := maxima[field]
			if !ok {
				return fmt.Sprintf("unknown score field %q", field)
			}
			if v < 0 {
				return fmt.Sprintf("score field %q must not be negative", field)
			}
			if max != puzzle.NoMaximum && v > max {
				return fmt.Sprintf("score field %q exceeds maximum %s", field,
					strconv.FormatFloat(max, 'f', -1, 64))
			}
		}
	}
	return ""
}

// notifyFollowers publishes a record_logged event to everyone following
// the author. Best effort; a failed lookup only skips the fan-out.
func notifyFollowers(r *http.Request, store Store, broker *Broker, sess userSession, rec puzzle.GameRecord) {
	followerIDs, err := store.FollowerIDs(r.Context(), sess.UserID)
	if err != nil || len(followerIDs) == 0 {
		return
	}
	broker.PublishAll(followerIDs, ActivityEvent{
		Type:     "record_logged",
		UserID:   sess.UserID,
		UserName: sess.UserName,
		GameID:   rec.GameID,
		Failed:   rec.Failed,
	})
}

func handleListRecords(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameId")
		if gameID == "" {
			writeError(w, codeValidation, "gameId query parameter is required")
			return
		}

		limit := parseIntParam(r, "limit", 50)
		offset := parseIntParam(r, "offset", 0)
		limit = clamp(limit, 1, 100)
		if offset < 0 {
			offset = 0
		}

		sess := userFrom(r)
		records, total, err := store.ListRecords(r.Context(), sess.UserID, gameID, limit, offset)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		if records == nil {
			records = []puzzle.GameRecord{}
		}
		writeList(w, records, total, limit, offset)
	}
}

// handleDeleteRecord removes one of the caller's own records. The cached
// leaderboard is left to expire on its own TTL.
func handleDeleteRecord(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		sess := userFrom(r)

		err := store.DeleteRecord(r.Context(), recordID, sess.UserID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, codeNotFound, "record not found")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playstreak/puzzlelog/internal/ratelimit"
)

const (
	followLimit  = 5
	followWindow = 60 * time.Second
)

// FollowRequest is the request body for POST /api/follow.
type FollowRequest struct {
	TargetUserID string `json:"targetUserId"`
}

func handleFollow(store Store, broker *Broker, limiter *ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := userFrom(r)

		key := limitKey(r, "follow")
		if !limiter.Allow(key, followLimit, followWindow) {
			retry := limiter.TimeUntilNext(key, followLimit, followWindow)
			writeThrottled(w, int(math.Ceil(retry.Seconds())))
			return
		}

		var req FollowRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, codeValidation, "invalid request body")
			return
		}
		if req.TargetUserID == "" {
			writeError(w, codeValidation, "targetUserId is required")
			return
		}
		if req.TargetUserID == sess.UserID {
			writeError(w, codeValidation, "cannot follow yourself")
			return
		}

		exists, err := store.UserExists(r.Context(), req.TargetUserID)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		if !exists {
			writeError(w, codeNotFound, "user not found")
			return
		}

		err = store.Follow(r.Context(), sess.UserID, req.TargetUserID)
		if errors.Is(err, ErrDuplicate) {
			writeError(w, codeValidation, "already following this user")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}

		broker.Publish(req.TargetUserID, ActivityEvent{
			Type:     "new_follower",
			UserID:   sess.UserID,
			UserName: sess.UserName,
		})

		writeData(w, http.StatusCreated, map[string]string{"status": "following"})
	}
}

func handleUnfollow(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := userFrom(r)
		targetID := chi.URLParam(r, "targetUserID")

		err := store.Unfollow(r.Context(), sess.UserID, targetID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, codeNotFound, "not following this user")
			return
		}
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		writeData(w, http.StatusOK, map[string]string{"status": "unfollowed"})
	}
}

func handleListFollowing(store Store) http.HandlerFunc {
	return handleFollowListing(store, Store.ListFollowing)
}

func handleListFollowers(store Store) http.HandlerFunc {
	return handleFollowListing(store, Store.ListFollowers)
}

func handleFollowListing(store Store, list func(Store, context.Context, string, int, int) ([]UserInfo, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := userFrom(r)

		limit := clamp(parseIntParam(r, "limit", 50), 1, 100)
		offset := parseIntParam(r, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		users, total, err := list(store, r.Context(), sess.UserID, limit, offset)
		if err != nil {
			writeError(w, codeInternal, "internal error")
			return
		}
		writeList(w, users, total, limit, offset)
	}
}

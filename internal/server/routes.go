package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playstreak/puzzlelog/internal/ratelimit"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, db *sql.DB, rdb *redis.Client) {
	broker := NewBroker()
	limiter := ratelimit.New()
	cache := newLeaderboardCache(rdb, logger)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("PuzzleLog API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))

	r.Post("/api/auth/register", handleRegister(store))
	r.Post("/api/auth/login", handleLogin(store))
	r.Post("/api/auth/logout", handleLogout(store))

	r.Get("/api/games", handleListGames(store))

	// Event stream authenticates via token query parameter.
	r.Get("/api/events", handleEvents(store, broker))

	// Authenticated user surface.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(store))

		r.Post("/api/records", handleCreateRecord(store, broker, cache))
		r.Post("/api/records/bulk", handleBulkRecords(store, cache))
		r.Get("/api/records", handleListRecords(store))
		r.Delete("/api/records/{recordID}", handleDeleteRecord(store))

		r.Get("/api/stats/{gameID}", handleStats(store, limiter))

		r.Post("/api/follow", handleFollow(store, broker, limiter))
		r.Delete("/api/follow/{targetUserID}", handleUnfollow(store))
		r.Get("/api/following", handleListFollowing(store))
		r.Get("/api/followers", handleListFollowers(store))

		r.Get("/api/leaderboard/{gameID}/rank", handleUserRank(store, limiter))
	})

	// Leaderboards are public; auth tightens the limit ceiling and
	// unlocks filter=following.
	r.Group(func(r chi.Router) {
		r.Use(optionalAuthMiddleware(store))

		r.Get("/api/leaderboard", handleAllLeaderboards(store, limiter))
		r.Get("/api/leaderboard/{gameID}", handleLeaderboard(store, limiter, cache))
	})

	// Admin surface uses cookie sessions.
	r.Post("/api/admin/login", handleAdminLogin(store))
	r.Post("/api/admin/logout", handleAdminLogout(store))

	r.Group(func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))

		r.Get("/api/admin/me", handleAdminMe())
		r.Route("/api/admin/games", func(r chi.Router) {
			r.Get("/", handleAdminListGames(store))
			r.Post("/", handleAdminCreateGame(store))
			r.Put("/{gameID}", handleAdminUpdateGame(store))
			r.Delete("/{gameID}", handleAdminDeleteGame(store))
		})
	})
}

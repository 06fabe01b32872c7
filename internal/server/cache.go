package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

const leaderboardTTL = 60 * time.Second

// leaderboardCache keeps ranked leaderboards in Redis so repeated reads
// skip the full re-rank. A nil client disables caching, and Redis errors
// always fall through to the database path.
type leaderboardCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func newLeaderboardCache(rdb *redis.Client, logger *slog.Logger) *leaderboardCache {
	return &leaderboardCache{rdb: rdb, logger: logger}
}

func (c *leaderboardCache) get(ctx context.Context, key string) ([]puzzle.LeaderboardEntry, bool) {
	if c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("leaderboard cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var entries []puzzle.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *leaderboardCache) set(ctx context.Context, key string, entries []puzzle.LeaderboardEntry) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, leaderboardTTL).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
}

// invalidate drops the cached board for a game after a record write.
func (c *leaderboardCache) invalidate(ctx context.Context, gameID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, leaderboardKey(gameID)).Err(); err != nil {
		c.logger.Warn("leaderboard cache invalidation failed", "gameId", gameID, "error", err)
	}
}

func leaderboardKey(gameID string) string {
	return "leaderboard:" + gameID
}

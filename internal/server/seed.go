package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

// SeedDemo populates an empty catalog with demo games, users, and an
// admin account. Idempotent: does nothing if games already exist.
func SeedDemo(ctx context.Context, logger *slog.Logger, store *DocStore) error {
	existing, err := store.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, g := range demoGames() {
		if err := store.PutGame(ctx, g); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, name := range []string{"alice", "bob"} {
		if _, err := store.CreateUser(ctx, name, string(hash)); err != nil {
			return err
		}
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := store.CreateAdmin(ctx, "admin@puzzlelog.app", string(adminHash)); err != nil {
		return err
	}

	logger.Info("demo catalog seeded")
	return nil
}

// demoGames covers the three catalog shapes: a guess-bounded failable
// daily, a multi-puzzle session game, and an unbounded non-failable one.
func demoGames() []puzzle.Game {
	return []puzzle.Game{
		{
			ID:   "wordle",
			Name: "Wordle",
			ScoreTypes: map[string]map[string]float64{
				"puzzle1": {"attempts": 6},
			},
			IsFailable: true,
			ResetTime:  "00:00",
			ScoreDistributionConfig: map[string][]float64{
				"attempts": {1, 3, 5},
			},
		},
		{
			ID:   "triplet",
			Name: "Triplet",
			ScoreTypes: map[string]map[string]float64{
				"puzzle1": {"attempts": 8},
				"puzzle2": {"attempts": 8},
				"puzzle3": {"attempts": 8},
			},
			IsFailable: true,
			ResetTime:  "04:00",
		},
		{
			ID:   "dailycross",
			Name: "Daily Cross",
			ScoreTypes: map[string]map[string]float64{
				"puzzle1": {"seconds": puzzle.NoMaximum},
			},
			IsFailable:     false,
			ResetTime:      "00:00",
			IsAsynchronous: true,
		},
	}
}

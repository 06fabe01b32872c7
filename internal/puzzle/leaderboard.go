package puzzle

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// RecordRow joins a stored record to its owner's display identity, the
// shape leaderboard aggregation consumes.
type RecordRow struct {
	RecordID  string
	GameID    string
	UserID    string
	UserName  string
	Failed    bool
	Scores    ScoreMap
	CreatedAt string
}

// LeaderboardEntry is one ranked user in a game's leaderboard.
type LeaderboardEntry struct {
	UserID        string   `json:"userId"`
	UserName      string   `json:"userName"`
	TotalPlayed   int      `json:"totalPlayed"`
	TotalWins     int      `json:"totalWins"`
	WinRate       float64  `json:"winRate"`
	AverageScore  *float64 `json:"averageScore,omitempty"`
	CurrentStreak int      `json:"currentStreak"`
	MaxStreak     int      `json:"maxStreak"`
}

// MaxRankingLimit caps the "unbounded" ranking used by UserRanking.
const MaxRankingLimit = 10000

// rankFanOutLimit bounds how many per-game aggregations run concurrently.
const rankFanOutLimit = 8

// Rank aggregates rows into a ranked leaderboard. Rows at or after since
// qualify (inclusive lower bound, no upper bound); a nil since keeps all.
// Entries sort by total wins descending, then win rate descending, then
// user ID ascending so equal users order deterministically. limit <= 0
// means MaxRankingLimit.
//
// Leaderboard streaks are computed from raw UTC calendar dates with no
// reset-time/timezone adjustment, unlike the per-user StreakCalculator.
// This mismatch is inherited source behavior, kept on purpose; whether the
// leaderboard should honor per-game reset policy is an open product
// question.
func Rank(rows []RecordRow, limit int, since *time.Time) []LeaderboardEntry {
	type userAgg struct {
		entry  LeaderboardEntry
		scores []float64
		days   map[int]struct{}
	}

	users := make(map[string]*userAgg)
	for _, row := range rows {
		t, err := time.Parse(time.RFC3339, row.CreatedAt)
		if err != nil {
			// Rows without a usable timestamp cannot be windowed or
			// assigned a calendar date; they are left out of the ranking.
			continue
		}
		if since != nil && t.Before(*since) {
			continue
		}

		agg := users[row.UserID]
		if agg == nil {
			agg = &userAgg{
				entry: LeaderboardEntry{UserID: row.UserID, UserName: row.UserName},
				days:  make(map[int]struct{}),
			}
			users[row.UserID] = agg
		}

		agg.entry.TotalPlayed++
		if !row.Failed {
			agg.entry.TotalWins++
			if v, ok := firstScore(row.Scores); ok {
				agg.scores = append(agg.scores, v)
			}
		}

		ut := t.UTC()
		y, m, d := ut.Date()
		agg.days[int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()/86400)] = struct{}{}
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, agg := range users {
		e := agg.entry
		if e.TotalPlayed > 0 {
			e.WinRate = float64(e.TotalWins) / float64(e.TotalPlayed) * 100
		}
		if len(agg.scores) > 0 {
			var sum float64
			for _, v := range agg.scores {
				sum += v
			}
			avg := sum / float64(len(agg.scores))
			e.AverageScore = &avg
		}
		e.CurrentStreak, e.MaxStreak = dayStreaks(agg.days)
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalWins != b.TotalWins {
			return a.TotalWins > b.TotalWins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.UserID < b.UserID
	})

	if limit <= 0 || limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// RankAllGames discovers the distinct games in rows and ranks each
// independently, in parallel. Games with zero qualifying entries are
// dropped. All sub-aggregations complete before the result is returned.
func RankAllGames(ctx context.Context, rows []RecordRow, limit int, since *time.Time) (map[string][]LeaderboardEntry, error) {
	byGame := make(map[string][]RecordRow)
	for _, row := range rows {
		byGame[row.GameID] = append(byGame[row.GameID], row)
	}

	var mu sync.Mutex
	boards := make(map[string][]LeaderboardEntry, len(byGame))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(rankFanOutLimit)
	for gameID, gameRows := range byGame {
		g.Go(func() error {
			entries := Rank(gameRows, limit, since)
			if len(entries) == 0 {
				return nil
			}
			mu.Lock()
			boards[gameID] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return boards, nil
}

// UserRanking runs the full ranking and locates userID's 1-based position.
// A user with no qualifying rows gets rank -1 and a nil entry; absence is
// not an error.
func UserRanking(rows []RecordRow, userID string) (int, *LeaderboardEntry) {
	entries := Rank(rows, MaxRankingLimit, nil)
	for i := range entries {
		if entries[i].UserID == userID {
			return i + 1, &entries[i]
		}
	}
	return -1, nil
}

// firstScore picks the row's raw score value: the first field of the first
// puzzle key in sorted order, mirroring the designated-field convention.
func firstScore(scores ScoreMap) (float64, bool) {
	for _, pk := range sortedKeys(scores) {
		for _, f := range sortedKeys(scores[pk]) {
			return scores[pk][f], true
		}
	}
	return 0, false
}

// dayStreaks returns the trailing consecutive-day run ending at the most
// recent day, and the longest run anywhere, over a set of distinct days.
func dayStreaks(daySet map[int]struct{}) (current, max int) {
	if len(daySet) == 0 {
		return 0, 0
	}
	days := make([]int, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Ints(days)

	current = 1
	for i := len(days) - 1; i > 0 && days[i-1] == days[i]-1; i-- {
		current++
	}

	run := 1
	max = 1
	for i := 1; i < len(days); i++ {
		if days[i-1] == days[i]-1 {
			run++
		} else {
			run = 1
		}
		if run > max {
			max = run
		}
	}
	return current, max
}

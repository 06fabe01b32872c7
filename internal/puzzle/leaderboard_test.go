package puzzle

import (
	"context"
	"testing"
	"time"
)

func row(userID, gameID, createdAt string, failed bool, attempts float64) RecordRow {
	r := RecordRow{
		RecordID:  userID + "-" + createdAt,
		GameID:    gameID,
		UserID:    userID,
		UserName:  "name-" + userID,
		Failed:    failed,
		CreatedAt: createdAt,
	}
	if !failed {
		r.Scores = ScoreMap{"puzzle1": {"attempts": attempts}}
	}
	return r
}

func TestRankSortsByWinsThenWinRate(t *testing.T) {
	rows := []RecordRow{
		// alice: 2 wins / 2 played (100%).
		row("alice", "wordle", "2025-06-09T12:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-10T12:00:00Z", false, 4),
		// bob: 2 wins / 3 played (66%).
		row("bob", "wordle", "2025-06-08T12:00:00Z", false, 2),
		row("bob", "wordle", "2025-06-09T12:00:00Z", false, 2),
		row("bob", "wordle", "2025-06-10T12:00:00Z", true, 0),
		// carol: 1 win.
		row("carol", "wordle", "2025-06-10T12:00:00Z", false, 6),
	}

	entries := Rank(rows, 10, nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 0; i < len(entries)-1; i++ {
		a, b := entries[i], entries[i+1]
		if a.TotalWins < b.TotalWins {
			t.Errorf("entries out of order at %d: wins %d < %d", i, a.TotalWins, b.TotalWins)
		}
		if a.TotalWins == b.TotalWins && a.WinRate < b.WinRate {
			t.Errorf("tie at %d broken against win rate: %v < %v", i, a.WinRate, b.WinRate)
		}
	}
	if entries[0].UserID != "alice" {
		t.Errorf("expected alice first (tie on wins, higher win rate), got %s", entries[0].UserID)
	}
}

func TestRankWinRateAndAverageScore(t *testing.T) {
	rows := []RecordRow{
		row("alice", "wordle", "2025-06-09T12:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-10T12:00:00Z", false, 5),
		row("alice", "wordle", "2025-06-11T12:00:00Z", true, 0),
	}

	entries := Rank(rows, 10, nil)
	e := entries[0]
	if e.WinRate < 66.6 || e.WinRate > 66.7 {
		t.Errorf("winRate: got %v, want ~66.67", e.WinRate)
	}
	if e.AverageScore == nil || *e.AverageScore != 4 {
		t.Errorf("averageScore: got %v, want 4 (mean of win scores only)", e.AverageScore)
	}
}

func TestRankAverageScoreAbsentWithoutWins(t *testing.T) {
	rows := []RecordRow{row("alice", "wordle", "2025-06-10T12:00:00Z", true, 0)}

	entries := Rank(rows, 10, nil)
	if entries[0].AverageScore != nil {
		t.Errorf("averageScore: got %v, want absent", *entries[0].AverageScore)
	}
	if entries[0].WinRate != 0 {
		t.Errorf("winRate: got %v, want 0", entries[0].WinRate)
	}
}

func TestRankSinceFilterInclusive(t *testing.T) {
	rows := []RecordRow{
		row("alice", "wordle", "2025-06-08T12:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-10T12:00:00Z", false, 3),
	}
	since := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	entries := Rank(rows, 10, &since)
	if entries[0].TotalPlayed != 1 {
		t.Errorf("totalPlayed: got %d, want 1 (since is an inclusive lower bound)", entries[0].TotalPlayed)
	}
}

func TestRankDateStreaksCollapseDuplicates(t *testing.T) {
	rows := []RecordRow{
		row("alice", "wordle", "2025-06-09T08:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-09T20:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-10T08:00:00Z", false, 3),
		// Gap, then an older run of three days.
		row("alice", "wordle", "2025-06-04T08:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-05T08:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-06T08:00:00Z", false, 3),
	}

	entries := Rank(rows, 10, nil)
	if entries[0].CurrentStreak != 2 {
		t.Errorf("currentStreak: got %d, want 2", entries[0].CurrentStreak)
	}
	if entries[0].MaxStreak != 3 {
		t.Errorf("maxStreak: got %d, want 3", entries[0].MaxStreak)
	}
}

func TestRankTruncatesToLimit(t *testing.T) {
	rows := []RecordRow{
		row("alice", "wordle", "2025-06-10T12:00:00Z", false, 3),
		row("bob", "wordle", "2025-06-10T12:00:00Z", false, 3),
		row("carol", "wordle", "2025-06-10T12:00:00Z", false, 3),
	}

	entries := Rank(rows, 2, nil)
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestRankAllGamesDropsEmptyGames(t *testing.T) {
	rows := []RecordRow{
		row("alice", "wordle", "2025-06-10T12:00:00Z", false, 3),
		row("bob", "mini", "2025-06-10T12:00:00Z", false, 40),
		// Only row for this game is outside the window.
		row("carol", "sudoku", "2025-06-01T12:00:00Z", false, 300),
	}
	since := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	boards, err := RankAllGames(context.Background(), rows, 10, &since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected 2 games, got %d: %v", len(boards), boards)
	}
	if _, ok := boards["sudoku"]; ok {
		t.Error("game with zero qualifying entries should be dropped")
	}
}

func TestUserRankingFound(t *testing.T) {
	rows := []RecordRow{
		row("alice", "wordle", "2025-06-09T12:00:00Z", false, 3),
		row("alice", "wordle", "2025-06-10T12:00:00Z", false, 3),
		row("bob", "wordle", "2025-06-10T12:00:00Z", false, 3),
	}

	rank, entry := UserRanking(rows, "bob")
	if rank != 2 {
		t.Errorf("rank: got %d, want 2", rank)
	}
	if entry == nil || entry.UserID != "bob" {
		t.Errorf("entry: got %+v, want bob", entry)
	}
}

func TestUserRankingAbsentUser(t *testing.T) {
	rows := []RecordRow{row("alice", "wordle", "2025-06-10T12:00:00Z", false, 3)}

	rank, entry := UserRanking(rows, "nobody")
	if rank != -1 {
		t.Errorf("rank: got %d, want -1", rank)
	}
	if entry != nil {
		t.Errorf("entry: got %+v, want nil", entry)
	}
}

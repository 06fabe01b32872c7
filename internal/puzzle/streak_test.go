package puzzle

import (
	"fmt"
	"testing"
	"time"
)

var testGame = Game{
	ID:         "wordle",
	ScoreTypes: map[string]map[string]float64{"puzzle1": {"attempts": 6}},
	IsFailable: true,
	ResetTime:  "00:00",
}

func rec(id, createdAt string, failed bool) GameRecord {
	return GameRecord{ID: id, GameID: "wordle", UserID: "u1", Failed: failed, CreatedAt: createdAt}
}

// dailyRecords builds one record per day counting back from end.
func dailyRecords(end time.Time, days int, failed func(i int) bool) []GameRecord {
	records := make([]GameRecord, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		records = append(records, rec(fmt.Sprintf("r%d", i), day.Format(time.RFC3339), failed(i)))
	}
	return records
}

func TestStreaksEmptyHistory(t *testing.T) {
	s, flagged := ComputeStreaks(nil, testGame, time.Now(), nil)
	if s != (Streaks{}) {
		t.Errorf("expected zero streaks, got %+v", s)
	}
	if flagged != nil {
		t.Errorf("expected no flagged records, got %v", flagged)
	}
}

func TestStreaksUnbrokenRun(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	records := dailyRecords(now, 5, func(int) bool { return false })

	s, _ := ComputeStreaks(records, testGame, now, nil)
	if s.Playstreak != 5 {
		t.Errorf("playstreak: got %d, want 5", s.Playstreak)
	}
	if s.Winstreak != 5 {
		t.Errorf("winstreak: got %d, want 5", s.Winstreak)
	}
	if s.MaxWinstreak != 5 {
		t.Errorf("maxWinstreak: got %d, want 5", s.MaxWinstreak)
	}
	if s.StreakAtRisk {
		t.Error("played today, streak should not be at risk")
	}
}

func TestStreaksGapResetsToTrailingRun(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	records := []GameRecord{
		rec("r1", "2025-06-05T12:00:00Z", false),
		rec("r2", "2025-06-06T12:00:00Z", false),
		// 2025-06-07 missed.
		rec("r3", "2025-06-08T12:00:00Z", false),
		rec("r4", "2025-06-09T12:00:00Z", false),
		rec("r5", "2025-06-10T12:00:00Z", false),
	}

	s, _ := ComputeStreaks(records, testGame, now, nil)
	if s.Playstreak != 3 {
		t.Errorf("playstreak: got %d, want 3", s.Playstreak)
	}
}

func TestStreaksFailedDayBreaksWinRunOnly(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	// Five consecutive days; the middle one failed.
	records := dailyRecords(now, 5, func(i int) bool { return i == 2 })

	s, _ := ComputeStreaks(records, testGame, now, nil)
	if s.Playstreak != 5 {
		t.Errorf("playstreak: got %d, want 5", s.Playstreak)
	}
	if s.Winstreak != 2 {
		t.Errorf("winstreak: got %d, want 2", s.Winstreak)
	}
	if s.MaxWinstreak != 2 {
		t.Errorf("maxWinstreak: got %d, want 2", s.MaxWinstreak)
	}
}

func TestStreaksMaxWinstreakInOlderHistory(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	// Four wins, a failed day, then two wins: max run is in the past.
	records := dailyRecords(now, 7, func(i int) bool { return i == 2 })

	s, _ := ComputeStreaks(records, testGame, now, nil)
	if s.Winstreak != 2 {
		t.Errorf("winstreak: got %d, want 2", s.Winstreak)
	}
	if s.MaxWinstreak != 4 {
		t.Errorf("maxWinstreak: got %d, want 4", s.MaxWinstreak)
	}
	if s.MaxWinstreak < s.Winstreak {
		t.Error("maxWinstreak must never be below winstreak")
	}
	if s.Winstreak > s.Playstreak {
		t.Error("winstreak must never exceed playstreak")
	}
}

func TestStreaksDuplicateDatesCollapse(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	records := []GameRecord{
		rec("r1", "2025-06-09T08:00:00Z", false),
		rec("r2", "2025-06-09T20:00:00Z", false),
		rec("r3", "2025-06-10T08:00:00Z", false),
	}

	s, _ := ComputeStreaks(records, testGame, now, nil)
	if s.Playstreak != 2 {
		t.Errorf("playstreak: got %d, want 2", s.Playstreak)
	}
}

func TestStreaksAtRiskWhenLastPlayedYesterday(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	records := []GameRecord{
		rec("r1", "2025-06-08T12:00:00Z", false),
		rec("r2", "2025-06-09T12:00:00Z", false),
	}

	s, _ := ComputeStreaks(records, testGame, now, nil)
	if !s.StreakAtRisk {
		t.Error("last played yesterday, streak should be at risk")
	}
}

func TestStreaksResetTimeShiftsEarlyRecordToPreviousDay(t *testing.T) {
	game := testGame
	game.ResetTime = "04:00"
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// Logged at 01:00 against a 04:00 reset: belongs to 2025-06-09.
	records := []GameRecord{
		rec("r1", "2025-06-09T12:00:00Z", false),
		rec("r2", "2025-06-10T01:00:00Z", false),
	}

	s, _ := ComputeStreaks(records, game, now, nil)
	if s.Playstreak != 1 {
		t.Errorf("playstreak: got %d, want 1 (both records fold into one day)", s.Playstreak)
	}
	if !s.StreakAtRisk {
		t.Error("streak should be at risk: latest play folds into yesterday")
	}
}

func TestStreaksAsynchronousUsesViewerTimezone(t *testing.T) {
	game := testGame
	game.IsAsynchronous = true
	loc := time.FixedZone("UTC+10", 10*60*60)

	// 2025-06-09T22:00Z is already 2025-06-10 in UTC+10.
	records := []GameRecord{rec("r1", "2025-06-09T22:00:00Z", false)}
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	s, _ := ComputeStreaks(records, game, now, loc)
	if s.StreakAtRisk {
		t.Error("record is today in viewer timezone, streak not at risk")
	}
}

func TestStreaksFlagsUnparseableTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	records := []GameRecord{
		rec("good", "2025-06-10T08:00:00Z", false),
		rec("bad", "not-a-timestamp", false),
	}

	s, flagged := ComputeStreaks(records, testGame, now, nil)
	if len(flagged) != 1 || flagged[0] != "bad" {
		t.Errorf("flagged: got %v, want [bad]", flagged)
	}
	if s.Playstreak != 1 {
		t.Errorf("playstreak: got %d, want 1", s.Playstreak)
	}
}

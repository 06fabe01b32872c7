package puzzle

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Streaks is the per-user, per-game streak summary.
type Streaks struct {
	Playstreak   int  `json:"playstreak"`
	Winstreak    int  `json:"winstreak"`
	MaxWinstreak int  `json:"maxWinstreak"`
	StreakAtRisk bool `json:"streakAtRisk"`
}

// ComputeStreaks derives streaks from a user's record history for one game.
// Records must be ordered by createdAt. loc is the viewer's timezone, used
// only for asynchronous games; nil means UTC.
//
// Records whose createdAt does not parse are excluded from the computation
// and their IDs are returned so the caller can surface the data-quality
// problem instead of silently breaking continuity.
func ComputeStreaks(records []GameRecord, game Game, now time.Time, loc *time.Location) (Streaks, []string) {
	dayWon := make(map[int]bool)
	var flagged []string
	for _, r := range records {
		t, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			flagged = append(flagged, r.ID)
			continue
		}
		day := playedDay(t, game, loc)
		// Any non-failed record makes the day a win; a day breaks the win
		// run only when every record on it failed.
		dayWon[day] = dayWon[day] || !r.Failed
	}

	if len(dayWon) == 0 {
		return Streaks{}, flagged
	}

	days := make([]int, 0, len(dayWon))
	for d := range dayWon {
		days = append(days, d)
	}
	sort.Ints(days)

	var s Streaks

	// Trailing run of consecutive days, and its win prefix from the end.
	last := len(days) - 1
	s.Playstreak = 1
	for i := last; i > 0 && days[i-1] == days[i]-1; i-- {
		s.Playstreak++
	}
	for i := last; i > last-s.Playstreak && dayWon[days[i]]; i-- {
		s.Winstreak++
	}

	// Longest win run anywhere in history.
	run := 0
	for i, d := range days {
		switch {
		case !dayWon[d]:
			run = 0
		case i > 0 && days[i-1] == d-1 && run > 0:
			run++
		default:
			run = 1
		}
		if run > s.MaxWinstreak {
			s.MaxWinstreak = run
		}
	}

	s.StreakAtRisk = days[last] == playedDay(now, game, loc)-1
	return s, flagged
}

// playedDay assigns an instant to a calendar day under the game's reset
// policy, as days since the Unix epoch. An instant before the day's reset
// boundary belongs to the previous day.
func playedDay(t time.Time, game Game, loc *time.Location) int {
	if !game.IsAsynchronous || loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	resetH, resetM := parseResetTime(game.ResetTime)
	if lt.Hour()*60+lt.Minute() < resetH*60+resetM {
		lt = lt.AddDate(0, 0, -1)
	}
	y, m, d := lt.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// PlayedDate renders an instant's calendar day under the game's reset
// policy as "2006-01-02". It is the canonical day-slot key for the
// one-record-per-day rule.
func PlayedDate(t time.Time, game Game, loc *time.Location) string {
	return formatDay(playedDay(t, game, loc))
}

func formatDay(day int) string {
	return time.Unix(int64(day)*86400, 0).UTC().Format("2006-01-02")
}

// parseResetTime parses "HH:MM"; malformed values fall back to midnight.
func parseResetTime(s string) (int, int) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0
	}
	return hour, minute
}

package puzzle

import (
	"fmt"
	"strconv"
	"time"
)

// GameStats is the on-demand aggregate view of a user's record set for one
// game. It is recomputed from records every time; the record set stays the
// source of truth.
type GameStats struct {
	TotalPlayed       int            `json:"totalPlayed"`
	TotalWon          int            `json:"totalWon"`
	TotalFailed       int            `json:"totalFailed"`
	AverageScore      float64        `json:"averageScore"`
	ScoreDistribution map[string]int `json:"scoreDistribution"`
	LastPlayedDate    string         `json:"lastPlayedDate,omitempty"`
}

// ComputeStats aggregates records into GameStats. field names the score
// field to average and bucket; an empty field falls back to the game's
// designated field. Records missing the field are excluded from the average
// and the distribution. loc is the viewer timezone for asynchronous games
// (nil means UTC).
//
// IDs of records with unparseable timestamps are returned alongside the
// stats; such records still count toward the play/win totals but cannot
// contribute a played date.
func ComputeStats(records []GameRecord, game Game, field string, loc *time.Location) (GameStats, []string) {
	if field == "" {
		field = game.DefaultScoreField()
	}

	stats := GameStats{
		TotalPlayed:       len(records),
		ScoreDistribution: make(map[string]int),
	}

	boundaries := game.ScoreDistributionConfig[field]

	var sum float64
	var counted int
	var flagged []string
	lastDay := -1

	for _, r := range records {
		if r.Failed {
			stats.TotalFailed++
		}

		if v, ok := r.fieldValue(field); ok {
			sum += v
			counted++
			stats.ScoreDistribution[bucketLabel(v, boundaries)]++
		}

		t, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			flagged = append(flagged, r.ID)
			continue
		}
		if day := playedDay(t, game, loc); day > lastDay {
			lastDay = day
		}
	}

	stats.TotalWon = stats.TotalPlayed - stats.TotalFailed
	if counted > 0 {
		stats.AverageScore = sum / float64(counted)
	}
	if lastDay >= 0 {
		stats.LastPlayedDate = formatDay(lastDay)
	}
	return stats, flagged
}

// bucketLabel assigns a score to a distribution bucket. With boundaries
// configured, bucket i covers [boundaries[i], boundaries[i+1]) and the last
// boundary is open-ended; values below the first boundary are clamped into
// the first bucket so no score disappears from the distribution. Without
// boundaries every distinct raw value is its own bucket.
func bucketLabel(v float64, boundaries []float64) string {
	if len(boundaries) == 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	last := len(boundaries) - 1
	for i := 0; i < last; i++ {
		if v < boundaries[i+1] {
			return fmt.Sprintf("%s-%s", formatScore(boundaries[i]), formatScore(boundaries[i+1]))
		}
	}
	return formatScore(boundaries[last]) + "+"
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

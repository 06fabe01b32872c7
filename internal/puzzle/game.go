// Package puzzle holds the record-ingestion and derived-statistics engine:
// share-text entries, score reduction, streaks, aggregate stats, and
// cross-user leaderboards. Everything here is a pure function over its
// inputs; storage and transport live in internal/server.
package puzzle

import "sort"

// NoMaximum is the sentinel for a score field with no fixed maximum
// (the score is not attempt-bounded).
const NoMaximum = -1

// ScoreMap is the canonical nested score shape: puzzle key -> score field ->
// value. A nil ScoreMap means "no scores for this record"; a ScoreMap never
// contains a puzzle key with an empty field set.
type ScoreMap map[string]map[string]float64

// Game describes one daily puzzle and the policy needed to interpret its
// records. ScoreTypes keys are stable identifiers reused by every record
// for the game.
type Game struct {
	ID         string                        `json:"id"`
	Name       string                        `json:"name"`
	ScoreTypes map[string]map[string]float64 `json:"scoreTypes"`
	IsFailable bool                          `json:"isFailable"`

	// ResetTime ("HH:MM") and IsAsynchronous are the sole determinants of
	// which calendar day a record belongs to. Asynchronous games reset in
	// the viewer's local timezone, others in UTC.
	ResetTime      string `json:"resetTime"`
	IsAsynchronous bool   `json:"isAsynchronous"`

	// ScoreDistributionConfig maps a score field to ascending bucket
	// boundaries for the stats distribution. Fields without an entry get
	// one bucket per distinct raw value.
	ScoreDistributionConfig map[string][]float64 `json:"scoreDistributionConfig,omitempty"`
}

// DefaultScoreField returns the game's designated numeric field: the first
// field of the first puzzle key, taking keys in sorted order so the choice
// is deterministic. Games with several fields per puzzle need the caller to
// name one explicitly.
func (g Game) DefaultScoreField() string {
	for _, pk := range sortedKeys(g.ScoreTypes) {
		for _, field := range sortedKeys(g.ScoreTypes[pk]) {
			return field
		}
	}
	return ""
}

// RecordMetadata carries the raw parsed entries a record was built from.
// Entry order is insertion order; it is not significant for computation.
type RecordMetadata struct {
	ShareTexts []ShareTextEntry `json:"shareTexts,omitempty"`
}

// GameRecord is one user's result for one game on one day. Existence of a
// record means "played"; Failed is the sole authority on win/loss. Records
// are immutable once stored except for whole-row replacement by ID.
type GameRecord struct {
	ID        string         `json:"id"`
	GameID    string         `json:"gameId"`
	UserID    string         `json:"userId"`
	Failed    bool           `json:"failed"`
	Scores    ScoreMap       `json:"scores,omitempty"`
	Metadata  RecordMetadata `json:"metadata"`
	CreatedAt string         `json:"createdAt"`
}

// fieldValue looks up field in the record's scores, scanning puzzle keys in
// sorted order and returning the first hit.
func (r GameRecord) fieldValue(field string) (float64, bool) {
	for _, pk := range sortedKeys(r.Scores) {
		if v, ok := r.Scores[pk][field]; ok {
			return v, true
		}
	}
	return 0, false
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package puzzle

import (
	"errors"
	"fmt"
)

// ErrSummaryText is returned when any entry carries free-form summary text.
// Summary entries are handled upstream of score reduction; callers must
// branch before calling Reduce.
var ErrSummaryText = errors.New("summary text entries are not reducible")

// Reduce collapses the parsed entries for a single day's record into the
// canonical score map. The result is nil, not an empty map, when no
// populated puzzle key survives pruning.
//
// A single entry contributes its score map as-is. With several entries, an
// entry whose map uses the generic "puzzle1" key is remapped to a
// synthesized "puzzle{N}" key from its 1-based position; this is a named
// special case for multi-subtask games where every subtask reports under
// "puzzle1". Entries with distinct native keys merge directly. Fields with
// absent values are dropped, then puzzle keys with empty field sets.
func Reduce(entries []ShareTextEntry) (ScoreMap, error) {
	for _, e := range entries {
		if e.SummaryText != "" {
			return nil, ErrSummaryText
		}
	}

	out := ScoreMap{}
	switch {
	case len(entries) == 1:
		for pk, fields := range entries[0].Scores {
			mergeFields(out, pk, fields)
		}
	case len(entries) > 1:
		for i, e := range entries {
			if fields, ok := e.Scores["puzzle1"]; ok {
				mergeFields(out, fmt.Sprintf("puzzle%d", i+1), fields)
				continue
			}
			for pk, fields := range e.Scores {
				mergeFields(out, pk, fields)
			}
		}
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// mergeFields copies present field values into dst under pk, creating the
// puzzle key only when at least one field survives.
func mergeFields(dst ScoreMap, pk string, fields map[string]*float64) {
	for f, v := range fields {
		if v == nil {
			continue
		}
		if dst[pk] == nil {
			dst[pk] = make(map[string]float64)
		}
		dst[pk][f] = *v
	}
}

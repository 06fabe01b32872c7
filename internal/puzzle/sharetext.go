package puzzle

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// SummaryName is the reserved aggregate identifier for entries that recap a
// whole session rather than a single puzzle.
const SummaryName = "SUMMARY"

// ShareTextEntry is one parsed block of pasted share text. Score values are
// pointers so a parser can distinguish "field absent from this parse" (nil)
// from a real zero. Grid, Percentage, and Grade are opaque pass-through
// metadata; nothing in this package computes them.
type ShareTextEntry struct {
	Name        string                         `json:"name"`
	Failed      bool                           `json:"failed"`
	Scores      map[string]map[string]*float64 `json:"scores,omitempty"`
	Grid        string                         `json:"grid,omitempty"`
	Percentage  *float64                       `json:"percentage,omitempty"`
	Grade       string                         `json:"grade,omitempty"`
	SummaryText string                         `json:"summaryText,omitempty"`
}

// Parser converts one raw pasted block of share text into a structured
// entry. Each game family supplies its own grammar; this package ships only
// the guess-grid one.
type Parser interface {
	Parse(raw string) (ShareTextEntry, error)
}

var ErrUnrecognizedShareText = errors.New("unrecognized share text")

// scoreLine matches the "4/6" or "X/6" result token of guess-grid share
// text ("Wordle 1,234 4/6", "Lingo #88 X/5", ...).
var scoreLine = regexp.MustCompile(`(?i)\b(x|\d+)/(\d+)\b`)

// GuessGridParser handles the common share format of guess-bounded games: a
// header line with an attempts-out-of-maximum token followed by an emoji
// grid. A failed play reports "X" in place of the attempt count and yields
// an entry whose puzzle1 field set is empty.
type GuessGridParser struct{}

func (GuessGridParser) Parse(raw string) (ShareTextEntry, error) {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n")), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return ShareTextEntry{}, ErrUnrecognizedShareText
	}

	m := scoreLine.FindStringSubmatch(lines[0])
	if m == nil {
		return ShareTextEntry{}, ErrUnrecognizedShareText
	}

	entry := ShareTextEntry{
		Name:   "puzzle1",
		Scores: map[string]map[string]*float64{"puzzle1": {}},
	}
	if len(lines) > 1 {
		entry.Grid = strings.Join(lines[1:], "\n")
	}

	if strings.EqualFold(m[1], "x") {
		entry.Failed = true
		return entry, nil
	}

	attempts, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return ShareTextEntry{}, ErrUnrecognizedShareText
	}
	entry.Scores["puzzle1"]["attempts"] = &attempts
	return entry, nil
}

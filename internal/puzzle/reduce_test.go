package puzzle

import (
	"errors"
	"reflect"
	"testing"
)

func score(v float64) *float64 { return &v }

func TestReduceSingleEntry(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{"puzzle1": {"attempts": score(3)}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ScoreMap{"puzzle1": {"attempts": 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReduceDropsAbsentFields(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{
			"puzzle1": {"attempts": score(4), "time": nil},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ScoreMap{"puzzle1": {"attempts": 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReduceEmptyFieldSetPrunesToAbsent(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{"puzzle1": {}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected absent scores, got %v", got)
	}
}

func TestReduceMultiEntrySynthesizedKeys(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{"puzzle1": {"attempts": score(2)}}},
		{Scores: map[string]map[string]*float64{"puzzle1": {"attempts": score(5)}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ScoreMap{
		"puzzle1": {"attempts": 2},
		"puzzle2": {"attempts": 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReduceMultiEntryKeepsOnlyPopulated(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{"puzzle1": {"attempts": score(2)}}},
		{Scores: map[string]map[string]*float64{"puzzle1": {}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ScoreMap{"puzzle1": {"attempts": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReduceMultiEntryAllEmpty(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{"puzzle1": {}}},
		{Scores: map[string]map[string]*float64{"puzzle1": {}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected absent scores, got %v", got)
	}
}

func TestReduceMultiEntryNativeKeysMergeDirectly(t *testing.T) {
	got, err := Reduce([]ShareTextEntry{
		{Scores: map[string]map[string]*float64{"crossword": {"time": score(181)}}},
		{Scores: map[string]map[string]*float64{"mini": {"time": score(42)}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ScoreMap{
		"crossword": {"time": 181},
		"mini":      {"time": 42},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReduceSummaryTextShortCircuits(t *testing.T) {
	_, err := Reduce([]ShareTextEntry{
		{SummaryText: "Played 4 games today!"},
	})
	if !errors.Is(err, ErrSummaryText) {
		t.Fatalf("expected ErrSummaryText, got %v", err)
	}
}

func TestReduceNoEntries(t *testing.T) {
	got, err := Reduce(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected absent scores, got %v", got)
	}
}

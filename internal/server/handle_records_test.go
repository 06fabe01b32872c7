package server

import (
	"net/http"
	"testing"

	"github.com/playstreak/puzzlelog/internal/puzzle"
)

const wordleWin = "Wordle 1,234 4/6\n⬛🟨⬛⬛⬛\n🟩🟩🟩🟩🟩"
const wordleLoss = "Wordle 1,235 X/6\n⬛⬛⬛⬛⬛\n⬛⬛⬛⬛⬛"

func TestCreateRecordFromShareText(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID:     "wordle",
		ShareTexts: []string{wordleWin},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var rec puzzle.GameRecord
	decodeData(t, w, &rec)

	if rec.ID == "" {
		t.Fatal("expected a record ID")
	}
	if rec.Failed {
		t.Error("winning share text must not mark the record failed")
	}
	if got := rec.Scores["puzzle1"]["attempts"]; got != 4 {
		t.Errorf("expected attempts 4, got %v", got)
	}
	if len(rec.Metadata.ShareTexts) != 1 {
		t.Errorf("expected 1 metadata entry, got %d", len(rec.Metadata.ShareTexts))
	}
}

func TestCreateRecordLossHasNoScores(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID:     "wordle",
		ShareTexts: []string{wordleLoss},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var rec puzzle.GameRecord
	decodeData(t, w, &rec)

	if !rec.Failed {
		t.Error("loss must mark the record failed")
	}
	if rec.Scores != nil {
		t.Errorf("loss must carry no scores, got %v", rec.Scores)
	}
}

func TestSameDayResubmissionReplacesRecord(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID:     "wordle",
		ShareTexts: []string{wordleWin},
	})
	var first puzzle.GameRecord
	decodeData(t, w, &first)

	w = doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID: "wordle",
		Scores: puzzle.ScoreMap{"puzzle1": {"attempts": 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("resubmission: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var second puzzle.GameRecord
	decodeData(t, w, &second)

	if second.ID != first.ID {
		t.Errorf("resubmission must keep the record ID: %q != %q", second.ID, first.ID)
	}
	if got := second.Scores["puzzle1"]["attempts"]; got != 2 {
		t.Errorf("expected replaced attempts 2, got %v", got)
	}

	// Only one record exists for the day.
	w = doJSON(t, r, http.MethodGet, "/api/records?gameId=wordle", token, nil)
	var records []puzzle.GameRecord
	decodeData(t, w, &records)
	if len(records) != 1 {
		t.Fatalf("expected 1 record after resubmission, got %d", len(records))
	}
}

func TestManualScoresValidation(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	cases := []struct {
		name   string
		scores puzzle.ScoreMap
	}{
		{"unknown field", puzzle.ScoreMap{"puzzle1": {"guesses": 3}}},
		{"exceeds maximum", puzzle.ScoreMap{"puzzle1": {"attempts": 10}}},
		{"negative", puzzle.ScoreMap{"puzzle1": {"attempts": -2}}},
		{"empty field set", puzzle.ScoreMap{"puzzle1": {}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
				GameID: "wordle",
				Scores: tc.scores,
			})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUnboundedFieldAcceptsAnyValue(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID: "dailycross",
		Scores: puzzle.ScoreMap{"puzzle1": {"seconds": 5400}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateRecordUnknownGame(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID:     "nonexistent",
		ShareTexts: []string{wordleWin},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestBulkRecordsPartialFailure(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records/bulk", token, BulkRecordsRequest{
		Records: []RecordRequest{
			{GameID: "wordle", ShareTexts: []string{wordleWin}, CreatedAt: "2026-08-01T12:00:00Z"},
			{GameID: "nonexistent", ShareTexts: []string{wordleWin}},
			{GameID: "wordle", ShareTexts: []string{wordleLoss}, CreatedAt: "2026-08-02T12:00:00Z"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp BulkRecordsResponse
	decodeData(t, w, &resp)

	if resp.Saved != 2 {
		t.Errorf("expected 2 saved, got %d", resp.Saved)
	}
	if len(resp.Failed) != 1 || resp.Failed[0].Index != 1 {
		t.Errorf("expected failure at index 1, got %+v", resp.Failed)
	}
}

func TestDeleteRecord(t *testing.T) {
	r := testRouter(t)
	token := loginAs(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/records", token, RecordRequest{
		GameID:     "wordle",
		ShareTexts: []string{wordleWin},
	})
	var rec puzzle.GameRecord
	decodeData(t, w, &rec)

	w = doJSON(t, r, http.MethodDelete, "/api/records/"+rec.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/records/"+rec.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
}

func TestDeleteRecordOfOtherUser(t *testing.T) {
	r := testRouter(t)
	alice := loginAs(t, r, "alice")
	bob := loginAs(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/records", alice, RecordRequest{
		GameID:     "wordle",
		ShareTexts: []string{wordleWin},
	})
	var rec puzzle.GameRecord
	decodeData(t, w, &rec)

	w = doJSON(t, r, http.MethodDelete, "/api/records/"+rec.ID, bob, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign record, got %d", w.Code)
	}
}

func TestRecordsRequireAuth(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/records", "", RecordRequest{GameID: "wordle"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

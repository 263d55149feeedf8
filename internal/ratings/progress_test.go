package ratings_test

import (
	"context"
	"errors"
	"testing"

	"audiopref/internal/ratings"
)

func TestValidateScores(t *testing.T) {
	tests := []struct {
		scores ratings.Scores
		valid  bool
	}{
		{ratings.Scores{RatingA: 1, RatingB: 5}, true},
		{ratings.Scores{RatingA: 3, RatingB: 3}, true},
		{ratings.Scores{RatingA: 0, RatingB: 3}, false},
		{ratings.Scores{RatingA: 3, RatingB: 6}, false},
		{ratings.Scores{RatingA: -1, RatingB: -1}, false},
	}
	for _, tc := range tests {
		err := ratings.ValidateScores(tc.scores)
		if tc.valid && err != nil {
			t.Fatalf("%+v: unexpected error %v", tc.scores, err)
		}
		if !tc.valid && !errors.Is(err, ratings.ErrInvalidScore) {
			t.Fatalf("%+v: expected ErrInvalidScore, got %v", tc.scores, err)
		}
	}
}

func TestCurrentTakesLastRecord(t *testing.T) {
	records := []ratings.Record{
		{UserID: "u", AudioA: "a1", AudioB: "b1"},
		{UserID: "other", AudioA: "a1", AudioB: "b1"},
		{UserID: "u", AudioA: "a2", AudioB: "b2"},
		{UserID: "u", AudioA: "a1", AudioB: "b1"},
	}
	records[0].Rating.RatingA, records[0].Rating.RatingB = 1, 1
	records[1].Rating.RatingA, records[1].Rating.RatingB = 5, 5
	records[2].Rating.RatingA, records[2].Rating.RatingB = 2, 3
	records[3].Rating.RatingA, records[3].Rating.RatingB = 4, 2

	current := ratings.Current(records, "u")
	if len(current) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(current))
	}
	if got := current[ratings.PairKey{AudioA: "a1", AudioB: "b1"}]; got != (ratings.Scores{RatingA: 4, RatingB: 2}) {
		t.Fatalf("expected last record to win, got %+v", got)
	}
	if got := current[ratings.PairKey{AudioA: "a2", AudioB: "b2"}]; got != (ratings.Scores{RatingA: 2, RatingB: 3}) {
		t.Fatalf("unexpected a2 scores %+v", got)
	}
}

func TestProgress(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	pairs := []ratings.PairKey{{AudioA: "a1", AudioB: "b1"}, {AudioA: "a2", AudioB: "b2"}}

	progress, err := svc.Progress(ctx, "u", pairs)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Rated != 0 || progress.Total != 2 || progress.Complete() {
		t.Fatalf("unexpected initial progress %+v", progress)
	}

	if err := svc.SaveRating(ctx, "u", "a1", "b1", ratings.Scores{RatingA: 3, RatingB: 3}); err != nil {
		t.Fatalf("SaveRating: %v", err)
	}
	if err := svc.SaveRating(ctx, "u", "a1", "b1", ratings.Scores{RatingA: 4, RatingB: 3}); err != nil {
		t.Fatalf("SaveRating duplicate: %v", err)
	}
	progress, err = svc.Progress(ctx, "u", pairs)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Rated != 1 || len(progress.Remaining) != 1 || progress.Remaining[0].AudioA != "a2" {
		t.Fatalf("duplicates must count once, got %+v", progress)
	}

	if err := svc.SaveRating(ctx, "u", "a2", "b2", ratings.Scores{RatingA: 1, RatingB: 5}); err != nil {
		t.Fatalf("SaveRating: %v", err)
	}
	progress, err = svc.Progress(ctx, "u", pairs)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if !progress.Complete() {
		t.Fatalf("expected complete progress, got %+v", progress)
	}

	empty, err := svc.Progress(ctx, "u", nil)
	if err != nil {
		t.Fatalf("Progress empty: %v", err)
	}
	if empty.Complete() {
		t.Fatal("an empty pair set must not be complete")
	}
}

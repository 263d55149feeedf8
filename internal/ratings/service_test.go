package ratings_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"audiopref/internal/ratings"
	"audiopref/internal/ratingstore"
)

func newService(t *testing.T) *ratings.Service {
	t.Helper()
	return ratings.NewService(ratingstore.NewMemoryBackend(), nil)
}

func TestSaveUserInfoOverwrites(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.SaveUserInfo(ctx, "ana@example.com", ratings.UserRecord{Name: "Ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("SaveUserInfo: %v", err)
	}
	if err := svc.SaveUserInfo(ctx, "ana@example.com", ratings.UserRecord{Name: "Ana B", Email: "ana@example.com"}); err != nil {
		t.Fatalf("SaveUserInfo again: %v", err)
	}

	users, err := svc.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
	if got := users["ana@example.com"]; got.Name != "Ana B" || got.Email != "ana@example.com" {
		t.Fatalf("expected last write to win, got %+v", got)
	}
}

func TestSaveRatingRoundTripsScoresAndIdentity(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for a := ratings.MinScore; a <= ratings.MaxScore; a++ {
		for b := ratings.MinScore; b <= ratings.MaxScore; b++ {
			if err := svc.SaveRating(ctx, "u", "improved.wav", "raw.wav", ratings.Scores{RatingA: a, RatingB: b}); err != nil {
				t.Fatalf("SaveRating(%d,%d): %v", a, b, err)
			}
		}
	}

	records, err := svc.AllRatings(ctx)
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if len(records) != 25 {
		t.Fatalf("expected 25 records, got %d", len(records))
	}
	i := 0
	for a := ratings.MinScore; a <= ratings.MaxScore; a++ {
		for b := ratings.MinScore; b <= ratings.MaxScore; b++ {
			rec := records[i]
			if rec.Rating.RatingA != a || rec.Rating.RatingB != b {
				t.Fatalf("record %d: expected %d/%d, got %d/%d", i, a, b, rec.Rating.RatingA, rec.Rating.RatingB)
			}
			if rec.AudioA != "improved.wav" || rec.AudioB != "raw.wav" {
				t.Fatalf("record %d: unexpected identities %q/%q", i, rec.AudioA, rec.AudioB)
			}
			if rec.Rating.AudioA != rec.AudioA || rec.Rating.AudioB != rec.AudioB {
				t.Fatalf("record %d: nested rating identities differ: %+v", i, rec.Rating)
			}
			i++
		}
	}
}

func TestSaveRatingCopiesKnownUserInfo(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.SaveUserInfo(ctx, "ana@example.com", ratings.UserRecord{Name: "Ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("SaveUserInfo: %v", err)
	}
	if err := svc.SaveRating(ctx, "ana@example.com", "a1", "b1", ratings.Scores{RatingA: 4, RatingB: 3}); err != nil {
		t.Fatalf("SaveRating known: %v", err)
	}
	if err := svc.SaveRating(ctx, "ghost", "a1", "b1", ratings.Scores{RatingA: 1, RatingB: 1}); err != nil {
		t.Fatalf("SaveRating unknown: %v", err)
	}

	records, err := svc.AllRatings(ctx)
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if records[0].UserInfo == nil || records[0].UserInfo.Name != "Ana" {
		t.Fatalf("expected user info on first record, got %+v", records[0].UserInfo)
	}
	if records[1].UserInfo != nil {
		t.Fatalf("expected no user info for unknown rater, got %+v", records[1].UserInfo)
	}
}

func TestAllRatingsPreservesSubmissionOrder(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.SaveRating(ctx, "first", "a", "b", ratings.Scores{RatingA: 2, RatingB: 3}); err != nil {
		t.Fatalf("SaveRating first: %v", err)
	}
	if err := svc.SaveRating(ctx, "second", "a", "b", ratings.Scores{RatingA: 5, RatingB: 1}); err != nil {
		t.Fatalf("SaveRating second: %v", err)
	}

	records, err := svc.AllRatings(ctx)
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if len(records) != 2 || records[0].UserID != "first" || records[1].UserID != "second" {
		t.Fatalf("unexpected order: %+v", records)
	}
}

func TestAllRatingsEmptyIsNonNil(t *testing.T) {
	records, err := newService(t).AllRatings(context.Background())
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	dir := t.TempDir()
	svc := ratings.NewService(ratingstore.NewFileBackend(filepath.Join(dir, "missing", "db.json"), nil), nil)
	ctx := context.Background()

	checks := map[string]error{
		"save user info": svc.SaveUserInfo(ctx, "u", ratings.UserRecord{}),
		"save rating":    svc.SaveRating(ctx, "u", "a", "b", ratings.Scores{RatingA: 1, RatingB: 1}),
	}
	_, err := svc.AllRatings(ctx)
	checks["get all ratings"] = err
	_, _, err = svc.ExportCSV(ctx)
	checks["export csv"] = err

	for prefix, err := range checks {
		if err == nil {
			t.Fatalf("%s: expected error", prefix)
		}
		if !errors.Is(err, ratingstore.ErrIO) {
			t.Fatalf("%s: expected ErrIO, got %v", prefix, err)
		}
		if !strings.HasPrefix(err.Error(), prefix) {
			t.Fatalf("expected %q prefix, got %q", prefix, err.Error())
		}
	}
}

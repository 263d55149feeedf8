package testsupport

import (
	"context"
	"testing"

	"audiopref/internal/config"
	"audiopref/internal/ratings"
	"audiopref/internal/ratingstore"
)

// NewRatingsService returns a ratings service backed by the config's data file.
func NewRatingsService(t testing.TB, cfg *config.Config) *ratings.Service {
	t.Helper()
	return ratings.NewService(ratingstore.NewFileBackend(cfg.Paths.DataFile, nil), nil)
}

// MustSaveRating stores one rating and fails the test on error.
func MustSaveRating(t testing.TB, svc *ratings.Service, userID, audioA, audioB string, ratingA, ratingB int) {
	t.Helper()
	if err := svc.SaveRating(context.Background(), userID, audioA, audioB, ratings.Scores{RatingA: ratingA, RatingB: ratingB}); err != nil {
		t.Fatalf("SaveRating: %v", err)
	}
}

package ratings

import (
	"context"
	"errors"
	"fmt"
)

// Score bounds accepted for a single asset.
const (
	MinScore = 1
	MaxScore = 5
)

// ErrInvalidScore reports a score outside [MinScore, MaxScore].
var ErrInvalidScore = errors.New("rating must be between 1 and 5")

// ValidateScores checks both scores before they are persisted.
func ValidateScores(scores Scores) error {
	if scores.RatingA < MinScore || scores.RatingA > MaxScore {
		return fmt.Errorf("%w: ratingA=%d", ErrInvalidScore, scores.RatingA)
	}
	if scores.RatingB < MinScore || scores.RatingB > MaxScore {
		return fmt.Errorf("%w: ratingB=%d", ErrInvalidScore, scores.RatingB)
	}
	return nil
}

// PairKey identifies a pair by its canonical assets.
type PairKey struct {
	AudioA string `json:"audioA"`
	AudioB string `json:"audioB"`
}

// Current returns the latest scores per pair submitted by userID. Later
// records replace earlier ones for the same pair.
func Current(records []Record, userID string) map[PairKey]Scores {
	current := make(map[PairKey]Scores)
	for _, record := range records {
		if record.UserID != userID {
			continue
		}
		key := PairKey{AudioA: record.AudioA, AudioB: record.AudioB}
		current[key] = Scores{RatingA: record.Rating.RatingA, RatingB: record.Rating.RatingB}
	}
	return current
}

// Progress summarizes how many of a pair set a rater has scored.
type Progress struct {
	UserID    string    `json:"userId"`
	Rated     int       `json:"rated"`
	Total     int       `json:"total"`
	Remaining []PairKey `json:"remaining"`
}

// Complete reports whether every pair has a current rating. An empty pair set
// is never complete.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Rated == p.Total
}

// Progress compares the rater's current ratings with pairs.
func (s *Service) Progress(ctx context.Context, userID string, pairs []PairKey) (Progress, error) {
	records, err := s.AllRatings(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}
	current := Current(records, userID)

	progress := Progress{UserID: userID, Total: len(pairs), Remaining: []PairKey{}}
	for _, key := range pairs {
		if _, ok := current[key]; ok {
			progress.Rated++
			continue
		}
		progress.Remaining = append(progress.Remaining, key)
	}
	return progress, nil
}

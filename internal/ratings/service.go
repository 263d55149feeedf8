package ratings

import (
	"context"
	"fmt"
	"log/slog"

	"audiopref/internal/logging"
	"audiopref/internal/ratingstore"
)

type (
	// Record is one persisted rating.
	Record = ratingstore.RatingRecord
	// UserRecord holds rater details.
	UserRecord = ratingstore.UserRecord
)

// Scores are the two 1..5 scores for a pair in canonical order.
type Scores struct {
	RatingA int `json:"ratingA"`
	RatingB int `json:"ratingB"`
}

// Service exposes the rating operations.
type Service struct {
	backend ratingstore.Backend
	logger  *slog.Logger
}

// NewService wires a service to the given backend.
func NewService(backend ratingstore.Backend, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "ratings"),
	}
}

// SaveUserInfo stores info under userID, replacing any previous details.
func (s *Service) SaveUserInfo(ctx context.Context, userID string, info UserRecord) error {
	db, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("save user info: %w", err)
	}
	db.Users[userID] = UserRecord{Name: info.Name, Email: info.Email}
	if err := s.backend.Save(ctx, db); err != nil {
		return fmt.Errorf("save user info: %w", err)
	}
	logging.WithContext(ctx, s.logger).Info("user info saved",
		logging.String(logging.FieldEventType, "user_saved"),
		logging.String(logging.FieldUserID, userID))
	return nil
}

// SaveRating appends a rating for the canonical pair (audioA improved, audioB
// raw). The rater's stored details, if any, are copied onto the record.
// Scores are not validated here; callers run ValidateScores first.
func (s *Service) SaveRating(ctx context.Context, userID, audioA, audioB string, scores Scores) error {
	db, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("save rating: %w", err)
	}

	record := Record{
		UserID: userID,
		AudioA: audioA,
		AudioB: audioB,
		Rating: ratingstore.Rating{
			AudioA:  audioA,
			AudioB:  audioB,
			RatingA: scores.RatingA,
			RatingB: scores.RatingB,
		},
	}
	if info, ok := db.Users[userID]; ok {
		record.UserInfo = &info
	}
	db.Ratings = append(db.Ratings, record)

	if err := s.backend.Save(ctx, db); err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	logging.WithContext(ctx, s.logger).Info("rating saved",
		logging.String(logging.FieldEventType, "rating_saved"),
		logging.String(logging.FieldUserID, userID),
		logging.String("audio_a", audioA),
		logging.String("audio_b", audioB),
		logging.Int("rating_a", scores.RatingA),
		logging.Int("rating_b", scores.RatingB),
		logging.Int("total_ratings", len(db.Ratings)))
	return nil
}

// AllRatings returns every rating in submission order. The slice is never nil.
func (s *Service) AllRatings(ctx context.Context) ([]Record, error) {
	db, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all ratings: %w", err)
	}
	return db.Ratings, nil
}

// Users returns the stored rater details keyed by user ID.
func (s *Service) Users(ctx context.Context) (map[string]UserRecord, error) {
	db, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return db.Users, nil
}

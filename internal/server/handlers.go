package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"audiopref/internal/logging"
	"audiopref/internal/pairing"
	"audiopref/internal/ratings"
	"audiopref/internal/ratingstore"
	"audiopref/internal/services"
)

type pairsResponse struct {
	Pairs []pairing.Pair `json:"pairs"`
	Empty bool           `json:"empty,omitempty"`
}

type progressResponse struct {
	ratings.Progress
	Complete bool `json:"complete"`
}

type finishResponse struct {
	Complete bool `json:"complete"`
	Notified bool `json:"notified"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.allow(r) {
		s.metrics.loginsTotal.WithLabelValues("limited").Inc()
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "login rate limited", "login_limited",
			logging.String("client", clientAddress(r)),
			logging.String(logging.FieldErrorHint, "raise server.login_rate_per_minute if raters share an address"),
			logging.String(logging.FieldImpact, "login rejected"))
		s.writeError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	var req loginRequest
	if err := s.decode(w, r, "login", &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result := s.checker.Check(req.Password, req.Name, req.Email)
	if !result.Success {
		s.metrics.loginsTotal.WithLabelValues("rejected").Inc()
		logging.WithContext(r.Context(), s.logger).Info("login rejected",
			logging.String(logging.FieldEventType, "login_rejected"),
			logging.String("client", clientAddress(r)))
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	userID := strings.TrimSpace(req.Email)
	ctx := services.WithUserID(r.Context(), userID)
	if result.IsDeveloper {
		s.metrics.loginsTotal.WithLabelValues("developer").Inc()
		logging.WithContext(ctx, s.logger).Info("developer login",
			logging.String(logging.FieldEventType, "login_developer"))
		s.writeJSON(w, http.StatusOK, loginResponse{
			Success:     true,
			UserID:      userID,
			IsDeveloper: true,
			AdminName:   result.AdminName,
			AdminEmail:  result.AdminEmail,
		})
		return
	}

	info := ratings.UserRecord{Name: strings.TrimSpace(req.Name), Email: userID}
	if err := s.ratings.SaveUserInfo(ctx, userID, info); err != nil {
		s.writeServiceError(w, r.WithContext(ctx), err)
		return
	}
	s.metrics.loginsTotal.WithLabelValues("rater").Inc()
	s.writeJSON(w, http.StatusOK, loginResponse{Success: true, UserID: userID})
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.generate(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pairsResponse{Pairs: pairs, Empty: len(pairs) == 0})
}

func (s *Server) handleSaveRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := s.decode(w, r, "save rating", &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	ctx := services.WithUserID(r.Context(), req.UserID)
	canonical := req.Pair.pair().Canonical(req.ScoreA, req.ScoreB)
	scores := ratings.Scores{RatingA: canonical.RatingA, RatingB: canonical.RatingB}
	if err := ratings.ValidateScores(scores); err != nil {
		s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "save rating", "invalid scores", err))
		return
	}
	if err := s.ratings.SaveRating(ctx, req.UserID, canonical.AudioA, canonical.AudioB, scores); err != nil {
		s.writeServiceError(w, r.WithContext(ctx), err)
		return
	}
	s.metrics.ratingsSaved.Inc()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"saved":   true,
		"audioA":  canonical.AudioA,
		"audioB":  canonical.AudioB,
		"ratingA": canonical.RatingA,
		"ratingB": canonical.RatingB,
	})
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	records, err := s.ratings.AllRatings(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []ratings.Record{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ratings": records})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.ratings.Users(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	progress, err := s.progress(r, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, progressResponse{Progress: progress, Complete: progress.Complete()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	quoted, _ := strconv.ParseBool(r.URL.Query().Get("quoted"))
	csv, ok, err := s.ratings.ExportCSVWith(r.Context(), ratings.ExportOptions{Quoted: quoted})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ratings.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// handleFinish notifies the administrator once a rater has scored every
// pair. Notification failures are logged and reported as notified=false.
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if err := s.decode(w, r, "finish", &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	ctx := services.WithUserID(r.Context(), req.UserID)
	r = r.WithContext(ctx)

	progress, err := s.progress(r, req.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !progress.Complete() {
		s.writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "Test is not complete",
			"progress": progressResponse{Progress: progress, Complete: false},
		})
		return
	}

	logger := logging.WithContext(ctx, s.logger)
	notified := true
	if err := s.notifier.NotifyTestCompleted(ctx, req.UserID, progress.Rated); err != nil {
		notified = false
		logging.WarnWithContext(logger, "completion notification failed", "notify_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "administrator not notified"))
	}
	csv, ok, err := s.ratings.ExportCSV(ctx)
	switch {
	case err != nil:
		notified = false
		logging.WarnWithContext(logger, "export for notification failed", "notify_export_failed", logging.Error(err))
	case ok:
		if err := s.notifier.PublishExport(ctx, ratings.ExportFilename, []byte(csv)); err != nil {
			notified = false
			logging.WarnWithContext(logger, "export notification failed", "notify_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "export not delivered"))
		}
	}
	logger.Info("listening test completed",
		logging.String(logging.FieldEventType, "test_completed"),
		logging.Int("rated", progress.Rated),
		logging.Bool("notified", notified))
	s.writeJSON(w, http.StatusOK, finishResponse{Complete: true, Notified: notified})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generate(r *http.Request) ([]pairing.Pair, error) {
	pairs, err := s.pairs.Generate(r.Context())
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "api", "generate pairs", "audio source unavailable", err)
	}
	if pairs == nil {
		pairs = []pairing.Pair{}
	}
	s.metrics.pairsServed.Set(float64(len(pairs)))
	return pairs, nil
}

func (s *Server) progress(r *http.Request, userID string) (ratings.Progress, error) {
	pairs, err := s.generate(r)
	if err != nil {
		return ratings.Progress{}, err
	}
	keys := make([]ratings.PairKey, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, ratings.PairKey{AudioA: p.Improved(), AudioB: p.Raw()})
	}
	return s.ratings.Progress(r.Context(), userID, keys)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps err onto a status. Storage failures get a fixed
// message; the detail goes to the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status < http.StatusInternalServerError {
		s.writeError(w, status, err.Error())
		return
	}
	message := "Internal server error"
	hint := "check logs for details"
	if errors.Is(err, ratingstore.ErrIO) {
		message = "Failed to access ratings storage"
		hint = "check permissions and free space for paths.data_file"
	} else if errors.Is(err, services.ErrTransient) {
		message = "Audio source unavailable"
		hint = "check the [audio] source settings"
	}
	logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "request_failed",
		logging.Error(err),
		logging.String("path", r.URL.Path),
		logging.String(logging.FieldErrorHint, hint))
	s.writeError(w, status, message)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"audiopref/internal/config"
	"audiopref/internal/pairing"
	"audiopref/internal/ratings"
	"audiopref/internal/ratingstore"
	"audiopref/internal/testsupport"
)

type stubPairs struct {
	pairs []pairing.Pair
	err   error
}

func (s stubPairs) Generate(context.Context) ([]pairing.Pair, error) {
	return s.pairs, s.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	exports   []string
	err       error
}

func (n *recordingNotifier) NotifyTestCompleted(_ context.Context, userID string, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, userID)
	return n.err
}

func (n *recordingNotifier) PublishExport(_ context.Context, _ string, csv []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.exports = append(n.exports, string(csv))
	return n.err
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

var twoPairs = []pairing.Pair{
	{SlotA: "./audio/01-alice_segment_1/improved.wav", SlotB: "./audio/01-alice_segment_1/raw.wav", Label: "alice"},
	{SlotA: "./audio/02-bob_segment_1/raw.wav", SlotB: "./audio/02-bob_segment_1/improved.wav", Label: "bob", Swapped: true},
}

type fixture struct {
	cfg      *config.Config
	ratings  *ratings.Service
	notifier *recordingNotifier
	server   *Server
}

func newFixture(t *testing.T, gen PairGenerator, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	svc := testsupport.NewRatingsService(t, cfg)
	notifier := &recordingNotifier{}
	srv, err := New(Options{Config: cfg, Ratings: svc, Pairs: gen, Notifier: notifier})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{cfg: cfg, ratings: svc, notifier: notifier, server: srv}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(Options{Config: cfg, Pairs: stubPairs{}}); err == nil {
		t.Fatal("expected error without ratings service")
	}
	if _, err := New(Options{Ratings: testsupport.NewRatingsService(t, cfg), Pairs: stubPairs{}}); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestLoginRaterSavesUser(t *testing.T) {
	f := newFixture(t, stubPairs{})
	w := f.do(t, http.MethodPost, "/api/config", map[string]string{
		"password": "demo", "name": "Ana", "email": "ana@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp loginResponse
	decodeBody(t, w, &resp)
	if !resp.Success || resp.IsDeveloper || resp.UserID != "ana@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}

	users, err := f.ratings.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if got := users["ana@example.com"]; got.Name != "Ana" || got.Email != "ana@example.com" {
		t.Fatalf("unexpected stored user %+v", got)
	}
}

func TestLoginDeveloper(t *testing.T) {
	f := newFixture(t, stubPairs{})
	w := f.do(t, http.MethodPost, "/api/config", map[string]string{
		"password": "admin", "name": "Admin", "email": "admin@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp loginResponse
	decodeBody(t, w, &resp)
	if !resp.IsDeveloper || resp.AdminName != "Admin" || resp.AdminEmail != "admin@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
	users, _ := f.ratings.Users(context.Background())
	if len(users) != 0 {
		t.Fatalf("developer login must not store a rater, got %+v", users)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t, stubPairs{})
	w := f.do(t, http.MethodPost, "/api/config", map[string]string{
		"password": "wrong", "name": "Ana", "email": "ana@example.com",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"error":"Invalid credentials"}` {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestLoginValidatesBody(t *testing.T) {
	f := newFixture(t, stubPairs{})
	w := f.do(t, http.MethodPost, "/api/config", map[string]string{"password": "demo", "name": "Ana"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "email is required") {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t, stubPairs{}, testsupport.WithLoginLimit(1, 1))
	body := map[string]string{"password": "wrong", "name": "Ana", "email": "ana@example.com"}
	if w := f.do(t, http.MethodPost, "/api/config", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected first attempt to reach the checker, got %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/config", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestPairsFromLocalAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAudioPairs("01-alice_segment_1", "02-bob_segment_2"))
	gen := pairing.NewGenerator(
		pairing.NewLocalSource(cfg.Audio.Dir, cfg.Audio.RawName, cfg.Audio.ImprovedName, nil),
		nil, pairing.WithCoin(pairing.SeededCoin(7)))
	srv, err := New(Options{Config: cfg, Ratings: testsupport.NewRatingsService(t, cfg), Pairs: gen, Notifier: &recordingNotifier{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pairs", nil))
	var resp pairsResponse
	decodeBody(t, w, &resp)
	if len(resp.Pairs) != 2 || resp.Empty {
		t.Fatalf("unexpected pairs %+v", resp)
	}
	for _, p := range resp.Pairs {
		if !strings.HasSuffix(p.Improved(), "/improved.wav") || !strings.HasSuffix(p.Raw(), "/raw.wav") {
			t.Fatalf("swap bookkeeping broken for %+v", p)
		}
	}

	audio := httptest.NewRecorder()
	srv.Handler().ServeHTTP(audio, httptest.NewRequest(http.MethodGet, "/audio/01-alice_segment_1/raw.wav", nil))
	if audio.Code != http.StatusOK || audio.Body.Len() != 44 {
		t.Fatalf("expected audio file, got %d (%d bytes)", audio.Code, audio.Body.Len())
	}
}

func TestPairsEmptyState(t *testing.T) {
	f := newFixture(t, stubPairs{})
	w := f.do(t, http.MethodGet, "/api/pairs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"pairs":[],"empty":true}` {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestPairsSourceFailure(t *testing.T) {
	f := newFixture(t, stubPairs{err: errors.New("drive down")})
	w := f.do(t, http.MethodGet, "/api/pairs", nil)
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "Audio source unavailable") {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
}

func TestSaveRatingRemapsSwappedPair(t *testing.T) {
	f := newFixture(t, stubPairs{pairs: twoPairs})
	w := f.do(t, http.MethodPost, "/api/ratings", map[string]any{
		"userId": "ana@example.com",
		"pair":   twoPairs[1],
		"scoreA": 2,
		"scoreB": 5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	records, err := f.ratings.AllRatings(context.Background())
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	got := records[0]
	if got.AudioA != "./audio/02-bob_segment_1/improved.wav" || got.Rating.RatingA != 5 {
		t.Fatalf("improved asset should carry slot B score, got %+v", got)
	}
	if got.AudioB != "./audio/02-bob_segment_1/raw.wav" || got.Rating.RatingB != 2 {
		t.Fatalf("raw asset should carry slot A score, got %+v", got)
	}
}

func TestSaveRatingRejectsOutOfRangeScore(t *testing.T) {
	f := newFixture(t, stubPairs{pairs: twoPairs})
	w := f.do(t, http.MethodPost, "/api/ratings", map[string]any{
		"userId": "ana@example.com",
		"pair":   twoPairs[0],
		"scoreA": 6,
		"scoreB": 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "scoreA must be between 1 and 5") {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
	records, _ := f.ratings.AllRatings(context.Background())
	if len(records) != 0 {
		t.Fatalf("invalid rating must not be stored, got %+v", records)
	}
}

func TestSaveRatingRejectsUnknownFields(t *testing.T) {
	f := newFixture(t, stubPairs{})
	w := f.do(t, http.MethodPost, "/api/ratings", map[string]any{"userId": "u", "bogus": true})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListRatingsAndUsers(t *testing.T) {
	f := newFixture(t, stubPairs{})
	if w := f.do(t, http.MethodGet, "/api/ratings", nil); strings.TrimSpace(w.Body.String()) != `{"ratings":[]}` {
		t.Fatalf("unexpected empty ratings body %q", w.Body.String())
	}
	testsupport.MustSaveRating(t, f.ratings, "u1", "a", "b", 4, 2)
	testsupport.MustSaveRating(t, f.ratings, "u1", "c", "d", 1, 3)

	var resp struct {
		Ratings []ratings.Record `json:"ratings"`
	}
	decodeBody(t, f.do(t, http.MethodGet, "/api/ratings", nil), &resp)
	if len(resp.Ratings) != 2 || resp.Ratings[0].AudioA != "a" || resp.Ratings[1].AudioA != "c" {
		t.Fatalf("expected submission order, got %+v", resp.Ratings)
	}

	var users struct {
		Users map[string]ratings.UserRecord `json:"users"`
	}
	decodeBody(t, f.do(t, http.MethodGet, "/api/users", nil), &users)
	if users.Users == nil {
		t.Fatal("expected users object")
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t, stubPairs{})
	if w := f.do(t, http.MethodGet, "/api/export", nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty store, got %d", w.Code)
	}

	testsupport.MustSaveRating(t, f.ratings, "u1", "a,1", "b", 4, 2)
	w := f.do(t, http.MethodGet, "/api/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "audio_ratings.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) != 2 || lines[1] != "u1,,,a,1,b,4,2" {
		t.Fatalf("unexpected csv %q", w.Body.String())
	}

	quoted := f.do(t, http.MethodGet, "/api/export?quoted=1", nil)
	if !strings.Contains(quoted.Body.String(), `"a,1"`) {
		t.Fatalf("expected quoted field, got %q", quoted.Body.String())
	}
}

func TestProgressAndFinish(t *testing.T) {
	f := newFixture(t, stubPairs{pairs: twoPairs})

	if w := f.do(t, http.MethodGet, "/api/progress", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", w.Code)
	}

	testsupport.MustSaveRating(t, f.ratings, "ana", twoPairs[0].Improved(), twoPairs[0].Raw(), 5, 1)
	var progress progressResponse
	decodeBody(t, f.do(t, http.MethodGet, "/api/progress?userId=ana", nil), &progress)
	if progress.Rated != 1 || progress.Total != 2 || progress.Complete {
		t.Fatalf("unexpected progress %+v", progress)
	}

	if w := f.do(t, http.MethodPost, "/api/finish", map[string]string{"userId": "ana"}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while incomplete, got %d", w.Code)
	}
	if len(f.notifier.completed) != 0 {
		t.Fatal("incomplete test must not notify")
	}

	testsupport.MustSaveRating(t, f.ratings, "ana", twoPairs[1].Improved(), twoPairs[1].Raw(), 3, 3)
	w := f.do(t, http.MethodPost, "/api/finish", map[string]string{"userId": "ana"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp finishResponse
	decodeBody(t, w, &resp)
	if !resp.Complete || !resp.Notified {
		t.Fatalf("unexpected finish response %+v", resp)
	}
	if len(f.notifier.completed) != 1 || f.notifier.completed[0] != "ana" {
		t.Fatalf("unexpected completion notifications %+v", f.notifier.completed)
	}
	if len(f.notifier.exports) != 1 || strings.Count(f.notifier.exports[0], "\n") != 2 {
		t.Fatalf("expected export with two rows, got %+v", f.notifier.exports)
	}
}

// signingPairs hands out fresh playback URLs on every generation while the
// asset identities stay fixed.
type signingPairs struct {
	mu    sync.Mutex
	calls int
}

func (g *signingPairs) Generate(context.Context) ([]pairing.Pair, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	sig := "?X-Amz-Signature=" + strconv.Itoa(g.calls)
	return []pairing.Pair{{
		SlotA:    "s3://ratings/01-alice_segment_1/improved.wav",
		SlotB:    "s3://ratings/01-alice_segment_1/raw.wav",
		SlotAURL: "https://signed.example/01-alice_segment_1/improved.wav" + sig,
		SlotBURL: "https://signed.example/01-alice_segment_1/raw.wav" + sig,
		Label:    "alice",
	}}, nil
}

func TestFinishWithRotatingPlaybackURLs(t *testing.T) {
	f := newFixture(t, &signingPairs{})

	var listed pairsResponse
	decodeBody(t, f.do(t, http.MethodGet, "/api/pairs", nil), &listed)
	if len(listed.Pairs) != 1 || listed.Pairs[0].SlotAURL == "" {
		t.Fatalf("expected one pair with playback urls, got %+v", listed.Pairs)
	}
	w := f.do(t, http.MethodPost, "/api/ratings", map[string]any{
		"userId": "ana",
		"pair":   listed.Pairs[0],
		"scoreA": 4,
		"scoreB": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	records, err := f.ratings.AllRatings(context.Background())
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if len(records) != 1 || records[0].AudioA != "s3://ratings/01-alice_segment_1/improved.wav" {
		t.Fatalf("expected rating stored under the asset identity, got %+v", records)
	}

	var progress progressResponse
	decodeBody(t, f.do(t, http.MethodGet, "/api/progress?userId=ana", nil), &progress)
	if !progress.Complete || progress.Rated != 1 {
		t.Fatalf("expected complete progress, got %+v", progress)
	}
	if w := f.do(t, http.MethodPost, "/api/finish", map[string]string{"userId": "ana"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFinishReportsNotifyFailure(t *testing.T) {
	f := newFixture(t, stubPairs{pairs: twoPairs[:1]})
	f.notifier.err = errors.New("ntfy down")
	testsupport.MustSaveRating(t, f.ratings, "ana", twoPairs[0].Improved(), twoPairs[0].Raw(), 5, 1)

	var resp finishResponse
	decodeBody(t, f.do(t, http.MethodPost, "/api/finish", map[string]string{"userId": "ana"}), &resp)
	if !resp.Complete || resp.Notified {
		t.Fatalf("unexpected finish response %+v", resp)
	}
}

func TestStorageFailureIs500(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.DataFile = filepath.Join(blocker, "db.json")
	svc := ratings.NewService(ratingstore.NewFileBackend(cfg.Paths.DataFile, nil), nil)
	srv, err := New(Options{Config: cfg, Ratings: svc, Pairs: stubPairs{}, Notifier: &recordingNotifier{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ratings", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to access ratings storage") {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t, stubPairs{})
	generated := f.do(t, http.MethodGet, "/healthz", nil)
	if len(generated.Header().Get(RequestIDHeader)) != 36 {
		t.Fatalf("expected generated uuid, got %q", generated.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "trace-123" {
		t.Fatalf("expected echoed id, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, stubPairs{})
	f.do(t, http.MethodGet, "/healthz", nil)
	w := f.do(t, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `audiopref_http_requests_total{code="200",route="healthz"} 1`) {
		t.Fatalf("expected request counter, got %q", w.Body.String())
	}
}

func TestMetricsDisabled(t *testing.T) {
	f := newFixture(t, stubPairs{})
	f.cfg.Server.Metrics = false
	srv, err := New(Options{Config: f.cfg, Ratings: f.ratings, Pairs: stubPairs{}, Notifier: f.notifier})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with metrics disabled, got %d", w.Code)
	}
}

func TestRunRefusesHeldLock(t *testing.T) {
	f := newFixture(t, stubPairs{})
	other := flock.New(f.cfg.LockPath())
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer other.Unlock()

	if err := f.server.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "another audiopref server") {
		t.Fatalf("expected lock conflict, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, stubPairs{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.server.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if _, err := os.Stat(f.cfg.LockPath()); err != nil {
		t.Fatalf("expected lock file to exist: %v", err)
	}
}

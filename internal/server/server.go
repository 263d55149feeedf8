package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"

	"audiopref/internal/auth"
	"audiopref/internal/config"
	"audiopref/internal/logging"
	"audiopref/internal/notifications"
	"audiopref/internal/pairing"
	"audiopref/internal/ratings"
)

// PairGenerator produces the pair set shown to raters.
type PairGenerator interface {
	Generate(ctx context.Context) ([]pairing.Pair, error)
}

// Options carries the server's collaborators. Notifier defaults to the
// service configured in Config.
type Options struct {
	Config   *config.Config
	Ratings  *ratings.Service
	Pairs    PairGenerator
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	ratings  *ratings.Service
	pairs    PairGenerator
	checker  *auth.Checker
	notifier notifications.Service
	logger   *slog.Logger
	limiter  *loginLimiter
	metrics  *metrics
	validate *validator.Validate
	handler  http.Handler
}

// New assembles the handler tree.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Ratings == nil {
		return nil, errors.New("server: ratings service is required")
	}
	if opts.Pairs == nil {
		return nil, errors.New("server: pair generator is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}

	s := &Server{
		cfg:      opts.Config,
		ratings:  opts.Ratings,
		pairs:    opts.Pairs,
		checker:  auth.NewChecker(opts.Config),
		notifier: notifier,
		logger:   logging.NewComponentLogger(opts.Logger, "api"),
		limiter:  newLoginLimiter(opts.Config.Server.LoginRatePerMinute, opts.Config.Server.LoginBurst),
		metrics:  newMetrics(),
		validate: newValidator(),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler, including request id middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "POST /api/config", "config", s.handleConfig)
	s.handle(mux, "GET /api/pairs", "pairs", s.handlePairs)
	s.handle(mux, "POST /api/ratings", "ratings_save", s.handleSaveRating)
	s.handle(mux, "GET /api/ratings", "ratings_list", s.handleListRatings)
	s.handle(mux, "GET /api/users", "users", s.handleUsers)
	s.handle(mux, "GET /api/progress", "progress", s.handleProgress)
	s.handle(mux, "GET /api/export", "export", s.handleExport)
	s.handle(mux, "POST /api/finish", "finish", s.handleFinish)
	s.handle(mux, "GET /healthz", "healthz", s.handleHealth)

	if s.cfg.Audio.Source == config.SourceLocal {
		files := http.StripPrefix("/audio/", http.FileServer(http.Dir(s.cfg.Audio.Dir)))
		mux.Handle("GET /audio/", s.metrics.instrument("audio", files))
	}
	if s.cfg.Server.Metrics {
		mux.Handle("GET /metrics", s.metrics.handler())
	}

	return s.withRequestID(mux)
}

func (s *Server) handle(mux *http.ServeMux, pattern, route string, fn http.HandlerFunc) {
	mux.Handle(pattern, s.metrics.instrument(route, fn))
}

// Run serves until ctx is cancelled. It fails fast when another process
// holds the data file lock.
func (s *Server) Run(ctx context.Context) error {
	lock := flock.New(s.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another audiopref server is using %s", s.cfg.Paths.DataFile)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("release lock failed", logging.Error(err))
		}
	}()

	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("data_file", s.cfg.Paths.DataFile),
		logging.String("audio_source", s.cfg.Audio.Source))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

package testsupport

import (
	"path/filepath"
	"testing"

	"audiopref/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test. The
// data file and audio directory are not created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataFile = filepath.Join(base, "audio_ratings_db.json")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Audio.Dir = filepath.Join(base, "audio")
	cfgVal.Auth = config.Auth{
		UserPassword:  "demo",
		AdminPassword: "admin",
		AdminName:     "Admin",
		AdminEmail:    "admin@example.com",
	}
	cfgVal.Server.LoginRatePerMinute = 600
	cfgVal.Server.LoginBurst = 100

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAudioPairs writes complete raw/improved folders with the given names
// into the configured audio directory.
func WithAudioPairs(names ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, name := range names {
			WriteAudioPair(b.t, b.cfg.Audio.Dir, name, true, true)
		}
	}
}

// WithCredentials overrides the rater and developer passwords.
func WithCredentials(userPassword, adminPassword string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.UserPassword = userPassword
		b.cfg.Auth.AdminPassword = adminPassword
	}
}

// WithNtfyTopic points notifications at topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithLoginLimit tightens the login rate limiter.
func WithLoginLimit(perMinute, burst int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.LoginRatePerMinute = perMinute
		b.cfg.Server.LoginBurst = burst
	}
}

// WithLogDir enables file logging under the test base directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}

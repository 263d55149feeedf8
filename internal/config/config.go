package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Audio source kinds accepted by [audio] source.
const (
	SourceLocal = "local"
	SourceDrive = "drive"
	SourceS3    = "s3"
)

// Paths contains file locations and the HTTP bind address.
type Paths struct {
	DataFile string `toml:"data_file"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// Audio describes where rating pairs are discovered.
type Audio struct {
	Source       string `toml:"source"`
	Dir          string `toml:"dir"`
	RawName      string `toml:"raw_name"`
	ImprovedName string `toml:"improved_name"`
}

// Drive contains configuration for the Google Drive folder listing.
type Drive struct {
	APIKey         string `toml:"api_key"`
	RootFolderID   string `toml:"root_folder_id"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// S3 contains configuration for an S3-compatible bucket holding audio pairs.
type S3 struct {
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UsePathStyle   bool   `toml:"use_path_style"`
	PresignMinutes int    `toml:"presign_minutes"`
}

// Auth contains the static secrets checked at login.
type Auth struct {
	UserPassword  string `toml:"user_password"`
	AdminPassword string `toml:"admin_password"`
	AdminName     string `toml:"admin_name"`
	AdminEmail    string `toml:"admin_email"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	TestCompleted  bool   `toml:"test_completed"`
	AttachExport   bool   `toml:"attach_export"`
}

// Server contains HTTP surface tuning.
type Server struct {
	LoginRatePerMinute int  `toml:"login_rate_per_minute"`
	LoginBurst         int  `toml:"login_burst"`
	Metrics            bool `toml:"metrics"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for audiopref.
//
// Configuration sections by subsystem:
//   - Paths: ratings file, log directory and API bind address
//   - Audio: pair discovery source and asset file names
//   - Drive: Google Drive listing (audio.source = "drive")
//   - S3: bucket listing (audio.source = "s3")
//   - Auth: rater and developer credentials
//   - Notifications: ntfy settings for completed tests and exports
//   - Server: login rate limiting and metrics
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Audio         Audio         `toml:"audio"`
	Drive         Drive         `toml:"drive"`
	S3            S3            `toml:"s3"`
	Auth          Auth          `toml:"auth"`
	Notifications Notifications `toml:"notifications"`
	Server        Server        `toml:"server"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/audiopref/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("audiopref.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the server writes into. The audio
// directory is never created; a missing one is reported as an empty pair set.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.DataFile)}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the lock file guarding the ratings file against a second server process.
func (c *Config) LockPath() string {
	return c.Paths.DataFile + ".lock"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeAudio(); err != nil {
		return err
	}
	c.normalizeDrive()
	c.normalizeS3()
	c.normalizeAuth()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataFile) == "" {
		c.Paths.DataFile = defaultDataFile
	}
	if c.Paths.DataFile, err = expandPath(strings.TrimSpace(c.Paths.DataFile)); err != nil {
		return fmt.Errorf("paths.data_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAudio() error {
	c.Audio.Source = strings.ToLower(strings.TrimSpace(c.Audio.Source))
	if c.Audio.Source == "" {
		c.Audio.Source = defaultAudioSource
	}
	if strings.TrimSpace(c.Audio.Dir) == "" {
		c.Audio.Dir = defaultAudioDir
	}
	var err error
	if c.Audio.Dir, err = expandPath(strings.TrimSpace(c.Audio.Dir)); err != nil {
		return fmt.Errorf("audio.dir: %w", err)
	}
	c.Audio.RawName = strings.TrimSpace(c.Audio.RawName)
	if c.Audio.RawName == "" {
		c.Audio.RawName = defaultRawName
	}
	c.Audio.ImprovedName = strings.TrimSpace(c.Audio.ImprovedName)
	if c.Audio.ImprovedName == "" {
		c.Audio.ImprovedName = defaultImprovedName
	}
	return nil
}

func (c *Config) normalizeDrive() {
	c.Drive.APIKey = strings.TrimSpace(c.Drive.APIKey)
	if c.Drive.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Drive.APIKey = strings.TrimSpace(value)
		}
	}
	c.Drive.RootFolderID = strings.TrimSpace(c.Drive.RootFolderID)
	c.Drive.BaseURL = strings.TrimSpace(c.Drive.BaseURL)
	if c.Drive.BaseURL == "" {
		c.Drive.BaseURL = defaultDriveBaseURL
	}
	if c.Drive.TimeoutSeconds <= 0 {
		c.Drive.TimeoutSeconds = defaultDriveTimeout
	}
}

func (c *Config) normalizeS3() {
	c.S3.Bucket = strings.TrimSpace(c.S3.Bucket)
	c.S3.Prefix = strings.Trim(strings.TrimSpace(c.S3.Prefix), "/")
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	if c.S3.Region == "" {
		c.S3.Region = defaultS3Region
	}
	c.S3.Endpoint = strings.TrimSpace(c.S3.Endpoint)
	c.S3.AccessKey = strings.TrimSpace(c.S3.AccessKey)
	if c.S3.AccessKey == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.S3.AccessKey = strings.TrimSpace(value)
		}
	}
	c.S3.SecretKey = strings.TrimSpace(c.S3.SecretKey)
	if c.S3.SecretKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.S3.SecretKey = strings.TrimSpace(value)
		}
	}
	if c.S3.PresignMinutes <= 0 {
		c.S3.PresignMinutes = defaultS3PresignMinutes
	}
}

func (c *Config) normalizeAuth() {
	c.Auth.UserPassword = envFallback(c.Auth.UserPassword, "USER_PASSWORD", defaultUserPassword)
	c.Auth.AdminPassword = envFallback(c.Auth.AdminPassword, "ADMIN_PASSWORD", defaultAdminPassword)
	c.Auth.AdminName = envFallback(c.Auth.AdminName, "ADMIN_NAME", defaultAdminName)
	c.Auth.AdminEmail = envFallback(c.Auth.AdminEmail, "ADMIN_EMAIL", defaultAdminEmail)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// envFallback keeps an explicit value, then tries the environment, then the default.
func envFallback(value, envKey, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	if env, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(env) != "" {
		return strings.TrimSpace(env)
	}
	return fallback
}

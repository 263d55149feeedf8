package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataFile == "" {
		return errors.New("paths.data_file must be set")
	}
	if info, err := os.Stat(c.Paths.DataFile); err == nil && info.IsDir() {
		return fmt.Errorf("paths.data_file must name a file, got directory %q", c.Paths.DataFile)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.RawName == c.Audio.ImprovedName {
		return fmt.Errorf("audio.raw_name and audio.improved_name must differ (both %q)", c.Audio.RawName)
	}
	switch c.Audio.Source {
	case SourceLocal:
		return nil
	case SourceDrive:
		if c.Drive.APIKey == "" {
			return errors.New("drive.api_key is required when audio.source = \"drive\" (or set GOOGLE_API_KEY)")
		}
		if c.Drive.RootFolderID == "" {
			return errors.New("drive.root_folder_id is required when audio.source = \"drive\"")
		}
		return nil
	case SourceS3:
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required when audio.source = \"s3\"")
		}
		return nil
	default:
		return fmt.Errorf("audio.source: unsupported value %q (want local, drive or s3)", c.Audio.Source)
	}
}

func (c *Config) validateAuth() error {
	if c.Auth.UserPassword == c.Auth.AdminPassword {
		return errors.New("auth.user_password and auth.admin_password must differ; the developer view would be unreachable")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.LoginRatePerMinute < 0 {
		return errors.New("server.login_rate_per_minute must be >= 0")
	}
	if c.Server.LoginBurst < 0 {
		return errors.New("server.login_burst must be >= 0")
	}
	return nil
}

package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"audiopref/internal/config"
)

// NewSource builds the Source selected by audio.source.
func NewSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Source, error) {
	switch cfg.Audio.Source {
	case config.SourceLocal:
		return NewLocalSource(cfg.Audio.Dir, cfg.Audio.RawName, cfg.Audio.ImprovedName, logger), nil
	case config.SourceDrive:
		return NewDriveSource(ctx, DriveOptions{
			APIKey:       cfg.Drive.APIKey,
			Timeout:      time.Duration(cfg.Drive.TimeoutSeconds) * time.Second,
			RootFolderID: cfg.Drive.RootFolderID,
			Endpoint:     cfg.Drive.BaseURL,
			RawName:      cfg.Audio.RawName,
			ImprovedName: cfg.Audio.ImprovedName,
		}, logger)
	case config.SourceS3:
		return NewS3Source(ctx, S3Options{
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
			Expires:      time.Duration(cfg.S3.PresignMinutes) * time.Minute,
			RawName:      cfg.Audio.RawName,
			ImprovedName: cfg.Audio.ImprovedName,
		}, logger)
	default:
		return nil, fmt.Errorf("audio source %q is not supported", cfg.Audio.Source)
	}
}

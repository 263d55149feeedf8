package pairing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"audiopref/internal/logging"
)

// LocalURLPrefix is the URL path under which the HTTP server exposes the
// local audio directory.
const LocalURLPrefix = "./audio/"

// LocalSource lists pair folders under a directory on disk. Each immediate
// subdirectory is a candidate; locators are URL paths below LocalURLPrefix.
type LocalSource struct {
	Dir          string
	RawName      string
	ImprovedName string
	logger       *slog.Logger
}

// NewLocalSource returns a source over dir using the given asset file names.
func NewLocalSource(dir, rawName, improvedName string, logger *slog.Logger) *LocalSource {
	return &LocalSource{
		Dir:          dir,
		RawName:      rawName,
		ImprovedName: improvedName,
		logger:       logging.NewComponentLogger(logger, "pairing"),
	}
}

// Folders reads the base directory. A missing directory is reported as no
// folders; other read failures are returned.
func (s *LocalSource) Folders(ctx context.Context) ([]Folder, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "audio directory missing", "audio_dir_missing",
				logging.String("dir", s.Dir),
				logging.String(logging.FieldErrorHint, "create the directory or set audio.dir"),
				logging.String(logging.FieldImpact, "no audio pairs are offered"))
			return nil, nil
		}
		return nil, fmt.Errorf("read audio directory %s: %w", s.Dir, err)
	}

	folders := make([]Folder, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.isDir(entry) {
			continue
		}
		name := entry.Name()
		files, err := os.ReadDir(filepath.Join(s.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("read audio folder %s: %w", name, err)
		}
		folder := Folder{Name: name}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			switch file.Name() {
			case s.RawName:
				folder.Raw = LocalURLPrefix + name + "/" + s.RawName
			case s.ImprovedName:
				folder.Improved = LocalURLPrefix + name + "/" + s.ImprovedName
			}
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

func (s *LocalSource) isDir(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(s.Dir, entry.Name()))
	return err == nil && info.IsDir()
}

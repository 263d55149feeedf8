package ratingstore

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"audiopref/internal/logging"
)

var _ Backend = (*FileBackend)(nil)

// FileBackend stores the ratings document as a JSON file on disk.
type FileBackend struct {
	path   string
	logger *slog.Logger
}

// NewFileBackend returns a backend for the document at path. The file is
// created lazily on the first Load.
func NewFileBackend(path string, logger *slog.Logger) *FileBackend {
	return &FileBackend{
		path:   path,
		logger: logging.NewComponentLogger(logger, "ratingstore"),
	}
}

// Path returns the document location.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the document, creating or resetting it as needed.
func (b *FileBackend) Load(ctx context.Context) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			db := Empty()
			if err := b.write(db); err != nil {
				return nil, err
			}
			b.logger.Info("created ratings database",
				logging.String(logging.FieldEventType, "ratingstore_created"),
				logging.String("path", b.path))
			return db, nil
		}
		return nil, &IOError{Op: "read", Path: b.path, Err: err}
	}

	db, result, decodeErr := decode(data)
	switch result {
	case decodeEmpty, decodeCorrupt:
		reason := resetReason(result, decodeErr)
		message := "ratings database unreadable; reset to empty"
		if reason == resetSchemaMismatch {
			message = "ratings database does not match the expected schema; reset to empty"
		}
		attrs := []logging.Attr{
			logging.String("path", b.path),
			logging.String("reason", reason),
			logging.Int("discarded_bytes", len(data)),
			logging.String(logging.FieldErrorHint, "restore the file from a backup if the ratings are needed"),
			logging.String(logging.FieldImpact, "previous ratings in the file were discarded"),
		}
		if decodeErr != nil {
			attrs = append(attrs, logging.Error(decodeErr))
		}
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), message, "ratingstore_reset", attrs...)
		if err := b.write(db); err != nil {
			return nil, err
		}
	case decodeHealed:
		b.logger.Debug("filled missing ratings database fields", logging.String("path", b.path))
	}
	return db, nil
}

// Save overwrites the document with db.
func (b *FileBackend) Save(ctx context.Context, db *Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.write(db)
}

// write replaces the document through a temp file in the same directory so
// the rename stays on one filesystem.
func (b *FileBackend) write(db *Database) error {
	data, err := encode(db)
	if err != nil {
		return &IOError{Op: "encode", Path: b.path, Err: err}
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: b.path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: b.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: b.path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: b.path, Err: err}
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: b.path, Err: err}
	}
	return nil
}

package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"audiopref/internal/logging"
)

const (
	driveFolderMimeType = "application/vnd.google-apps.folder"
	driveDownloadURL    = "https://drive.google.com/uc?export=download&id="
)

// driveGroupFolders are the voice groups looked up under the root folder.
// When neither exists every subfolder of the root is treated as a group.
var driveGroupFolders = []string{"MALE_VOICES", "FEMALE_VOICES"}

// DriveSource lists pair folders from a public Google Drive folder tree:
// root, then voice groups, then one folder per voice holding the assets.
type DriveSource struct {
	service      *drive.Service
	rootID       string
	rawName      string
	improvedName string
	timeout      time.Duration
	logger       *slog.Logger
}

// DriveOptions configures a DriveSource.
type DriveOptions struct {
	APIKey       string
	RootFolderID string
	// Endpoint overrides the Drive API base URL.
	Endpoint     string
	// Timeout bounds each folder listing request.
	Timeout      time.Duration
	RawName      string
	ImprovedName string
}

// NewDriveSource builds a Drive v3 client authenticated with an API key.
func NewDriveSource(ctx context.Context, opts DriveOptions, logger *slog.Logger) (*DriveSource, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if strings.TrimSpace(opts.Endpoint) != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	service, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &DriveSource{
		service:      service,
		rootID:       opts.RootFolderID,
		rawName:      opts.RawName,
		improvedName: opts.ImprovedName,
		timeout:      opts.Timeout,
		logger:       logging.NewComponentLogger(logger, "pairing.drive"),
	}, nil
}

// Folders walks the root folder. Listing failures below the root skip the
// affected folder; a root failure is returned.
func (s *DriveSource) Folders(ctx context.Context) ([]Folder, error) {
	root, err := s.list(ctx, s.rootID)
	if err != nil {
		return nil, fmt.Errorf("list drive root folder: %w", err)
	}

	var groups []*drive.File
	for _, name := range driveGroupFolders {
		for _, file := range root {
			if file.MimeType == driveFolderMimeType && file.Name == name {
				groups = append(groups, file)
				break
			}
		}
	}
	if len(groups) == 0 {
		groups = onlyFolders(root)
	}

	var folders []Folder
	for _, group := range groups {
		contents, err := s.list(ctx, group.Id)
		if err != nil {
			s.warnSkipped(ctx, group, err)
			continue
		}
		voices := onlyFolders(contents)
		if len(voices) == 0 {
			folders = append(folders, s.folder(group, contents))
			continue
		}
		for _, voice := range voices {
			files, err := s.list(ctx, voice.Id)
			if err != nil {
				s.warnSkipped(ctx, voice, err)
				continue
			}
			folders = append(folders, s.folder(voice, files))
		}
	}
	return folders, nil
}

func (s *DriveSource) folder(dir *drive.File, files []*drive.File) Folder {
	folder := Folder{Name: dir.Name, Label: dir.Name}
	for _, file := range files {
		switch {
		case file.Name == s.rawName && folder.Raw == "":
			folder.Raw = driveDownloadURL + file.Id
		case file.Name == s.improvedName && folder.Improved == "":
			folder.Improved = driveDownloadURL + file.Id
		}
	}
	return folder
}

func (s *DriveSource) list(ctx context.Context, parentID string) ([]*drive.File, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	var files []*drive.File
	query := fmt.Sprintf("'%s' in parents and trashed = false", strings.ReplaceAll(parentID, "'", "\\'"))
	call := s.service.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, mimeType)").
		PageSize(1000)
	err := call.Pages(ctx, func(page *drive.FileList) error {
		files = append(files, page.Files...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *DriveSource) warnSkipped(ctx context.Context, folder *drive.File, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "drive folder listing failed", "drive_list_failed",
		logging.String("folder", folder.Name),
		logging.String("folder_id", folder.Id),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that the folder is shared publicly"),
		logging.String(logging.FieldImpact, "pairs in this folder are not offered"))
}

func onlyFolders(files []*drive.File) []*drive.File {
	out := make([]*drive.File, 0, len(files))
	for _, file := range files {
		if file.MimeType == driveFolderMimeType {
			out = append(out, file)
		}
	}
	return out
}

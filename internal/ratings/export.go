package ratings

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// ExportFilename is the download name used for CSV exports.
const ExportFilename = "audio_ratings.csv"

var exportHeader = []string{"User ID", "User Name", "User Email", "Audio A", "Audio B", "Rating A", "Rating B"}

// ExportOptions tunes the CSV rendering.
type ExportOptions struct {
	// Quoted switches to RFC 4180 output, quoting fields that contain commas,
	// quotes or newlines. The default emits values as-is.
	Quoted bool
}

// ExportCSV renders all ratings as CSV. ok is false when there are no ratings.
//
// Values are joined with commas without escaping, so a comma or newline in a
// name, email or path shifts columns. Use ExportCSVWith for quoted output.
func (s *Service) ExportCSV(ctx context.Context) (string, bool, error) {
	return s.ExportCSVWith(ctx, ExportOptions{})
}

// ExportCSVWith renders all ratings as CSV using opts.
func (s *Service) ExportCSVWith(ctx context.Context, opts ExportOptions) (string, bool, error) {
	db, err := s.backend.Load(ctx)
	if err != nil {
		return "", false, fmt.Errorf("export csv: %w", err)
	}
	if len(db.Ratings) == 0 {
		return "", false, nil
	}

	rows := make([][]string, 0, len(db.Ratings)+1)
	rows = append(rows, exportHeader)
	for _, record := range db.Ratings {
		rows = append(rows, exportRow(record))
	}

	if !opts.Quoted {
		lines := make([]string, len(rows))
		for i, row := range rows {
			lines[i] = strings.Join(row, ",")
		}
		return strings.Join(lines, "\n"), true, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", false, fmt.Errorf("export csv: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), true, nil
}

func exportRow(record Record) []string {
	var name, email string
	if record.UserInfo != nil {
		name = record.UserInfo.Name
		email = record.UserInfo.Email
	}
	return []string{
		record.UserID,
		name,
		email,
		record.AudioA,
		record.AudioB,
		strconv.Itoa(record.Rating.RatingA),
		strconv.Itoa(record.Rating.RatingB),
	}
}

package pairing

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const segmentMarker = "_segment"

// DeriveLabel turns a folder name such as "05-alice_segment_003" into the
// display label "alice": the text between the first and second hyphen, cut
// at "_segment". Names that yield nothing fall back to the folder name.
func DeriveLabel(folder string) string {
	parts := strings.Split(folder, "-")
	label := ""
	if len(parts) > 1 {
		label, _, _ = strings.Cut(parts[1], segmentMarker)
	}
	if label == "" {
		label = folder
	}
	return norm.NFC.String(label)
}

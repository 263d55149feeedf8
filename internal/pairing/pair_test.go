package pairing_test

import (
	"testing"

	"audiopref/internal/pairing"
)

func TestCanonicalRemapsSwappedPairs(t *testing.T) {
	unswapped := pairing.Pair{SlotA: "improved", SlotB: "raw", Swapped: false}
	got := unswapped.Canonical(5, 2)
	want := pairing.CanonicalRating{AudioA: "improved", AudioB: "raw", RatingA: 5, RatingB: 2}
	if got != want {
		t.Fatalf("unswapped: got %+v want %+v", got, want)
	}

	swapped := pairing.Pair{SlotA: "raw", SlotB: "improved", Swapped: true}
	got = swapped.Canonical(5, 2)
	want = pairing.CanonicalRating{AudioA: "improved", AudioB: "raw", RatingA: 2, RatingB: 5}
	if got != want {
		t.Fatalf("swapped: got %+v want %+v", got, want)
	}
}

func TestImprovedAndRaw(t *testing.T) {
	for _, p := range []pairing.Pair{
		{SlotA: "improved", SlotB: "raw", Swapped: false},
		{SlotA: "raw", SlotB: "improved", Swapped: true},
	} {
		if p.Improved() != "improved" || p.Raw() != "raw" {
			t.Fatalf("unexpected accessors for %+v", p)
		}
	}
}

func TestPlaybackFallsBackToIdentity(t *testing.T) {
	p := pairing.Pair{SlotA: "s3://b/x/improved.wav", SlotB: "s3://b/x/raw.wav", SlotAURL: "https://signed/a"}
	if p.PlaybackA() != "https://signed/a" {
		t.Fatalf("PlaybackA = %q", p.PlaybackA())
	}
	if p.PlaybackB() != "s3://b/x/raw.wav" {
		t.Fatalf("PlaybackB = %q", p.PlaybackB())
	}
}

func TestDeriveLabel(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"05-alice_segment_003", "alice"},
		{"05-alice", "alice"},
		{"05-bob-extra_segment_1", "bob"},
		{"plainname", "plainname"},
		{"07-_segment_2", "07-_segment_2"},
		{"trailing-", "trailing-"},
		{"x-Zo\u00e9_segment_1", "Zo\u00e9"},
		{"x-Zoe\u0301_segment_1", "Zo\u00e9"},
	}
	for _, tc := range tests {
		if got := pairing.DeriveLabel(tc.folder); got != tc.want {
			t.Fatalf("DeriveLabel(%q) = %q, want %q", tc.folder, got, tc.want)
		}
	}
}

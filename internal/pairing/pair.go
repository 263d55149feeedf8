package pairing

// Pair is one rating pair as shown to a rater. Swapped means the raw asset is
// in SlotA and the improved asset in SlotB. SlotA and SlotB are the stable
// identities ratings are stored under; SlotAURL and SlotBURL, when set,
// are where the client fetches the audio from.
type Pair struct {
	SlotA    string `json:"slotA"`
	SlotB    string `json:"slotB"`
	SlotAURL string `json:"slotAUrl,omitempty"`
	SlotBURL string `json:"slotBUrl,omitempty"`
	Label    string `json:"label"`
	Swapped  bool   `json:"swapped"`
}

// CanonicalRating is a pair rating in stored order.
type CanonicalRating struct {
	AudioA  string
	AudioB  string
	RatingA int
	RatingB int
}

// PlaybackA returns the locator to play for SlotA.
func (p Pair) PlaybackA() string {
	if p.SlotAURL != "" {
		return p.SlotAURL
	}
	return p.SlotA
}

// PlaybackB returns the locator to play for SlotB.
func (p Pair) PlaybackB() string {
	if p.SlotBURL != "" {
		return p.SlotBURL
	}
	return p.SlotB
}

// Improved returns the improved asset identity.
func (p Pair) Improved() string {
	if p.Swapped {
		return p.SlotB
	}
	return p.SlotA
}

// Raw returns the raw asset identity.
func (p Pair) Raw() string {
	if p.Swapped {
		return p.SlotA
	}
	return p.SlotB
}

// Canonical maps the scores given to the displayed slots onto the improved
// (AudioA) and raw (AudioB) assets.
func (p Pair) Canonical(scoreA, scoreB int) CanonicalRating {
	if p.Swapped {
		return CanonicalRating{AudioA: p.SlotB, AudioB: p.SlotA, RatingA: scoreB, RatingB: scoreA}
	}
	return CanonicalRating{AudioA: p.SlotA, AudioB: p.SlotB, RatingA: scoreA, RatingB: scoreB}
}

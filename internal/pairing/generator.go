package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"golang.org/x/text/unicode/norm"

	"audiopref/internal/logging"
)

// Folder is a candidate pair folder reported by a Source. Raw and Improved
// hold stable asset identities and are empty when the asset is missing.
// RawURL and ImprovedURL are optional playback locators for sources whose
// identities are not directly playable. Label is optional; when empty the
// generator derives one from Name.
type Folder struct {
	Name        string
	Label       string
	Raw         string
	Improved    string
	RawURL      string
	ImprovedURL string
}

// Source lists candidate pair folders in its own enumeration order.
type Source interface {
	Folders(ctx context.Context) ([]Folder, error)
}

// Coin returns true when a pair should be shown raw-first.
type Coin func() bool

// FairCoin flips with probability 0.5 using the global generator.
func FairCoin() bool {
	return rand.IntN(2) == 1
}

// SeededCoin returns a deterministic, goroutine-safe coin.
func SeededCoin(seed uint64) Coin {
	var mu sync.Mutex
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		return r.IntN(2) == 1
	}
}

// Generator builds randomized pairs from a Source.
type Generator struct {
	source Source
	coin   Coin
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithCoin replaces the swap decision.
func WithCoin(coin Coin) Option {
	return func(g *Generator) {
		if coin != nil {
			g.coin = coin
		}
	}
}

// NewGenerator returns a generator over source using a fair coin.
func NewGenerator(source Source, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		source: source,
		coin:   FairCoin,
		logger: logging.NewComponentLogger(logger, "pairing"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate lists the source and returns one pair per complete folder, in
// source order. No qualifying folder yields an empty slice and a nil error.
func (g *Generator) Generate(ctx context.Context) ([]Pair, error) {
	folders, err := g.source.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audio folders: %w", err)
	}

	pairs := make([]Pair, 0, len(folders))
	for _, folder := range folders {
		if folder.Raw == "" || folder.Improved == "" {
			g.logger.Debug("skipping incomplete audio folder",
				logging.String("folder", folder.Name),
				logging.Bool("has_raw", folder.Raw != ""),
				logging.Bool("has_improved", folder.Improved != ""))
			continue
		}
		label := folder.Label
		if label == "" {
			label = DeriveLabel(folder.Name)
		} else {
			label = norm.NFC.String(label)
		}
		if g.coin() {
			pairs = append(pairs, Pair{
				SlotA: folder.Raw, SlotB: folder.Improved,
				SlotAURL: folder.RawURL, SlotBURL: folder.ImprovedURL,
				Label: label, Swapped: true,
			})
		} else {
			pairs = append(pairs, Pair{
				SlotA: folder.Improved, SlotB: folder.Raw,
				SlotAURL: folder.ImprovedURL, SlotBURL: folder.RawURL,
				Label: label, Swapped: false,
			})
		}
	}

	logging.WithContext(ctx, g.logger).Debug("generated audio pairs",
		logging.Int("folders", len(folders)),
		logging.Int("pairs", len(pairs)))
	return pairs, nil
}

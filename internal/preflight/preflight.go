package preflight

import (
	"context"
	"path/filepath"

	"audiopref/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The local audio directory is only checked for the local source.
func RunAll(ctx context.Context, cfg *config.Config, gen PairGenerator) []Result {
	if cfg == nil {
		return nil
	}

	dataDir := filepath.Dir(cfg.Paths.DataFile)
	results := []Result{
		CheckDataFile(cfg.Paths.DataFile),
		CheckFreeSpace("Data volume", dataDir, MinFreeBytes),
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Audio.Source == config.SourceLocal {
		results = append(results, CheckReadableDirectory("Audio directory", cfg.Audio.Dir))
	}

	results = append(results, CheckPairs(ctx, gen))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

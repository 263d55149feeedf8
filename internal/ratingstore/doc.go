// Package ratingstore owns the ratings database: a single JSON document holding
// rater details and every submitted rating.
//
// # Storage
//
// The document lives at a configurable path (default
// audio_ratings_db.json in the working directory) and is rewritten whole on
// every save, pretty-printed with a two-space indent so it stays easy to
// inspect or edit by hand:
//
//	{
//	  "users": {"ana@example.com": {"name": "Ana", "email": "ana@example.com"}},
//	  "ratings": [{"userId": "ana@example.com", "audioA": "...", ...}]
//	}
//
// A missing file is created empty. An empty or unparsable file is reset to the
// empty document and the previous contents are discarded. Missing top-level
// fields are filled in memory and written back on the next save.
//
// # Concurrency
//
// Backends do not lock across a load-modify-save cycle. Two callers racing on
// the same document each save their own view and the later save wins. Saves go
// through a temp file and rename, so readers never observe a torn document.
package ratingstore

// Package services defines shared utilities consumed by the HTTP API, the CLI
// and the rating components.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation IDs and rater IDs for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP statuses.
//
// Use these helpers when wiring new handlers so error handling and
// observability stay uniform across the service.
package services

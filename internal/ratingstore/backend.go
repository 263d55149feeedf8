package ratingstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

// Backend loads and saves the whole ratings document.
//
// Load initializes the document when it is absent or corrupt and always
// returns a database with both top-level fields present. Save overwrites the
// document. Implementations do not lock across Load and Save.
type Backend interface {
	Load(ctx context.Context) (*Database, error)
	Save(ctx context.Context, db *Database) error
}

type decodeResult int

const (
	decodeOK decodeResult = iota
	decodeHealed
	decodeEmpty
	decodeCorrupt
)

// decode parses raw document bytes. Empty input and anything that is not a
// JSON object with the expected field types is reported as needing a reset.
func decode(data []byte) (*Database, decodeResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Empty(), decodeEmpty, nil
	}
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return Empty(), decodeCorrupt, err
	}
	if db.heal() {
		return &db, decodeHealed, nil
	}
	return &db, decodeOK, nil
}

// Reset reasons reported with the ratingstore_reset event.
const (
	resetEmpty          = "empty"
	resetInvalidJSON    = "invalid_json"
	resetSchemaMismatch = "schema_mismatch"
)

// resetReason tells a document that is not JSON apart from valid JSON whose
// shape does not match the ratings schema.
func resetReason(result decodeResult, err error) string {
	if result == decodeEmpty {
		return resetEmpty
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return resetSchemaMismatch
	}
	return resetInvalidJSON
}

package ratingstore

import (
	"context"
	"sync"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps the ratings document in process memory. It stores the
// encoded bytes, so Load and Save follow the same decode and reset rules as
// FileBackend and callers never share state with the backend.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemoryBackend returns an empty, uninitialized in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Seed replaces the stored document with raw bytes, which need not be valid JSON.
func (b *MemoryBackend) Seed(raw []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte(nil), raw...)
	b.set = true
}

// Raw returns a copy of the stored document bytes and whether it has been initialized.
func (b *MemoryBackend) Raw() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...), b.set
}

func (b *MemoryBackend) Load(ctx context.Context) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.set {
		db := Empty()
		if err := b.store(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, result, _ := decode(b.data)
	if result == decodeEmpty || result == decodeCorrupt {
		if err := b.store(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (b *MemoryBackend) Save(ctx context.Context, db *Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(db)
}

func (b *MemoryBackend) store(db *Database) error {
	data, err := encode(db)
	if err != nil {
		return &IOError{Op: "encode", Path: "memory", Err: err}
	}
	b.data = data
	b.set = true
	return nil
}

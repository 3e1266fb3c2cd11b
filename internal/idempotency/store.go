// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package idempotency

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/kinetrace/internal/config"
	"github.com/tomtom215/kinetrace/internal/logging"
)

// MaxKeyLength is the longest accepted Idempotency-Key header value.
const MaxKeyLength = 255

const (
	keyPrefix  = "idem:"
	gcRatio    = 0.5
	defaultTTL = 24 * time.Hour
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("idempotency store is closed")

// Response is a remembered HTTP answer.
type Response struct {
	Status   int             `json:"status"`
	Body     json.RawMessage `json:"body"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store is a TTL-bounded response cache backed by BadgerDB.
type Store struct {
	db       *badger.DB
	ttl      time.Duration
	inMemory bool

	mu     sync.RWMutex
	closed bool
}

// Open opens the store at cfg.Path, or in memory when the path is empty.
func Open(cfg config.IdempotencyConfig) (*Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	inMemory := cfg.Path == ""
	opts := badger.DefaultOptions(cfg.Path)
	if inMemory {
		opts = opts.WithInMemory(true)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", inMemory).
		Dur("ttl", ttl).
		Msg("Idempotency store opened")

	return &Store{db: db, ttl: ttl, inMemory: inMemory}, nil
}

// ValidateKey checks an Idempotency-Key header value: 1 to MaxKeyLength
// printable ASCII characters.
func ValidateKey(key string) error {
	if key == "" || len(key) > MaxKeyLength {
		return fmt.Errorf("idempotency key must be 1 to %d characters", MaxKeyLength)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x20 || key[i] > 0x7e {
			return fmt.Errorf("idempotency key must be printable ASCII")
		}
	}
	return nil
}

// ScopedKey combines a device and a client key into a storage key.
func ScopedKey(device, key string) string {
	return device + "\x00" + key
}

// Get returns the response stored under key. ok is false when the key is
// unknown or expired.
func (s *Store) Get(key string) (resp *Response, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var r Response
			if err := json.Unmarshal(val, &r); err != nil {
				return fmt.Errorf("decode stored response: %w", err)
			}
			resp = &r
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("read idempotency key: %w", err)
	}
	return resp, resp != nil, nil
}

// Put stores resp under key for the configured TTL, replacing any previous
// value.
func (s *Store) Put(key string, resp Response) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if resp.StoredAt.IsZero() {
		resp.StoredAt = time.Now().UTC()
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(keyPrefix+key), data).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("write idempotency key: %w", err)
	}
	return nil
}

// TTL returns how long responses are kept.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// RunGC runs value-log garbage collection until nothing is left to rewrite.
// rewritten reports whether any file was reclaimed. In-memory stores have no
// value log and return immediately.
func (s *Store) RunGC() (rewritten bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	if s.inMemory {
		return false, nil
	}

	for {
		err := s.db.RunValueLogGC(gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, fmt.Errorf("run GC: %w", err)
		}
		rewritten = true
	}
}

// Close closes the underlying database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Idempotency store closed")
	return nil
}

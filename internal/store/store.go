// Concierge - Conversational Discovery for Streaming Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/concierge

// Package store wraps BadgerDB as the shared key-value store backing
// session state and quota counters. It exposes exactly the operations
// the session layer needs: JSON get/set with TTL, delete, and an atomic
// counter increment.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("store: key not found")

// incrementRetries bounds optimistic-concurrency retries on counter
// updates. Badger aborts conflicting transactions rather than blocking.
const incrementRetries = 16

// Store is a thin, typed facade over a Badger database.
// Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Options configures Open.
type Options struct {
	// Dir is the on-disk location of the database. Ignored when InMemory.
	Dir string

	// InMemory runs the database without persistence, for tests and
	// ephemeral deployments.
	InMemory bool
}

// Open opens or creates the backing database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(opts Options, logger zerolog.Logger) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get unmarshals the JSON value stored at key into out.
// Returns ErrNotFound when the key is absent or expired.
func (s *Store) Get(ctx context.Context, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %q: %w", key, err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// SetTTL stores value as JSON at key with the given time-to-live.
// A zero ttl stores the entry without expiry.
func (s *Store) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key. Deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Increment atomically adds one to the integer counter at key and
// returns the new value. The counter is created with the given TTL on
// first use. Conflicting concurrent increments are retried, so no
// update is lost.
func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var value int64

	for attempt := 0; attempt < incrementRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			current, err := readCounter(txn, key)
			if err != nil {
				return err
			}

			value = current + 1
			entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(value, 10)))
			if ttl > 0 {
				entry = entry.WithTTL(ttl)
			}
			return txn.SetEntry(entry)
		})

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("increment %q: %w", key, err)
		}
		return value, nil
	}

	return 0, fmt.Errorf("increment %q: %w", key, badger.ErrConflict)
}

// GetCounter returns the current value of the counter at key, or zero
// when it does not exist.
func (s *Store) GetCounter(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var value int64
	err := s.db.View(func(txn *badger.Txn) error {
		current, err := readCounter(txn, key)
		if err != nil {
			return err
		}
		value = current
		return nil
	})
	return value, err
}

// RunGC triggers one value-log garbage collection cycle. Returns nil
// when there was nothing to rewrite or the database is in-memory.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// readCounter reads the integer at key within txn, treating a missing
// key as zero.
func readCounter(txn *badger.Txn, key string) (int64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %q: %w", key, err)
	}

	var value int64
	err = item.Value(func(val []byte) error {
		parsed, perr := strconv.ParseInt(string(val), 10, 64)
		if perr != nil {
			return fmt.Errorf("counter %q holds non-numeric value: %w", key, perr)
		}
		value = parsed
		return nil
	})
	return value, err
}

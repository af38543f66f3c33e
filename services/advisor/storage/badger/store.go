// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

// =============================================================================
// Quote Persistence
// =============================================================================
//
// Formatted market quotes are cheap to re-fetch but rate-limited upstream.
// This store persists them in BadgerDB with a short TTL so repeated
// questions about the same symbol within a session hit the embedded store
// instead of the quote API.
//
// Storage layout:
//
//	quote/v1/{SYMBOL}  →  formatted quote block (raw bytes)
//	                       TTL: 15 minutes

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// quoteKeyPrefix is prepended to the symbol to form the BadgerDB key.
// Versioned (v1) to allow future format changes without collision.
const quoteKeyPrefix = "quote/v1/"

// defaultQuoteTTL bounds quote staleness. Market data older than this is
// worth a fresh fetch.
const defaultQuoteTTL = 15 * time.Minute

// Config holds the store's tunables.
type Config struct {
	// Dir is the BadgerDB data directory. Required.
	Dir string
	// TTL is the lifetime of each cached quote. Zero means the default
	// (15 minutes).
	TTL time.Duration
}

// DefaultConfig returns a Config with the default TTL for the given
// data directory.
func DefaultConfig(dir string) Config {
	return Config{Dir: dir, TTL: defaultQuoteTTL}
}

// QuoteStore persists formatted quote blocks in an embedded BadgerDB.
//
// # Description
//
// Get and Set never surface storage errors to callers: the quote cache is
// an optimization, and a failed read or write degrades to a cache miss or
// a dropped write, logged at warn level. Expired keys return
// ErrKeyNotFound from BadgerDB, which reads treat as a miss.
//
// # Thread Safety
//
// Safe for concurrent use. BadgerDB transactions are per-goroutine.
type QuoteStore struct {
	db     *dgbadger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open opens (or creates) the BadgerDB at cfg.Dir and returns a ready
// QuoteStore. The caller must Close the store on shutdown.
func Open(cfg Config, logger *slog.Logger) (*QuoteStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("badger quote store: data directory is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultQuoteTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := dgbadger.DefaultOptions(cfg.Dir).WithLogger(nil)
	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.Dir, err)
	}

	logger.Info("quote store opened",
		slog.String("dir", cfg.Dir),
		slog.Duration("ttl", cfg.TTL),
	)
	return &QuoteStore{db: db, ttl: cfg.TTL, logger: logger}, nil
}

// Close releases the underlying BadgerDB.
func (s *QuoteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close quote store: %w", err)
	}
	return nil
}

// Get retrieves a cached quote block for the symbol. The second return is
// false on miss, expiry, or storage failure.
func (s *QuoteStore) Get(symbol string) (string, bool) {
	var raw []byte
	err := s.db.View(func(txn *dgbadger.Txn) error {
		item, err := txn.Get(quoteKey(symbol))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, dgbadger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Warn("quote store read failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	return string(raw), true
}

// Set stores a quote block for the symbol with the configured TTL.
func (s *QuoteStore) Set(symbol, quote string) {
	err := s.db.Update(func(txn *dgbadger.Txn) error {
		entry := dgbadger.NewEntry(quoteKey(symbol), []byte(quote)).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		s.logger.Warn("quote store write failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
	}
}

// quoteKey builds the BadgerDB key for the given symbol.
func quoteKey(symbol string) []byte {
	return []byte(quoteKeyPrefix + symbol)
}

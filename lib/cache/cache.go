// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/lattice/lib/clock"
	"github.com/bureau-foundation/lattice/lib/codec"
	"github.com/bureau-foundation/lattice/lib/contenthash"
	"github.com/bureau-foundation/lattice/lib/sqlitepool"
)

// FileName is the cache database filename inside the memory
// directory.
const FileName = "cache.db"

// Named caches. Names are stable on-disk identifiers: renaming one
// orphans its rows (harmless, but they sit until clear-caches).
const (
	FileAnalysis   = "file_analysis"
	EmbeddingsMeta = "embeddings_meta"
	TrackerData    = "tracker_data"
)

// Policy bounds one named cache.
type Policy struct {
	// TTL is how long entries stay valid. Zero means no expiry.
	TTL time.Duration

	// MaxEntries caps the cache size; the least recently used rows
	// are evicted on write once the cap is exceeded. Zero means
	// unbounded.
	MaxEntries int
}

// Stats reports one named cache's counters. Hits and misses are
// process-lifetime; Entries is the current row count.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

// Store is the cache database: a fixed-size pool of SQLite
// connections over one file. Safe for concurrent use; individual
// connections never leave this package.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
	clk    clock.Clock
	path   string

	mu       sync.Mutex
	policies map[string]Policy
	counters map[string]*counter
}

type counter struct {
	hits   int64
	misses int64
}

var schema = `
CREATE TABLE IF NOT EXISTS entries (
	cache        TEXT NOT NULL,
	key          TEXT NOT NULL,
	value        BLOB NOT NULL,
	content_hash TEXT NOT NULL DEFAULT '',
	expires_at   INTEGER NOT NULL DEFAULT 0,
	last_access  INTEGER NOT NULL,
	PRIMARY KEY (cache, key)
);
CREATE INDEX IF NOT EXISTS entries_lru ON entries (cache, last_access);
`

// Open opens (creating if needed) the cache database at path. The
// parent directory must exist. logger may be nil; clk nil means the
// real clock.
func Open(path string, logger *slog.Logger, clk clock.Clock) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache: path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.Real()
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      path,
		Logger:    logger,
		OnConnect: applySchema,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}

	logger.Debug("cache opened", "path", path)

	return &Store{
		pool:     pool,
		logger:   logger,
		clk:      clk,
		path:     path,
		policies: make(map[string]Policy),
		counters: make(map[string]*counter),
	}, nil
}

// applySchema creates the entries table. Runs once per pooled
// connection, on first use; the pool has already applied the
// standard pragmas.
func applySchema(conn *sqlite.Conn) error {
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("cache: applying schema: %w", err)
	}
	return nil
}

// Close closes the pool. Blocks until borrowed connections return.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("cache: closing %s: %w", s.path, err)
	}
	return nil
}

// SetPolicy configures TTL and size cap for a named cache. Policies
// apply to subsequent writes; existing rows keep their recorded
// expiry.
func (s *Store) SetPolicy(cache string, policy Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[cache] = policy
}

func (s *Store) policy(cache string) Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policies[cache]
}

func (s *Store) count(cache string, hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters[cache]
	if c == nil {
		c = &counter{}
		s.counters[cache] = c
	}
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Get looks up (cache, key) and decodes the stored value into out.
// Returns false on a miss. An entry whose recorded content hash
// differs from hash, or whose TTL has lapsed, is deleted and counts
// as a miss — stale data is never returned. A zero hash skips the
// content check.
func (s *Store) Get(ctx context.Context, cacheName, key string, hash contenthash.Hash, out any) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("cache: get: %w", err)
	}
	defer s.pool.Put(conn)

	now := s.clk.Now().Unix()

	var value []byte
	var storedHash string
	var expiresAt int64
	found := false
	err = sqlitex.Execute(conn,
		"SELECT value, content_hash, expires_at FROM entries WHERE cache = ? AND key = ?",
		&sqlitex.ExecOptions{
			Args: []any{cacheName, key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				value = make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, value)
				storedHash = stmt.ColumnText(1)
				expiresAt = stmt.ColumnInt64(2)
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("cache: get %s/%s: %w", cacheName, key, err)
	}

	if !found {
		s.count(cacheName, false)
		return false, nil
	}

	expired := expiresAt > 0 && expiresAt <= now
	stale := !hash.IsZero() && storedHash != hash.String()
	if expired || stale {
		err = sqlitex.Execute(conn, "DELETE FROM entries WHERE cache = ? AND key = ?",
			&sqlitex.ExecOptions{Args: []any{cacheName, key}})
		if err != nil {
			return false, fmt.Errorf("cache: dropping stale %s/%s: %w", cacheName, key, err)
		}
		s.count(cacheName, false)
		return false, nil
	}

	if err := codec.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("cache: decode %s/%s: %w", cacheName, key, err)
	}

	err = sqlitex.Execute(conn, "UPDATE entries SET last_access = ? WHERE cache = ? AND key = ?",
		&sqlitex.ExecOptions{Args: []any{now, cacheName, key}})
	if err != nil {
		return false, fmt.Errorf("cache: touch %s/%s: %w", cacheName, key, err)
	}

	s.count(cacheName, true)
	return true, nil
}

// Put stores value under (cache, key), replacing any previous entry.
// The cache's policy decides expiry and triggers LRU eviction when
// the size cap is exceeded.
func (s *Store) Put(ctx context.Context, cacheName, key string, hash contenthash.Hash, value any) error {
	encoded, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s/%s: %w", cacheName, key, err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	defer s.pool.Put(conn)

	policy := s.policy(cacheName)
	now := s.clk.Now()
	var expiresAt int64
	if policy.TTL > 0 {
		expiresAt = now.Add(policy.TTL).Unix()
	}
	hashText := ""
	if !hash.IsZero() {
		hashText = hash.String()
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO entries (cache, key, value, content_hash, expires_at, last_access)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (cache, key) DO UPDATE SET
		   value = excluded.value,
		   content_hash = excluded.content_hash,
		   expires_at = excluded.expires_at,
		   last_access = excluded.last_access`,
		&sqlitex.ExecOptions{
			Args: []any{cacheName, key, encoded, hashText, expiresAt, now.Unix()},
		})
	if err != nil {
		return fmt.Errorf("cache: put %s/%s: %w", cacheName, key, err)
	}

	if policy.MaxEntries > 0 {
		if err := s.evict(conn, cacheName, policy.MaxEntries); err != nil {
			return err
		}
	}
	return nil
}

// evict removes least-recently-used rows beyond maxEntries. Ties on
// last_access break by key so eviction is deterministic.
func (s *Store) evict(conn *sqlite.Conn, cacheName string, maxEntries int) error {
	var total int64
	err := sqlitex.Execute(conn, "SELECT COUNT(*) FROM entries WHERE cache = ?",
		&sqlitex.ExecOptions{
			Args: []any{cacheName},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				total = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("cache: evict count %s: %w", cacheName, err)
	}

	excess := total - int64(maxEntries)
	if excess <= 0 {
		return nil
	}

	err = sqlitex.Execute(conn,
		`DELETE FROM entries WHERE cache = ?1 AND key IN (
		   SELECT key FROM entries WHERE cache = ?1
		   ORDER BY last_access ASC, key ASC LIMIT ?2)`,
		&sqlitex.ExecOptions{Args: []any{cacheName, excess}})
	if err != nil {
		return fmt.Errorf("cache: evict %s: %w", cacheName, err)
	}
	s.logger.Debug("cache evicted", "cache", cacheName, "rows", excess)
	return nil
}

// Invalidate deletes every entry in the named cache whose key starts
// with prefix. Returns the number of rows removed. An empty prefix
// clears the whole cache.
func (s *Store) Invalidate(ctx context.Context, cacheName, prefix string) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache: invalidate: %w", err)
	}
	defer s.pool.Put(conn)

	// substr comparison instead of LIKE/GLOB: prefixes are arbitrary
	// path fragments and must not be parsed for wildcards.
	err = sqlitex.Execute(conn,
		"DELETE FROM entries WHERE cache = ? AND substr(key, 1, ?) = ?",
		&sqlitex.ExecOptions{Args: []any{cacheName, len(prefix), prefix}})
	if err != nil {
		return 0, fmt.Errorf("cache: invalidate %s/%s*: %w", cacheName, prefix, err)
	}
	return conn.Changes(), nil
}

// ClearAll deletes every entry in every named cache and returns the
// number of rows removed. Hit/miss counters survive; they describe
// the process, not the database.
func (s *Store) ClearAll(ctx context.Context) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache: clear: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM entries", nil); err != nil {
		return 0, fmt.Errorf("cache: clear: %w", err)
	}
	return conn.Changes(), nil
}

// Stats returns per-cache counters plus current row counts. Caches
// that exist only on disk (rows but no process activity) and caches
// that exist only in counters (activity but zero rows) both appear.
func (s *Store) Stats(ctx context.Context) (map[string]Stats, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: stats: %w", err)
	}
	defer s.pool.Put(conn)

	result := make(map[string]Stats)
	err = sqlitex.Execute(conn,
		"SELECT cache, COUNT(*) FROM entries GROUP BY cache",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result[stmt.ColumnText(0)] = Stats{Entries: stmt.ColumnInt64(1)}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("cache: stats: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, c := range s.counters {
		stats := result[name]
		stats.Hits = c.hits
		stats.Misses = c.misses
		result[name] = stats
	}
	return result, nil
}

// Names returns the cache names present in stats output, sorted.
// Convenience for stable CLI rendering.
func Names(stats map[string]Stats) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

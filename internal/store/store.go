// Package store is the persistence layer: a flat string key/value table in a
// local SQLite file, mirroring the key layout the web version kept in
// localStorage (questions:{entity}, draft:{entity}, submitCount:{entity}:{submitter},
// deviceCount:{entity}).
//
// Persistence is best-effort: when the database cannot be opened or written,
// the KV degrades to a session-only in-memory overlay and reports the failure
// as a *StorageError the caller may ignore. The UI must keep working without
// a working disk.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	Dir string
}

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), "condeck.sqlite")
}

func (s Store) ensure() error {
	return os.MkdirAll(filepath.Clean(s.Dir), 0o755)
}

// StorageError marks a recoverable persistence failure. Operations that
// return one have still taken effect in memory for the session.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// KV is a namespaced string key/value store. Safe for use from a single
// event loop; the mutex only guards the in-memory overlay against the odd
// background goroutine.
type KV struct {
	db *sql.DB

	mu sync.Mutex
	// mem overlays the database: entries land here when a write fails (or the
	// KV is memory-only) and shadow the database on reads.
	mem     map[string]string
	deleted map[string]bool
}

// Open opens (creating if needed) the SQLite-backed KV. On failure it returns
// a memory-only KV alongside the error so the caller can degrade gracefully.
func (s Store) Open(ctx context.Context) (*KV, error) {
	if err := s.ensure(); err != nil {
		return NewMemory(), &StorageError{Op: "open", Key: s.sqlitePath(), Err: err}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return NewMemory(), &StorageError{Op: "open", Key: s.sqlitePath(), Err: err}
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return NewMemory(), &StorageError{Op: "open", Key: s.sqlitePath(), Err: err}
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return NewMemory(), &StorageError{Op: "migrate", Key: s.sqlitePath(), Err: err}
	}
	return &KV{db: db, mem: map[string]string{}, deleted: map[string]bool{}}, nil
}

// NewMemory returns a KV with no backing database (session-only).
func NewMemory() *KV {
	return &KV{mem: map[string]string{}, deleted: map[string]bool{}}
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (kv *KV) Close() error {
	if kv.db == nil {
		return nil
	}
	return kv.db.Close()
}

// Get reads a key. The in-memory overlay shadows the database so that a
// failed write followed by a read still observes the write.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	kv.mu.Lock()
	if kv.deleted[key] {
		kv.mu.Unlock()
		return "", false, nil
	}
	if v, ok := kv.mem[key]; ok {
		kv.mu.Unlock()
		return v, true, nil
	}
	kv.mu.Unlock()

	if kv.db == nil {
		return "", false, nil
	}
	var v string
	err := kv.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	return v, true, nil
}

// Set writes a key. On database failure the value is kept in the session
// overlay and a *StorageError is returned; subsequent Gets still see it.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	kv.mu.Lock()
	delete(kv.deleted, key)
	kv.mu.Unlock()

	if kv.db == nil {
		kv.remember(key, value)
		return nil
	}
	_, err := kv.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		key, value, time.Now().UTC().UnixMilli())
	if err != nil {
		kv.remember(key, value)
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	// Drop any stale overlay entry so the database is authoritative again.
	kv.mu.Lock()
	delete(kv.mem, key)
	kv.mu.Unlock()
	return nil
}

func (kv *KV) remember(key, value string) {
	kv.mu.Lock()
	kv.mem[key] = value
	kv.mu.Unlock()
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	kv.mu.Lock()
	delete(kv.mem, key)
	kv.deleted[key] = true
	kv.mu.Unlock()

	if kv.db == nil {
		return nil
	}
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Keys returns all keys with the given prefix, overlay included.
func (kv *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	kv.mu.Lock()
	for k := range kv.mem {
		if strings.HasPrefix(k, prefix) && !kv.deleted[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	deleted := make(map[string]bool, len(kv.deleted))
	for k := range kv.deleted {
		deleted[k] = true
	}
	kv.mu.Unlock()

	if kv.db != nil {
		rows, err := kv.db.QueryContext(ctx, `SELECT k FROM kv WHERE k LIKE ? ESCAPE '\'`, likePrefix(prefix))
		if err != nil {
			return out, &StorageError{Op: "keys", Key: prefix, Err: err}
		}
		defer rows.Close()
		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				return out, &StorageError{Op: "keys", Key: prefix, Err: err}
			}
			if !seen[k] && !deleted[k] {
				out = append(out, k)
			}
		}
		if err := rows.Err(); err != nil {
			return out, &StorageError{Op: "keys", Key: prefix, Err: err}
		}
	}
	return out, nil
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

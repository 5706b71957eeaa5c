// Package buildcache implements the incremental compilation cache
// described in SPEC_FULL.md §4.7: a per-project sqlite-backed record of
// which modules have already been emitted, keyed by absolute path and a
// combined hash (the module's own content plus every transitive
// import's combined hash), so a repeat compilation can skip
// re-emitting a module only when nothing it depends on, directly or
// transitively, has changed. This is pure optimisation — disabling it
// (or deleting the cache file) must never change observable compiler
// output.
package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/uuid"
)

// Cache wraps one sqlite database file for one project's .myra-cache
// directory.
type Cache struct {
	db *sql.DB
}

// Open creates (if needed) and opens the cache database at path,
// migrating its schema. Callers should defer Close.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS modules (
	path            TEXT PRIMARY KEY,
	content_hash    TEXT NOT NULL,
	compilation_id  TEXT NOT NULL,
	emitted_at_unix INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// HashOf returns the content hash of src. Callers combine this with
// each import's own combined hash (see driver.combinedHash) before
// calling Lookup/Record, so the stored key reflects a module's full
// transitive dependency closure, not just its own bytes.
func HashOf(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Entry is one cached module record.
type Entry struct {
	Path          string
	ContentHash   string
	CompilationID string
	EmittedAt     time.Time
}

// Lookup reports whether absPath's current combined hash (own content
// plus every transitive import's combined hash) matches the cached
// entry — a hit means the driver may reuse the previously written
// header/source pair instead of re-running the pipeline. A hit on a
// combined hash is only valid when every transitive import was itself
// already confirmed unchanged, since that is what the hash folds in.
func (c *Cache) Lookup(absPath string, combinedHash string) (Entry, bool, error) {
	row := c.db.QueryRow(`SELECT path, content_hash, compilation_id, emitted_at_unix FROM modules WHERE path = ?`, absPath)
	var e Entry
	var unix int64
	if err := row.Scan(&e.Path, &e.ContentHash, &e.CompilationID, &unix); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	e.EmittedAt = time.Unix(unix, 0)
	return e, e.ContentHash == combinedHash, nil
}

// Record upserts absPath's current combined hash and the compilation ID
// that just (re-)emitted it, stamping the current time.
func (c *Cache) Record(absPath string, combinedHash string, compilationID uuid.UUID, now time.Time) error {
	_, err := c.db.Exec(`
INSERT INTO modules (path, content_hash, compilation_id, emitted_at_unix) VALUES (?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET content_hash=excluded.content_hash, compilation_id=excluded.compilation_id, emitted_at_unix=excluded.emitted_at_unix`,
		absPath, combinedHash, compilationID.String(), now.Unix())
	return err
}

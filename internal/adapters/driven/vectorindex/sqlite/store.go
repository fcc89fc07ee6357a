// Package sqlite provides SQLite-persisted vector collections.
//
// All named collections share one database file. Queries load the
// collection's rows and rank them with a brute-force scan in Go, which
// is fast enough for course-sized corpora while keeping the index
// durable across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/studium-labs/studium-cli/internal/adapters/driven/vectorindex/sqlite/migrations"
	"github.com/studium-labs/studium-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed vector index holding any number of named
// collections.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a vector index at the specified data directory.
// If dataDir is empty, defaults to ~/.studium/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".studium", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Collection returns the named collection backed by this store.
func (s *Store) Collection(name string) driven.VectorCollection {
	return &collection{store: s, name: name}
}

// migrate applies any pending .up.sql migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// collection implements driven.VectorCollection over one named slice of
// the entries table.
type collection struct {
	store *Store
	name  string
}

var _ driven.VectorCollection = (*collection)(nil)

// Upsert inserts or overwrites entries keyed by ID.
func (c *collection) Upsert(ctx context.Context, entries []driven.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (collection, id, document, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document = excluded.document,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("upsert entry: empty ID")
		}
		metadataJSON, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		blob := float32SliceToBytes(entry.Embedding)
		if _, err := stmt.ExecContext(ctx, c.name, entry.ID, entry.Document, blob, string(metadataJSON)); err != nil {
			return fmt.Errorf("upserting entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Get retrieves entries by ID. Missing IDs are skipped.
func (c *collection) Get(ctx context.Context, ids []string) ([]driven.Entry, error) {
	results := make([]driven.Entry, 0, len(ids))
	for _, id := range ids {
		row := c.store.db.QueryRowContext(ctx, `
			SELECT id, document, embedding, metadata
			FROM entries WHERE collection = ? AND id = ?
		`, c.name, id)

		entry, err := scanEntry(row.Scan)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, nil
}

// Query loads the collection, keeps entries matching the filter and
// returns the k nearest by L2 distance.
func (c *collection) Query(ctx context.Context, embedding []float32, k int, filter driven.Filter) ([]driven.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("number of requested results must be positive, got %d", k)
	}

	entries, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]driven.Hit, 0, len(entries))
	for _, entry := range entries {
		if !filter.Matches(entry.Metadata) {
			continue
		}
		hits = append(hits, driven.Hit{
			Entry:    entry,
			Distance: l2Distance(embedding, entry.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// List returns every entry in the collection.
func (c *collection) List(ctx context.Context) ([]driven.Entry, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, document, embedding, metadata
		FROM entries WHERE collection = ?
	`, c.name)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []driven.Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries.
func (c *collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries WHERE collection = ?
	`, c.name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// Clear removes every entry in the collection.
func (c *collection) Clear(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM entries WHERE collection = ?", c.name); err != nil {
		return fmt.Errorf("clearing collection: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store holds the connection.
func (c *collection) Close() error {
	return nil
}

// scanEntry reads one entry row through the given scan function so it
// works for both *sql.Row and *sql.Rows.
func scanEntry(scan func(dest ...any) error) (driven.Entry, error) {
	var entry driven.Entry
	var blob []byte
	var metadataJSON string

	if err := scan(&entry.ID, &entry.Document, &blob, &metadataJSON); err != nil {
		if err == sql.ErrNoRows {
			return driven.Entry{}, err
		}
		return driven.Entry{}, fmt.Errorf("scanning entry: %w", err)
	}

	entry.Embedding = bytesToFloat32Slice(blob)
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
			return driven.Entry{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return entry, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	for i := n; i < len(a); i++ {
		sum += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		sum += float64(b[i]) * float64(b[i])
	}
	return math.Sqrt(sum)
}

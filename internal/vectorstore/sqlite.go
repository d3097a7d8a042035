package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strings"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteIndex stores vectors in a local SQLite file. Distances are computed in
// the application since SQLite has no vector operators.
type SQLiteIndex struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (or creates) the SQLite database at path. The collection
// name becomes the table name.
func OpenSQLite(path, collection string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if !identPattern.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	// modernc.org/sqlite takes pragmas as _pragma= DSN parameters.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteIndex{db: db, table: collection}, nil
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// Backend returns "sqlite".
func (s *SQLiteIndex) Backend() string { return "sqlite" }

// Ensure creates the collection table.
func (s *SQLiteIndex) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		document TEXT NOT NULL,
		embedding BLOB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Add inserts points in one transaction.
func (s *SQLiteIndex) Add(ctx context.Context, ids []string, vectors [][]float32, documents []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap(err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+s.table+` (id, document, embedding) VALUES (?, ?, ?)`)
	if err != nil {
		return s.wrap(err)
	}
	defer func() { _ = stmt.Close() }()

	for i, id := range ids {
		var vec []float32
		if i < len(vectors) {
			vec = vectors[i]
		}
		if _, err := stmt.ExecContext(ctx, id, documents[i], encodeVector(vec)); err != nil {
			return s.wrap(err)
		}
	}
	return s.wrap(tx.Commit())
}

// Query scans every row and returns the k nearest by cosine distance.
func (s *SQLiteIndex) Query(ctx context.Context, vector []float32, k int) (Hits, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document, embedding FROM `+s.table+` ORDER BY seq`)
	if err != nil {
		return Hits{}, s.wrap(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []memoryEntry
	for rows.Next() {
		var e memoryEntry
		var blob []byte
		if err := rows.Scan(&e.id, &e.document, &blob); err != nil {
			return Hits{}, fmt.Errorf("failed to scan point: %w", err)
		}
		e.vector = decodeVector(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return Hits{}, s.wrap(err)
	}
	return nearest(entries, vector, k), nil
}

// Count returns the number of rows.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&n); err != nil {
		return 0, s.wrap(err)
	}
	return n, nil
}

// Clear deletes every row.
func (s *SQLiteIndex) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table)
	return s.wrap(err)
}

// wrap maps a missing table to ErrNotInitialized.
func (s *SQLiteIndex) wrap(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return err
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}

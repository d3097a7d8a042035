// Package db provides PostgreSQL storage for archived pipeline results.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// ResultInfo summarises one archived result.
type ResultInfo struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	Size     int       `json:"size"`
	Modified time.Time `json:"modified"`
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// EnsureSchema creates the results table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS results (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// SaveResult stores a JSON result and returns its ID.
func (db *DB) SaveResult(ctx context.Context, kind string, content any) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO results (id, kind, content) VALUES ($1, $2, $3)`,
		id, kind, jsonBytes,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save %s result: %w", kind, err)
	}
	return id, nil
}

// GetResult returns the JSON content of a result, or nil if it does not exist.
func (db *DB) GetResult(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT content FROM results WHERE id = $1`, id).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result %s: %w", id, err)
	}
	return content, nil
}

// ListResults lists archived results, newest first.
func (db *DB) ListResults(ctx context.Context) ([]ResultInfo, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, kind, octet_length(content::text), created_at
		 FROM results
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	list := []ResultInfo{}
	for rows.Next() {
		var r ResultInfo
		if err := rows.Scan(&r.ID, &r.Kind, &r.Size, &r.Modified); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

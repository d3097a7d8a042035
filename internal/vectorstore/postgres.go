package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// PostgresIndex stores vectors in a pgvector column and lets Postgres rank
// them with the cosine distance operator.
type PostgresIndex struct {
	pool       *pgxpool.Pool
	collection string
	dimension  int
}

// ConnectPostgres opens a pool whose connections have the vector type
// registered. The vector extension is created if missing.
func ConnectPostgres(ctx context.Context, databaseURL, collection string, dimension int) (*PostgresIndex, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresIndex{pool: pool, collection: collection, dimension: dimension}, nil
}

// Close closes the pool.
func (p *PostgresIndex) Close() {
	p.pool.Close()
}

// Backend returns "postgres".
func (p *PostgresIndex) Backend() string { return "postgres" }

// Ensure creates the points table.
func (p *PostgresIndex) Ensure(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS resume_points (
		seq BIGSERIAL PRIMARY KEY,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		document TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (collection, id)
	)`, p.dimension))
	if err != nil {
		return fmt.Errorf("failed to create resume_points table: %w", err)
	}
	return nil
}

// Add inserts points in one batch.
func (p *PostgresIndex) Add(ctx context.Context, ids []string, vectors [][]float32, documents []string) error {
	batch := &pgx.Batch{}
	for i, id := range ids {
		vec := make([]float32, p.dimension)
		if i < len(vectors) {
			copy(vec, vectors[i])
		}
		batch.Queue(
			`INSERT INTO resume_points (collection, id, document, embedding) VALUES ($1, $2, $3, $4)`,
			p.collection, id, documents[i], pgvector.NewVector(vec),
		)
	}

	br := p.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range ids {
		if _, err := br.Exec(); err != nil {
			return p.wrap(err)
		}
	}
	return nil
}

// Query orders points by cosine distance in the database.
func (p *PostgresIndex) Query(ctx context.Context, vector []float32, k int) (Hits, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, document, embedding <=> $1 AS distance
		 FROM resume_points
		 WHERE collection = $2
		 ORDER BY distance, seq
		 LIMIT $3`,
		pgvector.NewVector(vector), p.collection, k,
	)
	if err != nil {
		return Hits{}, p.wrap(err)
	}
	defer rows.Close()

	var hits Hits
	for rows.Next() {
		var id, doc string
		var distance *float64
		if err := rows.Scan(&id, &doc, &distance); err != nil {
			return Hits{}, fmt.Errorf("failed to scan point: %w", err)
		}
		d := 1.0
		// Zero vectors have undefined cosine distance.
		if distance != nil && !math.IsNaN(*distance) {
			d = *distance
		}
		hits.IDs = append(hits.IDs, id)
		hits.Documents = append(hits.Documents, doc)
		hits.Distances = append(hits.Distances, d)
	}
	return hits, p.wrap(rows.Err())
}

// Count returns the number of points in the collection.
func (p *PostgresIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM resume_points WHERE collection = $1`, p.collection).Scan(&n)
	if err != nil {
		return 0, p.wrap(err)
	}
	return n, nil
}

// Clear deletes every point in the collection.
func (p *PostgresIndex) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM resume_points WHERE collection = $1`, p.collection)
	return p.wrap(err)
}

func (p *PostgresIndex) wrap(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return err
}

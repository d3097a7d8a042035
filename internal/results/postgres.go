package results

import (
	"context"

	"github.com/jonathan/resume-rag/internal/db"
)

// PostgresSink stores results in the database results table.
type PostgresSink struct {
	db *db.DB
}

// NewPostgresSink creates a PostgresSink. The results table must exist.
func NewPostgresSink(database *db.DB) *PostgresSink {
	return &PostgresSink{db: database}
}

// Save inserts payload and returns the new row ID.
func (s *PostgresSink) Save(ctx context.Context, kind string, payload map[string]any) (string, error) {
	id, err := s.db.SaveResult(ctx, kind, payload)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns stored results, newest first.
func (s *PostgresSink) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]Entry, len(rows))
	for i, r := range rows {
		list[i] = Entry{Name: r.ID.String(), Kind: r.Kind, Size: int64(r.Size), Modified: r.Modified}
	}
	return list, nil
}

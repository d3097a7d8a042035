package vectorstore

import (
	"context"
	"fmt"
	"strings"
)

// IndexConfig selects an Index backend.
type IndexConfig struct {
	Backend     string // memory, sqlite or postgres
	SQLitePath  string
	DatabaseURL string
	Collection  string
	Dimension   int
}

// OpenIndex builds the configured Index. The returned close function releases
// backend resources and is never nil.
func OpenIndex(ctx context.Context, cfg IndexConfig) (Index, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryIndex(), func() {}, nil
	case "sqlite":
		idx, err := OpenSQLite(cfg.SQLitePath, cfg.Collection)
		if err != nil {
			return nil, nil, err
		}
		return idx, func() { _ = idx.Close() }, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres vector store requires a database url")
		}
		idx, err := ConnectPostgres(ctx, cfg.DatabaseURL, cfg.Collection, cfg.Dimension)
		if err != nil {
			return nil, nil, err
		}
		return idx, idx.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store backend %q", cfg.Backend)
	}
}

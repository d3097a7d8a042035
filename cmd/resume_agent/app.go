package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-rag/internal/config"
	"github.com/jonathan/resume-rag/internal/db"
	"github.com/jonathan/resume-rag/internal/embedding"
	"github.com/jonathan/resume-rag/internal/fetch"
	"github.com/jonathan/resume-rag/internal/llm"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/pipeline"
	"github.com/jonathan/resume-rag/internal/results"
	"github.com/jonathan/resume-rag/internal/rewriting"
	"github.com/jonathan/resume-rag/internal/selection"
	"github.com/jonathan/resume-rag/internal/types"
	"github.com/jonathan/resume-rag/internal/vectorstore"
	"go.uber.org/zap"
)

// app is the wired set of components one command runs against.
type app struct {
	service *pipeline.Service
	fetcher *fetch.Fetcher
	metrics *observability.Metrics
	logger  *zap.Logger
	closers []func()
}

// newApp wires the pipeline from cfg. The LLM client is only created when
// withRewriter is set, so index, rank and select work without an API key.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics, withRewriter bool) (*app, error) {
	a := &app{metrics: metrics, logger: logger}

	backend, err := embedding.NewBackend(ctx, embedding.Config{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.EmbeddingAPIKey(),
		BaseURL:  cfg.Embedding.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding backend: %w", err)
	}
	if c, ok := backend.(io.Closer); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}
	provider := embedding.NewProvider(backend,
		embedding.WithBatchSize(cfg.Embedding.BatchSize),
		embedding.WithLogger(logger),
		embedding.WithMetrics(metrics))

	index, closeIndex, err := vectorstore.OpenIndex(ctx, vectorstore.IndexConfig{
		Backend:     cfg.VectorStore.Backend,
		SQLitePath:  cfg.VectorStore.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		Collection:  cfg.VectorStore.Collection,
		Dimension:   provider.Dimension(),
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	a.closers = append(a.closers, closeIndex)
	store := vectorstore.New(index, provider,
		vectorstore.WithCollection(cfg.VectorStore.Collection),
		vectorstore.WithLogger(logger),
		vectorstore.WithMetrics(metrics))

	sink, err := a.resultSink(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	deps := pipeline.Deps{
		Store: store,
		Selector: selection.NewSelector(provider,
			selection.WithCharsPerLine(cfg.Selection.CharsPerLine),
			selection.WithLogger(logger),
			selection.WithMetrics(metrics)),
		Recorder:       results.NewRecorder(sink, logger),
		EmbeddingModel: provider.Model(),
		MaxLines:       cfg.Selection.MaxLines,
		Logger:         logger,
	}

	if withRewriter {
		client, err := llm.NewClient(ctx, llm.Config{
			Provider: llm.ParseProvider(cfg.LLM.Provider),
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLMAPIKey(),
			BaseURL:  cfg.LLM.BaseURL,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		deps.Rewriter = rewriting.NewOptimizer(client,
			rewriting.WithTemperature(cfg.LLM.Temperature),
			rewriting.WithMaxTokens(cfg.LLM.MaxTokens),
			rewriting.WithLogger(logger),
			rewriting.WithMetrics(metrics))
	}
	a.service = pipeline.NewService(deps)

	fetchOpts := []fetch.Option{
		fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second),
		fetch.WithLogger(logger),
	}
	if cfg.Fetch.UseBrowser {
		fetchOpts = append(fetchOpts, fetch.WithBrowser(fetch.RenderWithChrome))
	}
	a.fetcher = fetch.New(fetchOpts...)
	return a, nil
}

// resultSink returns the archive configured by results.backend. "none" yields
// a nil sink, which the recorder treats as disabled.
func (a *app) resultSink(ctx context.Context, cfg *config.Config) (results.Sink, error) {
	switch cfg.Results.Backend {
	case "none":
		return nil, nil
	case "postgres":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to prepare results table: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		return results.NewPostgresSink(database), nil
	default:
		return results.NewFileSink(cfg.Results.Dir), nil
	}
}

// close waits for pending result writes and releases resources in reverse
// order of acquisition.
func (a *app) close() {
	if a.service != nil {
		a.service.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// resolveJob returns the job description text behind a URL or file path.
func (a *app) resolveJob(ctx context.Context, source string) (string, error) {
	return a.fetcher.Resolve(ctx, source)
}

// readResume loads a structured resume from a JSON file.
func readResume(path string) (types.StructuredResume, error) {
	var resume types.StructuredResume
	data, err := os.ReadFile(path)
	if err != nil {
		return resume, fmt.Errorf("failed to read resume file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &resume); err != nil {
		return resume, fmt.Errorf("failed to unmarshal resume JSON: %w", err)
	}
	return resume, nil
}

// writeJSON writes v as indented JSON to path, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

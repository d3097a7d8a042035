package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDir is where the file sink writes when no directory is configured.
const DefaultDir = "data/results"

// FileSink writes each result to an indented JSON file named
// {kind}_{YYYYMMDD_HHMMSS}.json.
type FileSink struct {
	dir string
	now func() time.Time
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileSink{dir: dir, now: time.Now}
}

// Save writes payload to a new file and returns its name.
func (s *FileSink) Save(_ context.Context, kind string, payload map[string]any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	name := s.uniqueName(kind)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result %s: %w", name, err)
	}
	return name, nil
}

// uniqueName appends a counter when two results land in the same second.
func (s *FileSink) uniqueName(kind string) string {
	base := fmt.Sprintf("%s_%s", kind, s.now().Format("20060102_150405"))
	name := base + ".json"
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.dir, name)); errors.Is(err, fs.ErrNotExist) {
			return name
		}
		name = fmt.Sprintf("%s_%d.json", base, i)
	}
}

// List returns the JSON files in the directory, newest first. A missing
// directory yields an empty list.
func (s *FileSink) List(_ context.Context) ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	list := []Entry{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		list = append(list, Entry{
			Name:     e.Name(),
			Kind:     kindOf(e.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Modified.After(list[j].Modified)
	})
	return list, nil
}

func kindOf(name string) string {
	for _, kind := range []string{KindRAG, KindOptimization} {
		if strings.HasPrefix(name, kind+"_") {
			return kind
		}
	}
	return ""
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileStore reads documents from a directory laid out like the public
// site: courses/courses.json and data/<quiz>.json. A quiz may also be
// authored as data/<quiz>.yaml or data/<quiz>.yml; it is served as JSON.
type FileStore struct {
	rootDir string
}

// NewFileStore creates a store rooted at rootDir.
func NewFileStore(rootDir string) *FileStore {
	return &FileStore{rootDir: rootDir}
}

func (s *FileStore) Fetch(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrLoadFailure, path, err)
	}

	if strings.HasSuffix(full, ".json") {
		base := strings.TrimSuffix(full, ".json")
		for _, ext := range []string{".yaml", ".yml"} {
			data, err := os.ReadFile(base + ext)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s: %v", ErrLoadFailure, base+ext, err)
			}
			return yamlToJSON(base+ext, data)
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
}

// resolve keeps every lookup inside the root directory.
func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return filepath.Join(s.rootDir, clean), nil
}

func yamlToJSON(path string, data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("invalid quiz YAML", "path", path, "error", err)
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrLoadFailure, path, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: converting %s: %v", ErrLoadFailure, path, err)
	}
	return out, nil
}

// Walk calls fn for every document under the root, with store paths using
// forward slashes. YAML quizzes are reported under their .json path.
func (s *FileStore) Walk(fn func(path string) error) error {
	return filepath.WalkDir(s.rootDir, func(full string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootDir, full)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		switch {
		case strings.HasSuffix(rel, ".json"):
			return fn(rel)
		case strings.HasPrefix(rel, "data/") && (strings.HasSuffix(rel, ".yaml") || strings.HasSuffix(rel, ".yml")):
			return fn(strings.TrimSuffix(strings.TrimSuffix(rel, ".yaml"), ".yml") + ".json")
		}
		return nil
	})
}

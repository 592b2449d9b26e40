package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/utils"
)

// FS keeps preferences in a YAML file. Every read goes to disk so that a
// change made by another process (`winsparkle skip` while `watch` runs) is
// picked up on the next access. Writes are atomic renames.
type FS struct {
	path   string
	mu     sync.RWMutex
	closed bool
}

func NewFS(path string) (*FS, error) {
	if path == "" {
		return nil, fmt.Errorf("preferences path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FS{path: path}, nil
}

// Path is the backing file.
func (s *FS) Path() string { return s.path }

func (s *FS) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (s *FS) Set(ctx context.Context, key, value string) error {
	return s.update(ctx, func(m map[string]string) { m[key] = value })
}

func (s *FS) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(m map[string]string) { delete(m, key) })
}

func (s *FS) All(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.load()
}

func (s *FS) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// --- internals ---

func (s *FS) update(ctx context.Context, mutate func(map[string]string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	data, err := s.load()
	if err != nil {
		return err
	}
	mutate(data)

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, bytes.NewReader(out), 0o600); err != nil {
		logger.Debug("Failed to write %s: %v", s.path, err)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

func (s *FS) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	data := map[string]string{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if data == nil {
		data = map[string]string{}
	}
	return data, nil
}

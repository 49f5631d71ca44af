package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
)

const docExt = ".json"

// FileStore keeps one JSON file per document in a directory. The CLI uses
// it for saved layouts.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens dir, creating it if needed. An empty dir selects
// ~/.config/reflow/layouts.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home: %w", err)
		}
		dir = filepath.Join(home, ".config", "reflow", "layouts")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("layouts dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) Get(_ context.Context, id string) (*document.Document, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.load(id + docExt)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, notFound(id)
	}
	return d, err
}

func (s *FileStore) Put(_ context.Context, d *document.Document) error {
	if err := prepare(d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", d.ID, err)
	}
	err = document.Write(d, tmp, document.FormatJSON)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), filepath.Join(s.dir, d.ID+docExt))
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", d.ID, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, id+docExt))
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return notFound(id)
	default:
		return fmt.Errorf("delete %s: %w", id, err)
	}
}

// List summarizes every readable document. Files that fail to decode or
// validate are skipped.
func (s *FileStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	var out []Summary
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), docExt) {
			continue
		}
		if d, err := s.load(e.Name()); err == nil {
			out = append(out, Summarize(d))
		}
	}
	return newestFirst(out, limit), nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load(name string) (*document.Document, error) {
	return document.ReadFile(filepath.Join(s.dir, name))
}

var _ Store = (*FileStore)(nil)

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// StateFileName is the document FileStore keeps under its directory.
const StateFileName = "state.json"

// FileStore keeps every key in one JSON document on disk. Each write rewrites
// the whole document through a temp file and a rename, so a crash leaves either
// the old or the new document. A document that fails to parse reads as empty.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates dir when missing and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &FileStore{path: filepath.Join(dir, StateFileName)}, nil
}

// Path returns the state document location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc[key] = value
	return f.write(doc)
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.write(doc)
}

// read loads the document. Values are kept as raw strings of bytes so callers
// decide their own encoding.
func (f *FileStore) read() (map[string][]byte, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string][]byte), nil
		}
		return nil, fmt.Errorf("read state %s: %w", f.path, err)
	}

	var doc map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("state document is corrupt, starting empty")
		return make(map[string][]byte), nil
	}

	out := make(map[string][]byte, len(doc))
	for k, v := range doc {
		out[k] = []byte(v)
	}
	return out, nil
}

func (f *FileStore) write(doc map[string][]byte) error {
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		out[k] = string(v)
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace state %s: %w", f.path, err)
	}
	return nil
}

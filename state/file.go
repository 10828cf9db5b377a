package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/rebalancer/engine"
)

// FileStore keeps the state in a single YAML file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load(ctx context.Context) (engine.State, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return engine.State{}, fmt.Errorf("state: read %s: %w", f.Path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engine.State{}, fmt.Errorf("state: parse %s: %w", f.Path, err)
	}
	return doc.Engine(), nil
}

// Save writes a temp file next to Path and renames it into place.
func (f *FileStore) Save(ctx context.Context, s engine.State) error {
	data, err := yaml.Marshal(FromEngine(s))
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("state: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}

// Reset removes the state file. A missing file is not an error.
func (f *FileStore) Reset(ctx context.Context) error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

const (
	dirFileMode   = 0o755
	stateFileMode = 0o600
)

// document is the on-disk layout. No schema versioning.
type document struct {
	ExtensionStats *entities.ExtensionStats `yaml:"extensionStats,omitempty"`
	IsEnabled      *bool                    `yaml:"isEnabled,omitempty"`
}

// FileStateRepository keeps the persisted key-value state in a YAML file.
// Every operation reads the file afresh so separate processes observe each
// other's writes.
type FileStateRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileStateRepository creates a repository stored at path.
func NewFileStateRepository(path string) *FileStateRepository {
	return &FileStateRepository{path: path}
}

var _ repositories.StateRepository = (*FileStateRepository)(nil)

func (r *FileStateRepository) Stats(_ context.Context) (entities.ExtensionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return entities.ExtensionStats{}, err
	}
	if doc.ExtensionStats == nil {
		return entities.ExtensionStats{}, nil
	}
	return *doc.ExtensionStats, nil
}

func (r *FileStateRepository) SaveStats(_ context.Context, stats entities.ExtensionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	doc.ExtensionStats = &stats
	return r.write(doc)
}

func (r *FileStateRepository) Enabled(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return entities.DefaultEnabled, err
	}
	if doc.IsEnabled == nil {
		return entities.DefaultEnabled, nil
	}
	return *doc.IsEnabled, nil
}

func (r *FileStateRepository) SetEnabled(_ context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	doc.IsEnabled = &enabled
	return r.write(doc)
}

// Clear removes the state file, which resets every key to its default.
func (r *FileStateRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear state %q: %w", r.path, err)
	}
	return nil
}

func (r *FileStateRepository) read() (document, error) {
	var doc document

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read state %q: %w", r.path, err)
	}

	if unmarshalErr := yaml.Unmarshal(data, &doc); unmarshalErr != nil {
		return doc, fmt.Errorf("failed to parse state %q: %w", r.path, unmarshalErr)
	}
	return doc, nil
}

func (r *FileStateRepository) write(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(r.path), dirFileMode); mkdirErr != nil {
		return fmt.Errorf("failed to create state directory: %w", mkdirErr)
	}

	// replace atomically
	tmp := r.path + ".tmp"
	if writeErr := os.WriteFile(tmp, data, stateFileMode); writeErr != nil {
		return fmt.Errorf("failed to write state %q: %w", tmp, writeErr)
	}
	if renameErr := os.Rename(tmp, r.path); renameErr != nil {
		return fmt.Errorf("failed to replace state %q: %w", r.path, renameErr)
	}
	return nil
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"webdl/pkg/errors"
)

// Manager handles the output directory and collision-free file naming
type Manager struct {
	outputDir  string
	savedCount int
	mu         sync.Mutex
}

// NewManager creates the output directory if needed and returns a manager
// for it. Fails with a directory error when creation is impossible or the
// path exists but is not a directory.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.New(errors.ErrorTypeDirectory,
			fmt.Sprintf("failed to create output directory %q: %v", outputDir, err))
	}

	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeDirectory,
			fmt.Sprintf("failed to stat output directory %q: %v", outputDir, err))
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrorTypeDirectory,
			fmt.Sprintf("output path %q is not a directory", outputDir))
	}

	return &Manager{outputDir: outputDir}, nil
}

// ResolveUniqueName returns a file name that does not collide with any
// file currently present in the output directory. If the candidate is
// free it is returned unchanged; otherwise numeric suffixes are probed:
// name.png, name_(1).png, name_(2).png, ... A candidate without an
// extension gets no trailing dot.
func (m *Manager) ResolveUniqueName(candidate string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.resolveLocked(candidate)
}

func (m *Manager) resolveLocked(candidate string) string {
	ext := filepath.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)

	name := candidate
	for i := 1; m.exists(name); i++ {
		name = fmt.Sprintf("%s_(%d)%s", stem, i, ext)
	}
	return name
}

func (m *Manager) exists(name string) bool {
	_, err := os.Stat(filepath.Join(m.outputDir, name))
	return err == nil
}

// Save resolves a collision-free name for the candidate and writes the
// data under it, returning the final name. Name resolution and the write
// happen under one lock, so two workers downloading elements with the
// same base name cannot overwrite each other.
func (m *Manager) Save(candidate string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := m.resolveLocked(candidate)
	path := filepath.Join(m.outputDir, name)

	// Temp file plus rename keeps a failed write from leaving a partial
	// file under the final name.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to rename temporary file for %q: %w", name, err)
	}

	m.savedCount++
	return name, nil
}

// Dir returns the output directory path
func (m *Manager) Dir() string {
	return m.outputDir
}

// SavedCount returns the number of files written by this manager
func (m *Manager) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.savedCount
}

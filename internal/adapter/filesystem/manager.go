package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/port"
)

// ErrOutsideRoot is returned for paths that escape the root directory
var ErrOutsideRoot = errors.New("path escapes output directory")

// Manager handles local filesystem operations for downloads
type Manager struct {
	rootDir string
}

// Ensure Manager implements port.FileSystem and port.DiskReporter
var (
	_ port.FileSystem   = (*Manager)(nil)
	_ port.DiskReporter = (*Manager)(nil)
)

// NewManager creates a new filesystem manager rooted at rootDir
func NewManager(rootDir string) (*Manager, error) {
	// Ensure root directory exists
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Manager{rootDir: rootDir}, nil
}

// RootDir returns the output root directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// ResolvePath maps a relative path into the root directory. Absolute paths
// and paths leaving the root are rejected.
func (m *Manager) ResolvePath(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidInput, rel)
	}
	clean := filepath.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return filepath.Join(m.rootDir, clean), nil
}

// EnsureDir ensures the directory for a file path exists
func (m *Manager) EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0755)
}

// Stat returns the size of a file and whether it exists
func (m *Manager) Stat(path string) (int64, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return 0, false, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), true, nil
}

// DeleteFile removes a file, ignoring a missing one
func (m *Manager) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// OpenAt opens a file for writing positioned at offset. The file and its
// parent directory are created if missing; existing bytes are kept.
func (m *Manager) OpenAt(path string, offset int64) (io.WriteCloser, error) {
	// Ensure parent directory exists
	if err := m.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("failed to create parent dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to %d: %w", offset, err)
	}
	return f, nil
}

// FileExists checks if a file exists
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

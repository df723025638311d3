// Package workspace manages the ephemeral scratch directory used while the
// package manual is converted, before results are mirrored into the output tree.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/refbuilder/internal/logfields"
)

// Manager handles scratch directory operations for one build.
type Manager struct {
	baseDir string
	tempDir string
}

// NewManager creates a workspace manager rooted at baseDir (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates a timestamped scratch directory for this run.
func (m *Manager) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	tempDir := filepath.Join(m.baseDir, fmt.Sprintf("refbuilder-%s", timestamp))
	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.tempDir = tempDir
	slog.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// GetPath returns the scratch directory path (empty before Create).
func (m *Manager) GetPath() string { return m.tempDir }

// Cleanup removes the scratch directory and everything under it.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to clean up workspace %s: %w", m.tempDir, err)
	}
	slog.Debug("Removed workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}

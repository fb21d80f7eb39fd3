// Package manifest owns the persisted extension manifest: loading,
// validation, canonical normalization, and the save-plus-archive
// contract.
package manifest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// Store reads and writes the manifest file. Every successful save also
// writes a timestamped snapshot into the archive directory; the two
// writes are one logical step and failure of either fails the save.
type Store struct {
	Path       string
	ArchiveDir string
	DryRun     bool

	// now is swappable in tests to pin the archive filename.
	now func() time.Time
}

// NewStore creates a store for the given canonical path and archive
// directory.
func NewStore(path, archiveDir string) *Store {
	return &Store{
		Path:       path,
		ArchiveDir: archiveDir,
		now:        time.Now,
	}
}

// Load reads the manifest fully into memory. A missing or corrupt file
// is an error; there are no partial-recovery semantics, the run aborts.
func (s *Store) Load() (*models.Manifest, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", s.Path, err)
	}

	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", s.Path, err)
	}
	return &m, nil
}

// Save writes the manifest back to the canonical path and drops a full
// snapshot named <YYYYMMDD_HHMM>_<canonical-filename> into the archive
// directory, creating it if absent. In dry-run mode neither file is
// written and the would-be archive name is logged instead.
func (s *Store) Save(m *models.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	name := filepath.Base(s.Path)
	archiveName := s.now().Format("20060102_1504") + "_" + name
	archivePath := filepath.Join(s.ArchiveDir, archiveName)

	if s.DryRun {
		log.Printf("Dry run: skipping write of %s and %s", s.Path, archivePath)
		return nil
	}

	if err := os.MkdirAll(s.ArchiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive copy: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest (archive copy %s already written): %w", archiveName, err)
	}
	return nil
}

// Package bundled merges the statically declared game extensions that
// ship with the application into the manifest. Identity here is the
// descriptor slug, not a marketplace mod ID.
package bundled

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// gameNamePrefix is the conventional descriptor-name prefix; the text
// after it is the display name of the game.
const gameNamePrefix = "Game: "

// descriptor is the info.json shipped in each bundled game folder.
type descriptor struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Merger folds bundled game descriptors into the manifest.
type Merger struct {
	Dir      string
	Exclude  []string
	ImageURL string
}

// New creates a merger over the given descriptor directory.
func New(dir, imageURL string, exclude []string) *Merger {
	return &Merger{Dir: dir, Exclude: exclude, ImageURL: imageURL}
}

// Merge walks the descriptor directory, one subfolder per game, and
// finds-or-creates the matching manifest entry by slug. Entries are
// only ever added or refreshed, never stubbed: the directory is
// authoritative and fully enumerable each run.
func (mg *Merger) Merge(m *models.Manifest) (added, updated int, err error) {
	dirs, err := os.ReadDir(mg.Dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read bundled directory %s: %w", mg.Dir, err)
	}

	for _, d := range dirs {
		if !d.IsDir() || mg.excluded(d.Name()) {
			continue
		}

		desc, err := loadDescriptor(filepath.Join(mg.Dir, d.Name()))
		if err != nil {
			log.Printf("Warning: skipping bundled folder %s: %v", d.Name(), err)
			continue
		}

		id := desc.ID
		if id == "" {
			id = d.Name()
		}

		entry := m.FindByID(id)
		if entry == nil {
			m.Extensions = append(m.Extensions, models.CatalogEntry{ID: id})
			entry = &m.Extensions[len(m.Extensions)-1]
			added++
		} else {
			updated++
		}

		entry.Hide = true
		entry.Type = models.TypeGame
		entry.Name = desc.Name
		entry.GameName = strings.TrimPrefix(desc.Name, gameNamePrefix)
		entry.Author = desc.Author
		entry.Description = &models.Description{Short: desc.Description, Long: desc.Description}
		entry.Version = desc.Version
		entry.Image = fmt.Sprintf("%s/%s.jpg", strings.TrimSuffix(mg.ImageURL, "/"), d.Name())
	}
	return added, updated, nil
}

func (mg *Merger) excluded(name string) bool {
	for _, e := range mg.Exclude {
		if e == name {
			return true
		}
	}
	return false
}

// loadDescriptor loads and parses a bundled game's info.json.
func loadDescriptor(dir string) (*descriptor, error) {
	path := filepath.Join(dir, "info.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read info.json: %w", err)
	}

	var desc descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse info.json: %w", err)
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("info.json missing required field: name")
	}
	if desc.Version == "" {
		return nil, fmt.Errorf("info.json missing required field: version")
	}
	return &desc, nil
}

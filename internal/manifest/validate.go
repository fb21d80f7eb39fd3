package manifest

import (
	"fmt"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// Validate checks that a candidate entry has the shape required before
// it may be merged into the manifest. All violations are collected, not
// short-circuited; an empty slice means the entry is well-formed.
//
// Stubs are exempt: an entry already reduced to modId/fileId by the
// removal path carries no descriptive fields to check.
func Validate(e *models.CatalogEntry) []string {
	if e.IsStub() {
		return nil
	}

	var errs []string
	if e.ModID <= 0 && e.ID == "" {
		errs = append(errs, "modId must be a positive number")
	}
	if e.FileID <= 0 && e.ID == "" {
		errs = append(errs, "fileId must be a positive number")
	}
	if e.Author == "" {
		errs = append(errs, "author must be a non-empty string")
	}
	if e.Uploader == "" && e.ID == "" {
		errs = append(errs, "uploader must be a non-empty string")
	}
	if e.Name == "" {
		errs = append(errs, "name must be a non-empty string")
	}
	if e.Version == "" {
		errs = append(errs, "version must be a non-empty string")
	}
	if e.Description == nil {
		errs = append(errs, "description with short and long text is required")
	}
	if e.Timestamp <= 0 && e.ID == "" {
		errs = append(errs, "timestamp must be a positive number")
	}
	if !e.Type.Valid() {
		errs = append(errs, fmt.Sprintf("type %q is not one of game/theme/translation or absent", e.Type))
	}
	if e.Type == models.TypeGame && e.GameName == "" {
		errs = append(errs, "game extensions require a gameName")
	}
	return errs
}

// ValidateManifest checks every entry plus the cross-entry uniqueness
// invariants: no two marketplace entries share a modId, no two bundled
// entries share an id.
func ValidateManifest(m *models.Manifest) []string {
	var errs []string
	seenMods := make(map[int]bool)
	seenIDs := make(map[string]bool)

	for i := range m.Extensions {
		e := &m.Extensions[i]
		if e.ModID != 0 {
			if seenMods[e.ModID] {
				errs = append(errs, fmt.Sprintf("duplicate modId %d", e.ModID))
			}
			seenMods[e.ModID] = true
		}
		if e.ID != "" {
			if seenIDs[e.ID] {
				errs = append(errs, fmt.Sprintf("duplicate id %q", e.ID))
			}
			seenIDs[e.ID] = true
		}
		for _, msg := range Validate(e) {
			errs = append(errs, fmt.Sprintf("entry %s: %s", entryLabel(e), msg))
		}
	}
	return errs
}

func entryLabel(e *models.CatalogEntry) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%d", e.ModID)
}

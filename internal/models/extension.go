// This file defines the core data structures (models) for the extension
// manifest: the catalog entries, the manifest document itself, and the
// extension type classification.

package models

// ExtensionType classifies a catalog entry. The zero value, TypeTool, is
// a real variant: tools are encoded in the manifest by omitting the
// "type" key entirely, never as null or "tool". Readers of the manifest
// rely on that omission, so the omitempty tag on CatalogEntry.Type is a
// codec rule, not an optimization.
type ExtensionType string

const (
	TypeTool        ExtensionType = ""
	TypeGame        ExtensionType = "game"
	TypeTheme       ExtensionType = "theme"
	TypeTranslation ExtensionType = "translation"
)

// Valid reports whether t is one of the recognized variants.
func (t ExtensionType) Valid() bool {
	switch t {
	case TypeTool, TypeGame, TypeTheme, TypeTranslation:
		return true
	}
	return false
}

// Description holds the short and long description of an entry.
type Description struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

// CatalogEntry is one addressable item in the manifest. Marketplace
// entries are identified by ModID, bundled entries by ID (a slug);
// exactly one identity scheme applies per entry.
//
// Field declaration order is the canonical serialization order of the
// manifest file. Do not reorder fields without regenerating the
// manifest, since downstream diffs depend on it.
type CatalogEntry struct {
	ModID        int               `json:"modId,omitempty"`
	FileID       int               `json:"fileId,omitempty"`
	Author       string            `json:"author,omitempty"`
	Uploader     string            `json:"uploader,omitempty"`
	Description  *Description      `json:"description,omitempty"`
	Downloads    int               `json:"downloads,omitempty"`
	Endorsements int               `json:"endorsements,omitempty"`
	Image        string            `json:"image,omitempty"`
	Name         string            `json:"name,omitempty"`
	Timestamp    int64             `json:"timestamp,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Version      string            `json:"version,omitempty"`
	Type         ExtensionType     `json:"type,omitempty"`
	GameName     string            `json:"gameName,omitempty"`
	GameID       int               `json:"gameId,omitempty"`
	Language     string            `json:"language,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	ID           string            `json:"id,omitempty"`
	Hide         bool              `json:"hide,omitempty"`
}

// IsStub reports whether the entry has been reduced to its identity
// fields by the removal path. Stubs keep the mod ID visible so a later
// reappearance is recognized as an update rather than an add.
func (e *CatalogEntry) IsStub() bool {
	return e.ModID != 0 &&
		e.Author == "" && e.Uploader == "" && e.Description == nil &&
		e.Downloads == 0 && e.Endorsements == 0 && e.Image == "" &&
		e.Name == "" && e.Timestamp == 0 && len(e.Tags) == 0 &&
		e.Version == "" && e.Type == TypeTool && e.GameName == "" &&
		e.GameID == 0 && e.Language == "" && len(e.Dependencies) == 0 &&
		e.ID == "" && !e.Hide
}

// Stub returns the entry reduced to only modId and fileId.
func (e *CatalogEntry) Stub() CatalogEntry {
	return CatalogEntry{ModID: e.ModID, FileID: e.FileID}
}

// Manifest is the aggregate root persisted to disk: an ordered list of
// catalog entries plus the epoch-millisecond timestamp of the last
// completed reconciliation run.
type Manifest struct {
	LastUpdated int64          `json:"last_updated"`
	Extensions  []CatalogEntry `json:"extensions"`
}

// FindByModID returns a pointer to the entry with the given marketplace
// mod ID, or nil if none exists.
func (m *Manifest) FindByModID(modID int) *CatalogEntry {
	for i := range m.Extensions {
		if m.Extensions[i].ModID == modID {
			return &m.Extensions[i]
		}
	}
	return nil
}

// FindByID returns a pointer to the bundled entry with the given slug,
// or nil if none exists.
func (m *Manifest) FindByID(id string) *CatalogEntry {
	for i := range m.Extensions {
		if m.Extensions[i].ID == id {
			return &m.Extensions[i]
		}
	}
	return nil
}

package manifest

import "github.com/Nexus-Mods/Vortex-Backend/internal/models"

// Normalize re-emits an entry with only its defined fields, clearing
// conditional fields that do not apply to the entry's type. The
// canonical field order of the manifest file comes from the
// CatalogEntry struct declaration, so a normalized entry marshals
// deterministically.
//
// The tool distinction is preserved: entries without a game, theme or
// translation type keep TypeTool, which marshals by omitting the "type"
// key rather than writing null or "tool".
func Normalize(e models.CatalogEntry) models.CatalogEntry {
	out := e

	// language only accompanies translations, gameName/gameId only
	// games.
	if out.Type != models.TypeTranslation {
		out.Language = ""
	}
	if out.Type != models.TypeGame {
		out.GameName = ""
		out.GameID = 0
	}
	if len(out.Dependencies) == 0 {
		out.Dependencies = nil
	}
	if out.Tags != nil {
		out.Tags = append([]string(nil), out.Tags...)
	}
	return out
}

// NormalizeManifest normalizes every entry in place. Stubs pass through
// untouched since they carry identity fields only.
func NormalizeManifest(m *models.Manifest) {
	for i := range m.Extensions {
		if m.Extensions[i].IsStub() {
			continue
		}
		m.Extensions[i] = Normalize(m.Extensions[i])
	}
}

package reconcile

import (
	"fmt"
	"strconv"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// CategoryTable maps marketplace category IDs to extension types.
// Membership matters: a category ID missing from the table means the
// mod is not something this system manages and the candidate is
// skipped, while an ID mapped to TypeTool is a managed tool.
type CategoryTable map[int]models.ExtensionType

// Classify resolves a category ID. The second return value reports
// whether the category is recognized at all.
func (t CategoryTable) Classify(categoryID int) (models.ExtensionType, bool) {
	typ, ok := t[categoryID]
	return typ, ok
}

// ParseCategoryTable builds a table from the config representation,
// string category IDs mapped to type names ("game", "theme",
// "translation", "tool").
func ParseCategoryTable(raw map[string]string) (CategoryTable, error) {
	table := make(CategoryTable, len(raw))
	for key, name := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", key, err)
		}
		typ, err := parseTypeName(name)
		if err != nil {
			return nil, err
		}
		table[id] = typ
	}
	return table, nil
}

func parseTypeName(name string) (models.ExtensionType, error) {
	switch name {
	case "game":
		return models.TypeGame, nil
	case "theme":
		return models.TypeTheme, nil
	case "translation":
		return models.TypeTranslation, nil
	case "tool", "":
		return models.TypeTool, nil
	}
	return models.TypeTool, fmt.Errorf("unknown extension type %q", name)
}

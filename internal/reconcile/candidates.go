package reconcile

import (
	"log"
	"sort"
	"time"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// LookbackPeriod picks the "recently updated" query window from the
// time elapsed since the last reconciliation run. The API only offers
// day, week and month windows; past thirty days even the month window
// can miss activity, so that case gets a loud warning.
func LookbackPeriod(elapsed time.Duration) string {
	switch {
	case elapsed <= 24*time.Hour:
		return "1d"
	case elapsed <= 7*24*time.Hour:
		return "1w"
	default:
		if elapsed > 30*24*time.Hour {
			log.Printf("WARNING: %s since last run exceeds the one-month lookback window; the update listing may be incomplete", elapsed.Round(time.Hour))
		}
		return "1m"
	}
}

// candidateIDs unions the recently-updated mod IDs with every mod ID
// already tracked in the manifest, so previously removed stubs get
// re-examined each run. The result is sorted for a deterministic merge
// order.
func candidateIDs(m *models.Manifest, updated []models.UpdatedMod) []int {
	seen := make(map[int]bool)
	for _, u := range updated {
		seen[u.ModID] = true
	}
	for i := range m.Extensions {
		if id := m.Extensions[i].ModID; id != 0 {
			seen[id] = true
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

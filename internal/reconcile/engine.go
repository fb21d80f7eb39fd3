// Package reconcile implements the manifest reconciliation engine: the
// merge/update/remove decision logic that keeps the persisted extension
// manifest in step with live marketplace data.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Nexus-Mods/Vortex-Backend/internal/manifest"
	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// LookupClient is the slice of the marketplace API the engine depends
// on. internal/nexus implements it; tests substitute their own.
type LookupClient interface {
	ModInfo(ctx context.Context, modID int) (*models.ModInfo, error)
	ModFiles(ctx context.Context, modID int) ([]models.ModFile, error)
	RecentlyUpdated(ctx context.Context, period string) ([]models.UpdatedMod, error)
	GameInfo(ctx context.Context, domain string) (*models.GameInfo, error)
}

// Engine reconciles the manifest against fresh marketplace data.
type Engine struct {
	client     LookupClient
	categories CategoryTable
	window     VersionWindow

	// now is swappable in tests so last_updated is predictable.
	now func() time.Time
}

// New creates an engine with the given collaborators.
func New(client LookupClient, categories CategoryTable, window VersionWindow) *Engine {
	return &Engine{
		client:     client,
		categories: categories,
		window:     window,
		now:        time.Now,
	}
}

// fetchResult carries everything one candidate's concurrent fetch
// produced. The merge step consumes these strictly after all fetches
// have settled, so manifest mutation stays single-writer.
type fetchResult struct {
	modID int
	info  *models.ModInfo
	files []models.ModFile

	infoErr  error
	filesErr error
}

// Refresh runs the full reconciliation flow: select candidates, fetch
// their metadata and file lists concurrently, then merge serially. A
// failure fetching the recently-updated listing is fatal; per-candidate
// failures are soft and recorded as outcomes. On success the manifest's
// last_updated is advanced to now.
func (e *Engine) Refresh(ctx context.Context, m *models.Manifest) (*models.Summary, error) {
	start := e.now()

	period := LookbackPeriod(start.Sub(time.UnixMilli(m.LastUpdated)))
	updated, err := e.client.RecentlyUpdated(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recently updated mods: %w", err)
	}

	ids := candidateIDs(m, updated)
	log.Printf("Reconciling %d candidate mods (%d recently updated, period %s)", len(ids), len(updated), period)

	results := e.fetchAll(ctx, ids)

	summary := &models.Summary{}
	for _, res := range results {
		e.reconcileOne(m, summary, res)
	}

	manifest.NormalizeManifest(m)
	m.LastUpdated = e.now().UnixMilli()
	summary.Duration = e.now().Sub(start)
	return summary, nil
}

// fetchAll fans the per-candidate lookups out concurrently and waits
// for every one to settle before returning. Results come back in
// candidate order; nothing touches the manifest here.
func (e *Engine) fetchAll(ctx context.Context, ids []int) []fetchResult {
	results := make([]fetchResult, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, modID int) {
			defer wg.Done()
			results[i] = e.fetchOne(ctx, modID)
		}(i, id)
	}
	wg.Wait()
	return results
}

func (e *Engine) fetchOne(ctx context.Context, modID int) fetchResult {
	res := fetchResult{modID: modID}
	res.info, res.infoErr = e.client.ModInfo(ctx, modID)
	if res.infoErr != nil || !res.info.Published() {
		return res
	}
	if _, ok := e.categories.Classify(res.info.CategoryID); !ok {
		return res
	}
	res.files, res.filesErr = e.client.ModFiles(ctx, modID)
	return res
}

// reconcileOne applies the per-candidate decision rules to the manifest
// and records the outcome. Soft failures never propagate past here.
func (e *Engine) reconcileOne(m *models.Manifest, sum *models.Summary, res fetchResult) models.Outcome {
	id := res.modID

	// A failed metadata fetch or a mod with no preview image is
	// un-processable this run; the entry stays whatever it was.
	if res.infoErr != nil {
		log.Printf("Warning: skipping mod %d, metadata fetch failed: %v", id, res.infoErr)
		return sum.Add(models.Outcome{ModID: id, Kind: models.OutcomeSkipped, Reason: "metadata fetch failed"})
	}
	info := res.info
	if info.Published() && info.PictureURL == "" {
		log.Printf("Warning: skipping mod %d (%s), no preview image", id, info.Name)
		return sum.Add(models.Outcome{ModID: id, Kind: models.OutcomeSkipped, Name: info.Name, Reason: "no preview image"})
	}

	// Unpublished mods are stubbed, never deleted, so a later
	// reappearance reads as an update.
	if !info.Published() {
		return e.remove(m, sum, id, info.Name, fmt.Sprintf("status %q", info.Status))
	}

	typ, ok := e.categories.Classify(info.CategoryID)
	if !ok {
		return sum.Add(models.Outcome{ModID: id, Kind: models.OutcomeSkipped, Name: info.Name, Reason: fmt.Sprintf("category %d not managed", info.CategoryID)})
	}

	if res.filesErr != nil {
		log.Printf("Warning: skipping mod %d (%s), file list fetch failed: %v", id, info.Name, res.filesErr)
		return sum.Add(models.Outcome{ModID: id, Kind: models.OutcomeSkipped, Name: info.Name, Reason: "file list fetch failed"})
	}

	latest, outcome := e.selectLatestFile(info, res.files)
	if outcome != nil {
		if outcome.Kind == models.OutcomeRemoved {
			return e.remove(m, sum, id, info.Name, outcome.Reason)
		}
		return sum.Add(*outcome)
	}

	return e.merge(m, sum, info, typ, latest)
}

// selectLatestFile filters a mod's file list down to the single main
// file the catalog should track. A nil outcome means latest is valid;
// an OutcomeRemoved result means the mod currently has no usable file.
func (e *Engine) selectLatestFile(info *models.ModInfo, files []models.ModFile) (*models.ModFile, *models.Outcome) {
	var mains []models.ModFile
	for _, f := range files {
		if f.IsMain() {
			mains = append(mains, f)
		}
	}
	if len(mains) == 0 {
		return nil, &models.Outcome{ModID: info.ModID, Kind: models.OutcomeRemoved, Name: info.Name, Reason: "no main file"}
	}
	if len(mains) > 1 {
		log.Printf("Warning: mod %d (%s) has %d main files, selecting the highest file id", info.ModID, info.Name, len(mains))
	}

	compatible := mains[:0:0]
	for _, f := range mains {
		if raw, c, found := ParseVortexRange(f.Description); found && !e.window.Satisfies(c) {
			log.Printf("Mod %d (%s): file %d requires vortex %s, outside the supported window", info.ModID, info.Name, f.FileID, raw)
			continue
		}
		compatible = append(compatible, f)
	}
	if len(compatible) == 0 {
		// Main files exist but all target unsupported application
		// versions.
		return nil, &models.Outcome{ModID: info.ModID, Kind: models.OutcomeRemoved, Name: info.Name, Reason: "all main files version-incompatible"}
	}

	latest := compatible[0]
	for _, f := range compatible[1:] {
		if f.FileID > latest.FileID {
			latest = f
		}
	}
	return &latest, nil
}

// merge applies the add/update/unchanged decision for a mod whose
// latest main file has been selected.
func (e *Engine) merge(m *models.Manifest, sum *models.Summary, info *models.ModInfo, typ models.ExtensionType, latest *models.ModFile) models.Outcome {
	existing := m.FindByModID(info.ModID)

	// The refresh flow has no game-domain input, so a game entry's
	// gameName can only come from a previous revision. Without one the
	// entry could never validate; leave the candidate to the add flow.
	if typ == models.TypeGame && (existing == nil || existing.GameName == "") {
		log.Printf("Warning: skipping mod %d (%s), game extensions enter through the add flow where the game domain is resolved", info.ModID, info.Name)
		return sum.Add(models.Outcome{ModID: info.ModID, Kind: models.OutcomeSkipped, Name: info.Name, Reason: "game domain unresolved"})
	}

	if existing == nil {
		entry := e.buildEntry(info, typ, latest, "", nil)
		m.Extensions = append(m.Extensions, entry)
		return sum.Add(models.Outcome{ModID: info.ModID, Kind: models.OutcomeAdded, Name: info.Name})
	}

	if existing.FileID == latest.FileID && !existing.IsStub() {
		return sum.Add(models.Outcome{ModID: info.ModID, Kind: models.OutcomeUnchanged, Name: info.Name})
	}

	updated := e.buildEntry(info, typ, latest, "", existing)
	*existing = updated
	return sum.Add(models.Outcome{ModID: info.ModID, Kind: models.OutcomeUpdated, Name: info.Name})
}

// buildEntry constructs a full catalog entry from fresh metadata plus
// the selected file. When prev is non-nil, fields the marketplace
// cannot supply (gameName, gameId, language, an image when the fresh
// metadata lacks one, non-vortex dependency keys) are carried over from
// the previous revision of the entry.
func (e *Engine) buildEntry(info *models.ModInfo, typ models.ExtensionType, latest *models.ModFile, language string, prev *models.CatalogEntry) models.CatalogEntry {
	entry := models.CatalogEntry{
		ModID:        info.ModID,
		FileID:       latest.FileID,
		Author:       info.Author,
		Uploader:     info.UploadedBy,
		Description:  &models.Description{Short: info.Summary, Long: info.Description},
		Downloads:    info.UniqueDownloads,
		Endorsements: info.EndorsementCount,
		Image:        info.PictureURL,
		Name:         info.Name,
		Timestamp:    latest.UploadedTimestamp,
		Tags:         nil,
		Version:      latest.Version,
		Type:         typ,
		Language:     language,
	}

	var prevDeps map[string]string
	if prev != nil {
		prevDeps = prev.Dependencies
		if entry.Image == "" {
			entry.Image = prev.Image
		}
		if entry.Language == "" {
			entry.Language = prev.Language
		}
		entry.GameName = prev.GameName
		entry.GameID = prev.GameID
		if len(prev.Tags) > 0 {
			entry.Tags = append([]string(nil), prev.Tags...)
		}
	}
	entry.Dependencies = extractDependencies(prevDeps, latest.Description)
	return manifest.Normalize(entry)
}

// extractDependencies recomputes the vortex constraint from the file
// description while leaving previously recorded non-vortex keys
// untouched. Non-vortex keys are preserved but never pruned.
func extractDependencies(prev map[string]string, fileDescription string) map[string]string {
	deps := make(map[string]string, len(prev)+1)
	for k, v := range prev {
		if k != "vortex" {
			deps[k] = v
		}
	}
	if raw, _, found := ParseVortexRange(fileDescription); found {
		deps["vortex"] = raw
	}
	if len(deps) == 0 {
		return nil
	}
	return deps
}

// remove reduces an entry to its modId/fileId stub. Already-stubbed
// entries and unknown IDs are no-ops.
func (e *Engine) remove(m *models.Manifest, sum *models.Summary, modID int, name, reason string) models.Outcome {
	existing := m.FindByModID(modID)
	if existing == nil || existing.IsStub() {
		return sum.Add(models.Outcome{ModID: modID, Kind: models.OutcomeUnchanged, Name: name, Reason: reason})
	}
	log.Printf("Mod %d (%s) removed from catalog: %s", modID, existing.Name, reason)
	*existing = existing.Stub()
	return sum.Add(models.Outcome{ModID: modID, Kind: models.OutcomeRemoved, Name: name, Reason: reason})
}

// AddRequest is the input to the single-item add flow.
type AddRequest struct {
	ModID      int
	GameDomain string
	Language   string
}

// ErrPrecondition marks failures of the add flow's strict upfront
// rules; the CLI maps it to a non-zero exit.
var ErrPrecondition = errors.New("precondition failed")

// AddExtension runs the per-item rules for exactly one externally
// supplied mod ID. Conditions that are soft in the refresh flow are
// fatal here: the caller is waiting on a definitive answer, so a failed
// metadata fetch, an unpublished mod, an unrecognized category or a
// missing main file abort with an error and nothing is written.
func (e *Engine) AddExtension(ctx context.Context, m *models.Manifest, sum *models.Summary, req AddRequest) (models.Outcome, error) {
	none := models.Outcome{}

	info, err := e.client.ModInfo(ctx, req.ModID)
	if err != nil {
		return none, fmt.Errorf("%w: metadata fetch for mod %d failed: %v", ErrPrecondition, req.ModID, err)
	}
	if !info.Published() {
		return none, fmt.Errorf("%w: mod %d has status %q, not published", ErrPrecondition, req.ModID, info.Status)
	}
	if info.PictureURL == "" {
		return none, fmt.Errorf("%w: mod %d has no preview image", ErrPrecondition, req.ModID)
	}

	typ, ok := e.categories.Classify(info.CategoryID)
	if !ok {
		return none, fmt.Errorf("%w: mod %d category %d is not a recognized extension category", ErrPrecondition, req.ModID, info.CategoryID)
	}

	// A game extension without a site domain is catalogued as a plain
	// tool; a translation without a language tag cannot be catalogued
	// at all.
	if typ == models.TypeGame && req.GameDomain == "" {
		typ = models.TypeTool
	}
	if typ == models.TypeTranslation && req.Language == "" {
		return none, fmt.Errorf("%w: translation extensions require a language tag", ErrPrecondition)
	}

	if existing := m.FindByModID(req.ModID); existing != nil {
		return sum.Add(models.Outcome{ModID: req.ModID, Kind: models.OutcomeRejected, Name: info.Name, Reason: "already present in manifest"}), nil
	}

	files, err := e.client.ModFiles(ctx, req.ModID)
	if err != nil {
		return none, fmt.Errorf("%w: file list fetch for mod %d failed: %v", ErrPrecondition, req.ModID, err)
	}
	latest, outcome := e.selectLatestFile(info, files)
	if outcome != nil {
		if outcome.Reason == "all main files version-incompatible" {
			// Deliberate veto: remember the ID as seen with a stub so
			// later refreshes re-examine it. The stub tracks the
			// highest main file id so a future upload reads as a
			// change.
			stub := models.CatalogEntry{ModID: req.ModID}
			for _, f := range files {
				if f.IsMain() && f.FileID > stub.FileID {
					stub.FileID = f.FileID
				}
			}
			m.Extensions = append(m.Extensions, stub)
			return sum.Add(models.Outcome{ModID: req.ModID, Kind: models.OutcomeRejected, Name: info.Name, Reason: outcome.Reason}), nil
		}
		return none, fmt.Errorf("%w: mod %d has no main file", ErrPrecondition, req.ModID)
	}

	var gameInfo *models.GameInfo
	if typ == models.TypeGame {
		gameInfo, err = e.client.GameInfo(ctx, req.GameDomain)
		if err != nil {
			return none, fmt.Errorf("%w: failed to resolve game domain %q: %v", ErrPrecondition, req.GameDomain, err)
		}
	}

	entry := e.buildEntry(info, typ, latest, req.Language, nil)
	if gameInfo != nil {
		entry.GameName = gameInfo.Name
		entry.GameID = gameInfo.ID
	}
	m.Extensions = append(m.Extensions, entry)
	return sum.Add(models.Outcome{ModID: req.ModID, Kind: models.OutcomeAdded, Name: info.Name}), nil
}

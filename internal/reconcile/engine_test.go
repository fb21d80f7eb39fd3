package reconcile_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nexus-Mods/Vortex-Backend/internal/manifest"
	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
	"github.com/Nexus-Mods/Vortex-Backend/internal/reconcile"
)

// fakeClient implements reconcile.LookupClient from in-memory maps.
type fakeClient struct {
	mods       map[int]*models.ModInfo
	files      map[int][]models.ModFile
	games      map[string]*models.GameInfo
	updated    []models.UpdatedMod
	updatedErr error
	infoErr    map[int]error
}

func (f *fakeClient) ModInfo(ctx context.Context, modID int) (*models.ModInfo, error) {
	if err := f.infoErr[modID]; err != nil {
		return nil, err
	}
	info, ok := f.mods[modID]
	if !ok {
		return nil, errors.New("not found")
	}
	return info, nil
}

func (f *fakeClient) ModFiles(ctx context.Context, modID int) ([]models.ModFile, error) {
	return f.files[modID], nil
}

func (f *fakeClient) RecentlyUpdated(ctx context.Context, period string) ([]models.UpdatedMod, error) {
	return f.updated, f.updatedErr
}

func (f *fakeClient) GameInfo(ctx context.Context, domain string) (*models.GameInfo, error) {
	info, ok := f.games[domain]
	if !ok {
		return nil, errors.New("unknown game domain")
	}
	return info, nil
}

var testCategories = reconcile.CategoryTable{
	4:  models.TypeGame,
	7:  models.TypeTool,
	13: models.TypeTheme,
	33: models.TypeTranslation,
}

func testEngine(t *testing.T, client *fakeClient) *reconcile.Engine {
	t.Helper()
	window, err := reconcile.NewVersionWindow("1.8.0", "1.14.2")
	if err != nil {
		t.Fatalf("NewVersionWindow failed: %v", err)
	}
	return reconcile.New(client, testCategories, window)
}

func publishedMod(modID, categoryID int, name string) *models.ModInfo {
	return &models.ModInfo{
		ModID:            modID,
		CategoryID:       categoryID,
		Name:             name,
		Summary:          "short text",
		Description:      "long text",
		Version:          "1.0.0",
		Author:           "somebody",
		UploadedBy:       "somebody",
		PictureURL:       "https://staticdelivery.example.com/pic.png",
		UniqueDownloads:  120,
		EndorsementCount: 7,
		Status:           "published",
		Available:        true,
	}
}

func mainFile(fileID int, version, description string) models.ModFile {
	return models.ModFile{
		FileID:            fileID,
		Name:              "dist",
		Version:           version,
		CategoryID:        1,
		CategoryName:      "MAIN",
		UploadedTimestamp: 1700000000,
		Description:       description,
	}
}

func TestRefreshAddsNewExtension(t *testing.T) {
	client := &fakeClient{
		mods:    map[int]*models.ModInfo{77: publishedMod(77, 7, "Neat Tool")},
		files:   map[int][]models.ModFile{77: {mainFile(300, "0.2.1", "")}},
		updated: []models.UpdatedMod{{ModID: 77}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, m.Extensions, 1)

	entry := m.Extensions[0]
	assert.Equal(t, 77, entry.ModID)
	assert.Equal(t, 300, entry.FileID)
	assert.Equal(t, "Neat Tool", entry.Name)
	assert.Equal(t, "0.2.1", entry.Version)
	assert.Equal(t, models.TypeTool, entry.Type)
	assert.Equal(t, 1, summary.Count(models.OutcomeAdded))
}

func TestRefreshSkipsNewGameMod(t *testing.T) {
	client := &fakeClient{
		mods:    map[int]*models.ModInfo{598: publishedMod(598, 4, "Back 4 Blood Support")},
		files:   map[int][]models.ModFile{598: {mainFile(777, "1.0.0", "")}},
		updated: []models.UpdatedMod{{ModID: 598}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)

	// The refresh flow cannot resolve a game domain, so the candidate
	// stays out of the manifest and the run's save is not poisoned.
	assert.Equal(t, 1, summary.Count(models.OutcomeSkipped))
	assert.Empty(t, m.Extensions)
	assert.Empty(t, manifest.ValidateManifest(m))
}

func TestRefreshSkipsReappearedGameStub(t *testing.T) {
	client := &fakeClient{
		mods:    map[int]*models.ModInfo{598: publishedMod(598, 4, "Back 4 Blood Support")},
		files:   map[int][]models.ModFile{598: {mainFile(777, "1.0.0", "")}},
		updated: []models.UpdatedMod{{ModID: 598}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{Extensions: []models.CatalogEntry{{ModID: 598, FileID: 700}}}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(models.OutcomeSkipped))
	require.Len(t, m.Extensions, 1)
	assert.True(t, m.Extensions[0].IsStub(), "a stub without a recorded gameName stays a stub")
	assert.Empty(t, manifest.ValidateManifest(m))
}

func TestRefreshIsIdempotent(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{
			77: publishedMod(77, 7, "Neat Tool"),
			88: publishedMod(88, 13, "Dark Theme"),
		},
		files: map[int][]models.ModFile{
			77: {mainFile(300, "0.2.1", "")},
			88: {mainFile(410, "2.0.0", "Requires Vortex >=1.8.0")},
		},
		updated: []models.UpdatedMod{{ModID: 77}, {ModID: 88}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	_, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	first, err := json.Marshal(m.Extensions)
	require.NoError(t, err)

	_, err = engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	second, err := json.Marshal(m.Extensions)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "extensions list must be byte-for-byte stable across runs with no upstream changes")
}

func TestRefreshStubsUnpublishedMod(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{
			42: {ModID: 42, Status: "hidden", Name: "Old Tool"},
		},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{
		Extensions: []models.CatalogEntry{{
			ModID:       42,
			FileID:      9,
			Name:        "Old Tool",
			Author:      "somebody",
			Uploader:    "somebody",
			Version:     "0.1.0",
			Timestamp:   1600000000,
			Description: &models.Description{Short: "s", Long: "l"},
		}},
	}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(models.OutcomeRemoved))

	// The stub keeps exactly modId and fileId, nothing else.
	require.Len(t, m.Extensions, 1)
	data, err := json.Marshal(m.Extensions[0])
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Equal(t, map[string]interface{}{"modId": float64(42), "fileId": float64(9)}, keys)
	assert.True(t, m.Extensions[0].IsStub())
}

func TestRefreshStubIsStableOnSecondRun(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{42: {ModID: 42, Status: "hidden"}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{
		Extensions: []models.CatalogEntry{{ModID: 42, FileID: 9}},
	}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count(models.OutcomeRemoved))
	assert.Equal(t, models.CatalogEntry{ModID: 42, FileID: 9}, m.Extensions[0])
}

func TestRefreshPicksHighestFileID(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{77: publishedMod(77, 7, "Neat Tool")},
		files: map[int][]models.ModFile{77: {
			mainFile(100, "1.0.0", ""),
			mainFile(205, "1.1.0", ""),
		}},
		updated: []models.UpdatedMod{{ModID: 77}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	_, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, m.Extensions, 1)
	assert.Equal(t, 205, m.Extensions[0].FileID)
	assert.Equal(t, "1.1.0", m.Extensions[0].Version)
}

func TestRefreshWarnsOnMultipleMainFiles(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{77: publishedMod(77, 7, "Neat Tool")},
		files: map[int][]models.ModFile{77: {
			mainFile(100, "1.0.0", ""),
			mainFile(205, "2.0.0", "Requires Vortex >=2.0.0"),
		}},
		updated: []models.UpdatedMod{{ModID: 77}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	_, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)

	// The warning counts all main files, before the compatibility
	// filter narrows them down.
	assert.Contains(t, buf.String(), "has 2 main files")
	require.Len(t, m.Extensions, 1)
	assert.Equal(t, 100, m.Extensions[0].FileID, "only the compatible file is selectable")
}

func TestRefreshStubsWhenAllFilesIncompatible(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{77: publishedMod(77, 7, "Neat Tool")},
		files: map[int][]models.ModFile{77: {
			mainFile(300, "3.0.0", "Requires Vortex >=2.0.0"),
		}},
		updated: []models.UpdatedMod{{ModID: 77}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{
		Extensions: []models.CatalogEntry{{
			ModID:       77,
			FileID:      250,
			Name:        "Neat Tool",
			Author:      "somebody",
			Uploader:    "somebody",
			Version:     "1.9.0",
			Timestamp:   1600000000,
			Description: &models.Description{Short: "s", Long: "l"},
		}},
	}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(models.OutcomeRemoved))
	assert.True(t, m.Extensions[0].IsStub())
	assert.Equal(t, 250, m.Extensions[0].FileID)
}

func TestRefreshSkipsUnmanagedCategory(t *testing.T) {
	client := &fakeClient{
		mods:    map[int]*models.ModInfo{55: publishedMod(55, 99, "Wallpaper Pack")},
		updated: []models.UpdatedMod{{ModID: 55}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Empty(t, m.Extensions)
	assert.Equal(t, 1, summary.Count(models.OutcomeSkipped))
}

func TestRefreshLeavesEntryWhenFetchFails(t *testing.T) {
	client := &fakeClient{
		infoErr: map[int]error{10: errors.New("boom")},
	}
	engine := testEngine(t, client)
	original := models.CatalogEntry{
		ModID:       10,
		FileID:      5,
		Name:        "Fragile",
		Author:      "somebody",
		Uploader:    "somebody",
		Version:     "1.0.0",
		Timestamp:   1600000000,
		Description: &models.Description{Short: "s", Long: "l"},
	}
	m := &models.Manifest{Extensions: []models.CatalogEntry{original}}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(models.OutcomeSkipped))
	assert.Equal(t, original.Name, m.Extensions[0].Name)
	assert.Equal(t, original.FileID, m.Extensions[0].FileID)
}

func TestRefreshFailsWhenUpdateListingFails(t *testing.T) {
	client := &fakeClient{updatedErr: errors.New("api down")}
	engine := testEngine(t, client)

	_, err := engine.Refresh(context.Background(), &models.Manifest{})
	require.Error(t, err)
}

func TestRefreshUpdatePreservesReferentialFields(t *testing.T) {
	info := publishedMod(77, 4, "Back 4 Blood Support")
	info.PictureURL = "https://img.example.com/new.png"
	client := &fakeClient{
		mods:    map[int]*models.ModInfo{77: info},
		files:   map[int][]models.ModFile{77: {mainFile(320, "1.2.0", "Requires Vortex >=1.9.0")}},
		updated: []models.UpdatedMod{{ModID: 77}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{
		Extensions: []models.CatalogEntry{{
			ModID:        77,
			FileID:       300,
			Name:         "Back 4 Blood Support",
			Author:       "somebody",
			Uploader:     "somebody",
			Image:        "https://img.example.com/old.png",
			Version:      "1.1.0",
			Timestamp:    1600000000,
			Type:         models.TypeGame,
			GameName:     "Back 4 Blood",
			GameID:       3562,
			Description:  &models.Description{Short: "s", Long: "l"},
			Dependencies: map[string]string{"vortex": ">=1.8.0", "other-ext": "^2.0.0"},
		}},
	}

	summary, err := engine.Refresh(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(models.OutcomeUpdated))

	entry := m.Extensions[0]
	assert.Equal(t, 320, entry.FileID)
	assert.Equal(t, "Back 4 Blood", entry.GameName, "gameName survives a refresh that cannot resolve it")
	assert.Equal(t, 3562, entry.GameID)
	assert.Equal(t, "https://img.example.com/new.png", entry.Image)
	assert.Equal(t, ">=1.9.0", entry.Dependencies["vortex"], "vortex constraint is re-extracted")
	assert.Equal(t, "^2.0.0", entry.Dependencies["other-ext"], "non-vortex keys are preserved, never pruned")
}

func TestAddExtensionEndToEnd(t *testing.T) {
	client := &fakeClient{
		mods:  map[int]*models.ModInfo{598: publishedMod(598, 4, "Back 4 Blood Support")},
		files: map[int][]models.ModFile{598: {mainFile(777, "1.0.0", "")}},
		games: map[string]*models.GameInfo{
			"back4blood": {ID: 3562, Name: "Back 4 Blood", DomainName: "back4blood"},
		},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}
	summary := &models.Summary{}

	outcome, err := engine.AddExtension(context.Background(), m, summary, reconcile.AddRequest{
		ModID:      598,
		GameDomain: "back4blood",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAdded, outcome.Kind)

	require.Len(t, m.Extensions, 1)
	entry := m.Extensions[0]
	assert.Equal(t, 598, entry.ModID)
	assert.Equal(t, 777, entry.FileID)
	assert.Equal(t, models.TypeGame, entry.Type)
	assert.Equal(t, "Back 4 Blood", entry.GameName)
	assert.Equal(t, 3562, entry.GameID)
	assert.Equal(t, "1.0.0", entry.Version)
}

func TestAddExtensionRejectsDuplicate(t *testing.T) {
	client := &fakeClient{
		mods:  map[int]*models.ModInfo{598: publishedMod(598, 7, "Neat Tool")},
		files: map[int][]models.ModFile{598: {mainFile(777, "1.0.0", "")}},
	}
	engine := testEngine(t, client)
	existing := models.CatalogEntry{
		ModID:       598,
		FileID:      500,
		Name:        "Neat Tool",
		Author:      "somebody",
		Uploader:    "somebody",
		Version:     "0.9.0",
		Timestamp:   1600000000,
		Description: &models.Description{Short: "s", Long: "l"},
	}
	m := &models.Manifest{Extensions: []models.CatalogEntry{existing}}
	summary := &models.Summary{}

	outcome, err := engine.AddExtension(context.Background(), m, summary, reconcile.AddRequest{ModID: 598})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRejected, outcome.Kind)

	require.Len(t, m.Extensions, 1)
	assert.Equal(t, existing, m.Extensions[0], "a rejected add leaves the existing entry unmodified")
}

func TestAddExtensionFatalCases(t *testing.T) {
	hidden := publishedMod(21, 7, "Hidden")
	hidden.Status = "hidden"
	noImage := publishedMod(22, 7, "No Image")
	noImage.PictureURL = ""

	client := &fakeClient{
		mods: map[int]*models.ModInfo{
			21: hidden,
			22: noImage,
			23: publishedMod(23, 99, "Uncategorized"),
			24: publishedMod(24, 7, "No Files"),
			33: publishedMod(33, 33, "French Translation"),
		},
		infoErr: map[int]error{20: errors.New("boom")},
	}
	engine := testEngine(t, client)

	for _, modID := range []int{20, 21, 22, 23, 24} {
		m := &models.Manifest{}
		_, err := engine.AddExtension(context.Background(), m, &models.Summary{}, reconcile.AddRequest{ModID: modID})
		require.Error(t, err, "mod %d should fail the add flow", modID)
		assert.ErrorIs(t, err, reconcile.ErrPrecondition)
		assert.Empty(t, m.Extensions, "mod %d must not mutate the manifest", modID)
	}

	// Translations need a language tag up front.
	m := &models.Manifest{}
	_, err := engine.AddExtension(context.Background(), m, &models.Summary{}, reconcile.AddRequest{ModID: 33})
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrPrecondition)
}

func TestAddExtensionGameWithoutDomainBecomesTool(t *testing.T) {
	client := &fakeClient{
		mods:  map[int]*models.ModInfo{598: publishedMod(598, 4, "Back 4 Blood Support")},
		files: map[int][]models.ModFile{598: {mainFile(777, "1.0.0", "")}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	outcome, err := engine.AddExtension(context.Background(), m, &models.Summary{}, reconcile.AddRequest{ModID: 598})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAdded, outcome.Kind)
	require.Len(t, m.Extensions, 1)
	assert.Equal(t, models.TypeTool, m.Extensions[0].Type)
	assert.Empty(t, m.Extensions[0].GameName)
}

func TestAddExtensionVetoInsertsStub(t *testing.T) {
	client := &fakeClient{
		mods: map[int]*models.ModInfo{61: publishedMod(61, 7, "Future Tool")},
		files: map[int][]models.ModFile{61: {
			mainFile(910, "5.0.0", "Requires Vortex >=2.0.0"),
		}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}
	summary := &models.Summary{}

	outcome, err := engine.AddExtension(context.Background(), m, summary, reconcile.AddRequest{ModID: 61})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRejected, outcome.Kind)

	require.Len(t, m.Extensions, 1)
	assert.True(t, m.Extensions[0].IsStub(), "the veto records the ID as seen with a stub")
	assert.Equal(t, 910, m.Extensions[0].FileID)
}

func TestAddExtensionTranslationCarriesLanguage(t *testing.T) {
	client := &fakeClient{
		mods:  map[int]*models.ModInfo{33: publishedMod(33, 33, "French Translation")},
		files: map[int][]models.ModFile{33: {mainFile(812, "1.0.0", "")}},
	}
	engine := testEngine(t, client)
	m := &models.Manifest{}

	outcome, err := engine.AddExtension(context.Background(), m, &models.Summary{}, reconcile.AddRequest{ModID: 33, Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAdded, outcome.Kind)
	require.Len(t, m.Extensions, 1)
	assert.Equal(t, models.TypeTranslation, m.Extensions[0].Type)
	assert.Equal(t, "fr", m.Extensions[0].Language)
}

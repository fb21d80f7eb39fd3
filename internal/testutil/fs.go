package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// WriteManifest is a helper that writes a manifest to a temp file and
// returns its path. It's useful for testing the store and CLI flows.
func WriteManifest(t *testing.T, dir string, m *models.Manifest) string {
	t.Helper()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("Failed to encode test manifest: %v", err)
	}
	path := filepath.Join(dir, "extensions-manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test manifest: %v", err)
	}
	return path
}

// WriteBundledGame creates a bundled game descriptor folder with an
// info.json, for testing the bundled merger.
func WriteBundledGame(t *testing.T, dir, folder string, descriptor map[string]string) string {
	t.Helper()
	gameDir := filepath.Join(dir, folder)
	if err := os.MkdirAll(gameDir, 0755); err != nil {
		t.Fatalf("Failed to create bundled game dir: %v", err)
	}
	data, err := json.Marshal(descriptor)
	if err != nil {
		t.Fatalf("Failed to encode descriptor: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gameDir, "info.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write info.json: %v", err)
	}
	return gameDir
}

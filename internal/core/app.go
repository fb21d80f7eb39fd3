package core

import (
	"fmt"

	"github.com/Nexus-Mods/Vortex-Backend/internal/config"
	"github.com/Nexus-Mods/Vortex-Backend/internal/manifest"
	"github.com/Nexus-Mods/Vortex-Backend/internal/nexus"
	"github.com/Nexus-Mods/Vortex-Backend/internal/notify"
	"github.com/Nexus-Mods/Vortex-Backend/internal/reconcile"
)

// App holds the core components shared by every CLI flow.
type App struct {
	Config   *config.Config
	Store    *manifest.Store
	Nexus    *nexus.Client
	Engine   *reconcile.Engine
	Notifier *notify.Notifier
}

// New sets up and returns a new App instance. It handles loading the
// configuration and wiring the lookup client, engine, store and
// notifier from it.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	categories, err := reconcile.ParseCategoryTable(cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("invalid category table: %w", err)
	}
	window, err := reconcile.NewVersionWindow(cfg.Vortex.OldestVersion, cfg.Vortex.NewestVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid version window: %w", err)
	}

	client := nexus.New(cfg.Nexus.BaseURL, cfg.Nexus.APIKey, cfg.Nexus.Domain)
	return &App{
		Config:   cfg,
		Store:    manifest.NewStore(cfg.Manifest.Path, cfg.Manifest.ArchiveDir),
		Nexus:    client,
		Engine:   reconcile.New(client, categories, window),
		Notifier: notify.New(cfg.Slack.WebhookURL),
	}, nil
}

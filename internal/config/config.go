// This file defines the configuration structure for the manifest
// updater.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the updater. It maps
// directly to the structure of config.yml.
type Config struct {
	Manifest struct {
		Path       string `mapstructure:"path"`
		ArchiveDir string `mapstructure:"archive_dir"`
	} `mapstructure:"manifest"`
	Nexus struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		// Game domain the extension mods live under.
		Domain string `mapstructure:"domain"`
	} `mapstructure:"nexus"`
	Vortex struct {
		// Oldest and newest supported application versions, the
		// compatibility window for "requires vortex" constraints.
		OldestVersion string `mapstructure:"oldest_version"`
		NewestVersion string `mapstructure:"newest_version"`
	} `mapstructure:"vortex"`
	// Categories maps marketplace category IDs to extension types
	// ("game", "theme", "translation", "tool"). IDs not listed here are
	// not managed by this system.
	Categories map[string]string `mapstructure:"categories"`
	Bundled    struct {
		Dir      string   `mapstructure:"dir"`
		Exclude  []string `mapstructure:"exclude"`
		ImageURL string   `mapstructure:"image_url"`
	} `mapstructure:"bundled"`
	Review struct {
		BaseURL string `mapstructure:"base_url"`
		Repo    string `mapstructure:"repo"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"review"`
	Slack struct {
		WebhookURL string `mapstructure:"webhook_url"`
	} `mapstructure:"slack"`
	Git struct {
		Enabled bool   `mapstructure:"enabled"`
		RepoDir string `mapstructure:"repo_dir"`
		Remote  string `mapstructure:"remote"`
		Push    bool   `mapstructure:"push"`
		Name    string `mapstructure:"name"`
		Email   string `mapstructure:"email"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"git"`
	Schedule struct {
		// Daily refresh time in "HH:MM" (UTC).
		RefreshAt string `mapstructure:"refresh_at"`
	} `mapstructure:"schedule"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a
	// "VORTEX_" prefix. e.g., VORTEX_NEXUS_API_KEY overrides the
	// `nexus.api_key` key.
	viper.SetEnvPrefix("VORTEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("manifest.path", "./out/extensions-manifest.json")
	viper.SetDefault("manifest.archive_dir", "./out/archive")
	viper.SetDefault("nexus.base_url", "https://api.nexusmods.com")
	// Secrets default to empty so their env overrides bind.
	viper.SetDefault("nexus.api_key", "")
	viper.SetDefault("nexus.domain", "site")
	viper.SetDefault("vortex.oldest_version", "1.8.0")
	viper.SetDefault("vortex.newest_version", "1.14.2")
	viper.SetDefault("categories", map[string]string{
		"4":  "game",
		"7":  "tool",
		"13": "theme",
		"33": "translation",
	})
	viper.SetDefault("bundled.dir", "./bundled")
	viper.SetDefault("bundled.image_url", "https://raw.githubusercontent.com/Nexus-Mods/Vortex-Backend/main/gameart")
	viper.SetDefault("review.base_url", "https://api.github.com")
	viper.SetDefault("review.repo", "Nexus-Mods/Vortex-Backend")
	viper.SetDefault("review.token", "")
	viper.SetDefault("slack.webhook_url", "")
	viper.SetDefault("git.remote", "origin")
	viper.SetDefault("git.token", "")
	viper.SetDefault("schedule.refresh_at", "06:00")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

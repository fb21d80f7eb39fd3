// Package nexus implements the marketplace lookup client used to
// resolve mod metadata, file lists, game info, and the recently-updated
// listing.
package nexus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// Sentinel errors for the lookup failure taxonomy. Callers distinguish
// a missing mod from a throttled or flaky API.
var (
	ErrNotFound    = errors.New("nexus: not found")
	ErrRateLimited = errors.New("nexus: rate limited")
)

// Client talks to the Nexus Mods v1 API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	domain  string
}

// New creates a new API client for the given game domain.
func New(baseURL, apiKey, domain string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		domain:  domain,
	}
}

// ModInfo fetches the current metadata for a single mod.
func (c *Client) ModInfo(ctx context.Context, modID int) (*models.ModInfo, error) {
	var info models.ModInfo
	url := fmt.Sprintf("%s/v1/games/%s/mods/%d.json", c.baseURL, c.domain, modID)
	if err := c.getJSON(ctx, url, &info); err != nil {
		return nil, fmt.Errorf("mod %d: %w", modID, err)
	}
	return &info, nil
}

// ModFiles fetches the list of downloadable files for a mod.
func (c *Client) ModFiles(ctx context.Context, modID int) ([]models.ModFile, error) {
	var payload struct {
		Files []models.ModFile `json:"files"`
	}
	url := fmt.Sprintf("%s/v1/games/%s/mods/%d/files.json", c.baseURL, c.domain, modID)
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("mod %d files: %w", modID, err)
	}
	return payload.Files, nil
}

// RecentlyUpdated fetches the mods updated within the given period.
// Accepted periods are "1d", "1w" and "1m", matching the API.
func (c *Client) RecentlyUpdated(ctx context.Context, period string) ([]models.UpdatedMod, error) {
	var updated []models.UpdatedMod
	url := fmt.Sprintf("%s/v1/games/%s/mods/updated.json?period=%s", c.baseURL, c.domain, period)
	if err := c.getJSON(ctx, url, &updated); err != nil {
		return nil, fmt.Errorf("recently updated (%s): %w", period, err)
	}
	return updated, nil
}

// GameInfo resolves a game domain to its numeric ID and display name.
func (c *Client) GameInfo(ctx context.Context, domain string) (*models.GameInfo, error) {
	var info models.GameInfo
	url := fmt.Sprintf("%s/v1/games/%s.json", c.baseURL, domain)
	if err := c.getJSON(ctx, url, &info); err != nil {
		return nil, fmt.Errorf("game %s: %w", domain, err)
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logRateLimit(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// logRateLimit surfaces the API's remaining-request headers. Advisory
// only: throttling is the scheduler's problem, not the client's.
func (c *Client) logRateLimit(resp *http.Response) {
	remaining := resp.Header.Get("X-RL-Hourly-Remaining")
	if remaining == "" {
		return
	}
	if remaining == "0" || len(remaining) == 1 {
		log.Printf("Warning: Nexus API hourly rate limit nearly exhausted (%s remaining)", remaining)
	}
}

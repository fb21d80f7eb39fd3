// Package review reads the externally tracked extension review queue.
// The reconciliation core only ever consumes these requests; advancing
// their status on the board is the review workflow's job.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// reviewLabel marks the issues that are extension review requests.
const reviewLabel = "extension-review"

// Client lists queued review requests from the hosting provider's
// issue API.
type Client struct {
	client  *http.Client
	baseURL string
	repo    string
	token   string
}

// New creates a review-queue client for the given repository.
func New(baseURL, repo, token string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		repo:    repo,
		token:   token,
	}
}

// issue is the slice of the issue API response we care about.
type issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	NodeID string `json:"node_id"`
	State  string `json:"state"`
}

// QueuedRequests returns the open review requests, oldest first. Issues
// whose body does not carry a parsable mod ID are skipped.
func (c *Client) QueuedRequests(ctx context.Context) ([]models.ReviewRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/issues?labels=%s&state=open&sort=created&direction=asc", c.baseURL, c.repo, reviewLabel)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review queue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("review queue returned status %d", resp.StatusCode)
	}

	var issues []issue
	if err := json.NewDecoder(resp.Body).Decode(&issues); err != nil {
		return nil, fmt.Errorf("failed to parse review queue: %w", err)
	}

	var requests []models.ReviewRequest
	for _, is := range issues {
		r, ok := parseIssueBody(is.Body)
		if !ok {
			continue
		}
		r.IssueNumber = is.Number
		r.ProjectItemID = is.NodeID
		r.Status = models.ReviewQueued
		requests = append(requests, r)
	}
	return requests, nil
}

// parseIssueBody extracts the structured fields from an issue-form
// body: "### <heading>" lines each followed by the submitted value,
// with "_No response_" standing in for an empty field.
func parseIssueBody(body string) (models.ReviewRequest, bool) {
	fields := make(map[string]string)
	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines); i++ {
		heading, ok := strings.CutPrefix(strings.TrimSpace(lines[i]), "### ")
		if !ok {
			continue
		}
		value := ""
		for j := i + 1; j < len(lines); j++ {
			v := strings.TrimSpace(lines[j])
			if v == "" {
				continue
			}
			if strings.HasPrefix(v, "### ") {
				break
			}
			value = v
			break
		}
		if value == "_No response_" {
			value = ""
		}
		fields[strings.ToLower(heading)] = value
	}

	var r models.ReviewRequest
	modID, err := strconv.Atoi(fields["mod id"])
	if err != nil || modID <= 0 {
		return r, false
	}
	r.ModID = modID
	r.GameDomain = fields["game domain"]
	r.LanguageTag = fields["language"]
	r.ExistingURL = fields["existing extension url"]
	return r, true
}

// Package notify turns a reconciliation summary into the end-of-run
// digest and delivers it to the team channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Nexus-Mods/Vortex-Backend/internal/models"
)

// modURLBase is where outcome links point.
const modURLBase = "https://www.nexusmods.com/site/mods"

// Notifier posts run digests to a Slack incoming webhook. An empty
// webhook URL turns the notifier into a log-only no-op, which is what
// local and dry runs want.
type Notifier struct {
	client     *http.Client
	webhookURL string
}

// New creates a notifier for the given webhook URL.
func New(webhookURL string) *Notifier {
	return &Notifier{
		client:     &http.Client{Timeout: 15 * time.Second},
		webhookURL: webhookURL,
	}
}

// Summarize renders the human-readable digest for a run.
func Summarize(title string, sum *models.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* finished in %s\n", title, sum.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "added %d, updated %d, removed %d, rejected %d, unchanged %d, skipped %d\n",
		sum.Count(models.OutcomeAdded), sum.Count(models.OutcomeUpdated),
		sum.Count(models.OutcomeRemoved), sum.Count(models.OutcomeRejected),
		sum.Count(models.OutcomeUnchanged), sum.Count(models.OutcomeSkipped))

	appendSection(&b, "Added", sum.ByKind(models.OutcomeAdded))
	appendSection(&b, "Updated", sum.ByKind(models.OutcomeUpdated))
	appendSection(&b, "Removed", sum.ByKind(models.OutcomeRemoved))
	appendSection(&b, "Rejected", sum.ByKind(models.OutcomeRejected))
	return b.String()
}

func appendSection(b *strings.Builder, heading string, outcomes []models.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, o := range outcomes {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("mod %d", o.ModID)
		}
		line := fmt.Sprintf("• <%s/%d|%s>", modURLBase, o.ModID, name)
		if o.Reason != "" {
			line += " (" + o.Reason + ")"
		}
		b.WriteString(line + "\n")
	}
}

// Send posts the digest for a run. Delivery failures are logged, never
// fatal: the manifest is already saved by the time we get here.
func (n *Notifier) Send(ctx context.Context, title string, sum *models.Summary) {
	text := Summarize(title, sum)
	log.Printf("Run summary:\n%s", text)

	if n.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		log.Printf("Warning: failed to encode Slack payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Warning: failed to build Slack request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("Warning: failed to post Slack notification: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Warning: Slack webhook returned status %d", resp.StatusCode)
	}
}

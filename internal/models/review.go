package models

// ReviewRequestStatus tracks where a review request sits in the
// externally managed workflow. The reconciliation core only ever reads
// requests; advancing their status is the review board's job.
type ReviewRequestStatus string

const (
	ReviewQueued    ReviewRequestStatus = "queued"
	ReviewCompleted ReviewRequestStatus = "completed"
)

// ReviewRequest is an externally tracked request to add one new
// marketplace extension to the manifest.
type ReviewRequest struct {
	IssueNumber   int                 `json:"issue_number"`
	ModID         int                 `json:"mod_id"`
	GameDomain    string              `json:"game_domain,omitempty"`
	LanguageTag   string              `json:"language_tag,omitempty"`
	ExistingURL   string              `json:"existing_extension_url,omitempty"`
	ProjectItemID string              `json:"project_item_id,omitempty"`
	Status        ReviewRequestStatus `json:"status"`
}

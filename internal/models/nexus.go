package models

// ModInfo is the per-mod metadata returned by the marketplace API.
type ModInfo struct {
	ModID            int    `json:"mod_id"`
	GameID           int    `json:"game_id"`
	DomainName       string `json:"domain_name"`
	CategoryID       int    `json:"category_id"`
	Name             string `json:"name"`
	Summary          string `json:"summary"`
	Description      string `json:"description"`
	Version          string `json:"version"`
	Author           string `json:"author"`
	UploadedBy       string `json:"uploaded_by"`
	PictureURL       string `json:"picture_url"`
	UniqueDownloads  int    `json:"mod_unique_downloads"`
	EndorsementCount int    `json:"endorsement_count"`
	CreatedTimestamp int64  `json:"created_timestamp"`
	UpdatedTimestamp int64  `json:"updated_timestamp"`
	Status           string `json:"status"`
	Available        bool   `json:"available"`
}

// Published reports whether the mod is live on the marketplace.
func (m *ModInfo) Published() bool { return m.Status == "published" }

// ModFile is one downloadable file revision of a mod.
type ModFile struct {
	FileID            int    `json:"file_id"`
	Name              string `json:"name"`
	Version           string `json:"version"`
	CategoryID        int    `json:"category_id"`
	CategoryName      string `json:"category_name"`
	UploadedTimestamp int64  `json:"uploaded_timestamp"`
	Description       string `json:"description"`
}

// IsMain reports whether the file is flagged as the primary
// distributable artifact, as opposed to optional/archived/old files.
func (f *ModFile) IsMain() bool { return f.CategoryName == "MAIN" }

// UpdatedMod is one element of the "recently updated" listing.
type UpdatedMod struct {
	ModID             int   `json:"mod_id"`
	LatestFileUpdate  int64 `json:"latest_file_update"`
	LatestModActivity int64 `json:"latest_mod_activity"`
}

// GameInfo is the game metadata resolved from a game domain.
type GameInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	DomainName string `json:"domain_name"`
}

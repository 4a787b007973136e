package models

// Campaign is a top-level advertising container owning one or more ad groups.
type Campaign struct {
	ID           string `json:"nccCampaignId"`
	Name         string `json:"name"`
	CampaignType string `json:"campaignType"`
	Status       string `json:"status"`
	UserLock     bool   `json:"userLock"`
}

// CampaignSummary is a campaign enriched with performance stats for the API surface.
type CampaignSummary struct {
	Campaign
	Stats Stats `json:"stats"`
}

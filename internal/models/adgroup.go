package models

// MaxKeywordsPerGroup is the platform-enforced keyword capacity of a single
// ad group, mirrored locally so the allocator can split before the upstream
// rejects.
const MaxKeywordsPerGroup = 1000

// AdGroup is a named bucket of keywords and creatives sharing a default bid.
type AdGroup struct {
	ID         string `json:"nccAdgroupId"`
	CampaignID string `json:"nccCampaignId"`
	Name       string `json:"name"`
	BidAmt     int    `json:"bidAmt"`
	Status     string `json:"status"`
	UserLock   bool   `json:"userLock"`
}

// AdGroupSummary is an ad group enriched with performance stats.
type AdGroupSummary struct {
	AdGroup
	Stats Stats `json:"stats"`
}

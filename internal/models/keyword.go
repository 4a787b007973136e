package models

// Keyword statuses reported by the upstream platform.
const (
	KeywordEligible = "ELIGIBLE"
	KeywordPaused   = "PAUSED"
)

// Keyword is a biddable search term. Its effective bid is either its own
// bidAmt or the owning group's default when UseGroupBid is set.
type Keyword struct {
	ID          string `json:"nccKeywordId"`
	AdGroupID   string `json:"nccAdgroupId"`
	Text        string `json:"keyword"`
	BidAmt      int    `json:"bidAmt"`
	UseGroupBid bool   `json:"useGroupBidAmt"`
	Status      string `json:"status"`
	UserLock    bool   `json:"userLock"`
}

// EffectiveBid returns the bid the platform actually uses for this keyword:
// the group default when the keyword inherits it, its own amount otherwise.
func (k *Keyword) EffectiveBid(groupBid int) int {
	if k.UseGroupBid {
		return groupBid
	}
	return k.BidAmt
}

// IsEligible reports whether the keyword is currently serving and not
// paused by the account owner.
func (k *Keyword) IsEligible() bool {
	return k.Status == KeywordEligible && !k.UserLock
}

// KeywordSummary is the API-surface shape of a keyword: effective bid,
// inherited-bid flag, stats and the bid estimate for the requested rank.
type KeywordSummary struct {
	ID           string        `json:"nccKeywordId"`
	AdGroupID    string        `json:"nccAdGroupId"`
	Text         string        `json:"keyword"`
	BidAmt       int           `json:"bidAmt"`
	OriginalBid  int           `json:"originalBid"`
	UseGroupBid  bool          `json:"useGroupBidAmt"`
	Status       string        `json:"status"`
	Managed      string        `json:"managedStatus"`
	Stats        Stats         `json:"stats"`
	CurrentRank  float64       `json:"currentRankEstimate"`
	BidEstimates []BidEstimate `json:"bidEstimates"`
}

// BidEstimate is the upstream's estimated bid for holding a given rank.
type BidEstimate struct {
	Rank int `json:"rank"`
	Bid  int `json:"bid"`
}

package searchad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bidpilot/internal/models"
)

// Upstream batch ceilings.
const (
	MaxStatsIDs        = 50
	MaxKeywordBatch    = 100
	statsDefaultFields = `["impCnt","clkCnt","salesAmt","ccnt","avgRnk","convAmt"]`
)

// StatsWindow selects the time range of a stats query: either a named
// preset ("today", "yesterday") or an explicit since/until range.
type StatsWindow struct {
	DatePreset string
	Since      time.Time
	Until      time.Time
}

// Today and Yesterday are the preset windows the rank resolver tries first.
func Today() StatsWindow     { return StatsWindow{DatePreset: "today"} }
func Yesterday() StatsWindow { return StatsWindow{DatePreset: "yesterday"} }

// Trailing30Days covers the thirty days ending yesterday.
func Trailing30Days(now time.Time) StatsWindow {
	return StatsWindow{
		Since: now.AddDate(0, 0, -30),
		Until: now.AddDate(0, 0, -1),
	}
}

func (w StatsWindow) query(q url.Values) {
	if w.DatePreset != "" {
		q.Set("datePreset", w.DatePreset)
		return
	}
	tr, _ := json.Marshal(map[string]string{
		"since": w.Since.Format("2006-01-02"),
		"until": w.Until.Format("2006-01-02"),
	})
	q.Set("timeRange", string(tr))
}

// Campaigns lists all campaigns for the account.
func (c *Client) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	raw, err := c.Call(ctx, "GET", "/ncc/campaigns", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []models.Campaign
	return out, json.Unmarshal(raw, &out)
}

// AdGroups lists the ad groups under a campaign.
func (c *Client) AdGroups(ctx context.Context, campaignID string) ([]models.AdGroup, error) {
	q := url.Values{"nccCampaignId": {campaignID}}
	raw, err := c.Call(ctx, "GET", "/ncc/adgroups", q, nil)
	if err != nil {
		return nil, err
	}
	var out []models.AdGroup
	return out, json.Unmarshal(raw, &out)
}

// AdGroup fetches one ad group by id.
func (c *Client) AdGroup(ctx context.Context, id string) (*models.AdGroup, error) {
	raw, err := c.Call(ctx, "GET", "/ncc/adgroups/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var out models.AdGroup
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAdGroup creates an ad group under a campaign. The upstream answers
// with either a bare object or a one-element list depending on API version.
func (c *Client) CreateAdGroup(ctx context.Context, campaignID, name string) (*models.AdGroup, error) {
	body := map[string]string{"nccCampaignId": campaignID, "name": name}
	raw, err := c.Call(ctx, "POST", "/ncc/adgroups", nil, body)
	if err != nil {
		return nil, err
	}
	return firstOrObject[models.AdGroup](raw)
}

// UpdateAdGroupBid sets an ad group's default bid.
func (c *Client) UpdateAdGroupBid(ctx context.Context, id string, bid int) error {
	q := url.Values{"fields": {"bidAmt"}}
	_, err := c.Call(ctx, "PUT", "/ncc/adgroups/"+id, q, map[string]int{"bidAmt": bid})
	return err
}

// Keywords lists the keywords in an ad group.
func (c *Client) Keywords(ctx context.Context, adGroupID string) ([]models.Keyword, error) {
	q := url.Values{"nccAdgroupId": {adGroupID}}
	raw, err := c.Call(ctx, "GET", "/ncc/keywords", q, nil)
	if err != nil {
		return nil, err
	}
	var out []models.Keyword
	return out, json.Unmarshal(raw, &out)
}

// NewKeyword is one keyword to submit for creation.
type NewKeyword struct {
	Text   string
	BidAmt int
}

// CreateKeywords bulk-creates keywords in an ad group, splitting into
// batches of at most MaxKeywordBatch. Returns the created keywords from
// every batch that succeeded; a batch error aborts the remainder.
func (c *Client) CreateKeywords(ctx context.Context, adGroupID string, items []NewKeyword) ([]models.Keyword, error) {
	var created []models.Keyword
	for start := 0; start < len(items); start += MaxKeywordBatch {
		end := min(start+MaxKeywordBatch, len(items))

		batch := make([]map[string]any, 0, end-start)
		for _, item := range items[start:end] {
			entry := map[string]any{
				"keyword":        item.Text,
				"useGroupBidAmt": false,
			}
			if item.BidAmt > 0 {
				entry["bidAmt"] = item.BidAmt
			}
			batch = append(batch, entry)
		}

		q := url.Values{"nccAdgroupId": {adGroupID}}
		raw, err := c.Call(ctx, "POST", "/ncc/keywords", q, batch)
		if err != nil {
			return created, fmt.Errorf("create keywords batch %d-%d: %w", start, end, err)
		}
		var batchOut []models.Keyword
		if err := json.Unmarshal(raw, &batchOut); err != nil {
			return created, err
		}
		created = append(created, batchOut...)
	}
	return created, nil
}

// UpdateKeywordBid sets a keyword's own bid and detaches it from the group
// default.
func (c *Client) UpdateKeywordBid(ctx context.Context, keywordID, adGroupID string, bid int) error {
	q := url.Values{"fields": {"bidAmt,useGroupBidAmt"}}
	body := map[string]any{
		"nccAdgroupId":   adGroupID,
		"bidAmt":         bid,
		"useGroupBidAmt": false,
	}
	_, err := c.Call(ctx, "PUT", "/ncc/keywords/"+keywordID, q, body)
	return err
}

// Ads lists the creatives in an ad group.
func (c *Client) Ads(ctx context.Context, adGroupID string) ([]models.Ad, error) {
	q := url.Values{"nccAdgroupId": {adGroupID}}
	raw, err := c.Call(ctx, "GET", "/ncc/ads", q, nil)
	if err != nil {
		return nil, err
	}
	var out []models.Ad
	return out, json.Unmarshal(raw, &out)
}

// CreateAd submits one creative to an ad group. The creation endpoint only
// accepts the bulk form, so the single item is wrapped in a list with
// isList=true.
func (c *Client) CreateAd(ctx context.Context, adGroupID, adType string, content json.RawMessage) (*models.Ad, error) {
	if adType == "" {
		adType = "TEXT"
	}
	body := []map[string]any{{
		"type":         adType,
		"nccAdgroupId": adGroupID,
		"ad":           content,
	}}
	q := url.Values{"isList": {"true"}}
	raw, err := c.Call(ctx, "POST", "/ncc/ads", q, body)
	if err != nil {
		return nil, err
	}
	return firstOrObject[models.Ad](raw)
}

// DeleteAd removes a creative.
func (c *Client) DeleteAd(ctx context.Context, adID string) error {
	_, err := c.Call(ctx, "DELETE", "/ncc/ads/"+adID, nil, nil)
	return err
}

// SetAdUserLock pauses (true) or resumes (false) a creative.
func (c *Client) SetAdUserLock(ctx context.Context, adID string, locked bool) error {
	q := url.Values{"fields": {"userLock"}}
	_, err := c.Call(ctx, "PUT", "/ncc/ads/"+adID, q, map[string]bool{"userLock": locked})
	return err
}

// Extensions lists the ad extensions owned by an ad group.
func (c *Client) Extensions(ctx context.Context, ownerID string) ([]models.Extension, error) {
	q := url.Values{"ownerId": {ownerID}}
	raw, err := c.Call(ctx, "GET", "/ncc/ad-extensions", q, nil)
	if err != nil {
		return nil, err
	}
	var out []models.Extension
	return out, json.Unmarshal(raw, &out)
}

// CreateExtension submits one extension, wrapped in the bulk list form.
func (c *Client) CreateExtension(ctx context.Context, ext *models.Extension) (*models.Extension, error) {
	q := url.Values{"isList": {"true"}}
	raw, err := c.Call(ctx, "POST", "/ncc/ad-extensions", q, []*models.Extension{ext})
	if err != nil {
		return nil, err
	}
	return firstOrObject[models.Extension](raw)
}

// DeleteExtension removes an extension.
func (c *Client) DeleteExtension(ctx context.Context, extID string) error {
	_, err := c.Call(ctx, "DELETE", "/ncc/ad-extensions/"+extID, nil, nil)
	return err
}

// SetExtensionUserLock pauses or resumes an extension.
func (c *Client) SetExtensionUserLock(ctx context.Context, extID string, locked bool) error {
	q := url.Values{"fields": {"userLock"}}
	_, err := c.Call(ctx, "PUT", "/ncc/ad-extensions/"+extID, q, map[string]bool{"userLock": locked})
	return err
}

// Channels lists the account's business channels.
func (c *Client) Channels(ctx context.Context) ([]models.BusinessChannel, error) {
	raw, err := c.Call(ctx, "GET", "/ncc/channels", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []models.BusinessChannel
	return out, json.Unmarshal(raw, &out)
}

// Stats fetches raw performance rows for up to MaxStatsIDs entity ids over
// one time window.
func (c *Client) Stats(ctx context.Context, ids []string, window StatsWindow) ([]models.StatRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxStatsIDs {
		return nil, fmt.Errorf("stats query limited to %d ids, got %d", MaxStatsIDs, len(ids))
	}

	q := url.Values{
		"ids":    {strings.Join(ids, ",")},
		"fields": {statsDefaultFields},
	}
	window.query(q)

	raw, err := c.Call(ctx, "GET", "/stats", q, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []models.StatRow `json:"data"`
	}
	return out.Data, json.Unmarshal(raw, &out)
}

// EstimateBidsByRank asks the upstream for the bid expected to hold the
// given average position for each keyword id. At most MaxStatsIDs per call.
func (c *Client) EstimateBidsByRank(ctx context.Context, ids []string, position int, device string) (map[string]int, error) {
	if len(ids) == 0 {
		return map[string]int{}, nil
	}
	if len(ids) > MaxStatsIDs {
		return nil, fmt.Errorf("estimate query limited to %d ids, got %d", MaxStatsIDs, len(ids))
	}

	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{"key": id, "position": position})
	}
	body := map[string]any{"device": device, "items": items}

	raw, err := c.Call(ctx, "POST", "/estimate/average-position-bid/id", nil, body)
	if err != nil {
		return nil, err
	}

	var out struct {
		Estimate []struct {
			NccKeywordID string `json:"nccKeywordId"`
			KeywordID    string `json:"keywordId"`
			Key          string `json:"key"`
			Bid          int    `json:"bid"`
		} `json:"estimate"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	result := make(map[string]int, len(out.Estimate))
	for _, e := range out.Estimate {
		id := e.NccKeywordID
		if id == "" {
			id = e.KeywordID
		}
		if id == "" {
			id = e.Key
		}
		if id != "" {
			result[id] = e.Bid
		}
	}
	return result, nil
}

// IPExclusion is one blocked visitor address in the account tool settings.
type IPExclusion struct {
	IP   string `json:"ip"`
	Memo string `json:"memo"`
}

// IPExclusions fetches the account's blocked IP list.
func (c *Client) IPExclusions(ctx context.Context) ([]IPExclusion, error) {
	raw, err := c.Call(ctx, "GET", "/tool/ip-exclusions", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []IPExclusion
	return out, json.Unmarshal(raw, &out)
}

// PutIPExclusions replaces the account's blocked IP list. The upstream only
// supports whole-list replacement, so callers read-modify-write.
func (c *Client) PutIPExclusions(ctx context.Context, list []IPExclusion) error {
	_, err := c.Call(ctx, "PUT", "/tool/ip-exclusions", nil, list)
	return err
}

// Ping issues the cheapest authenticated call to verify the credentials
// and whether the account is currently rate limited.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, "GET", "/ncc/campaigns", nil, nil)
	return err
}

// firstOrObject decodes a response that is either a single object or a
// one-element list of objects.
func firstOrObject[T any](raw json.RawMessage) (*T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("upstream returned an empty list")
		}
		return &list[0], nil
	}
	var single T
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return &single, nil
}

package api

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"bidpilot/internal/models"
)

// adFanout caps parallel per-group listings when walking a whole campaign.
const adFanout = 10

// AdHandler serves creative operations via JSON API.
type AdHandler struct{}

// NewAdHandler creates a new API ad handler.
func NewAdHandler() *AdHandler {
	return &AdHandler{}
}

// List returns creatives for one ad group, or for every ad group of a
// campaign when campaignId is given instead.
func (h *AdHandler) List(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	if adGroupID := c.Query("adgroupId", ""); adGroupID != "" {
		ads, err := sa.Ads(c.Context(), adGroupID)
		if err != nil {
			return upstreamError(c, err)
		}
		return jsonSuccess(c, summarize(ads))
	}

	campaignID := c.Query("campaignId", "")
	if campaignID == "" {
		return jsonError(c, fiber.StatusBadRequest, "adgroupId or campaignId is required")
	}

	ads, err := h.campaignAds(c, campaignID)
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, summarize(ads))
}

// campaignAds lists every creative in a campaign, fanning out over its ad
// groups with bounded concurrency.
func (h *AdHandler) campaignAds(c fiber.Ctx, campaignID string) ([]models.Ad, error) {
	sa, _ := client(c)

	groups, err := sa.AdGroups(c.Context(), campaignID)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var all []models.Ad
	g, ctx := errgroup.WithContext(c.Context())
	g.SetLimit(adFanout)
	for _, grp := range groups {
		g.Go(func() error {
			ads, err := sa.Ads(ctx, grp.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, ads...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].AdGroupID != all[j].AdGroupID {
			return all[i].AdGroupID < all[j].AdGroupID
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// Create submits one creative to an ad group.
func (h *AdHandler) Create(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		AdGroupID string          `json:"adgroupId"`
		Type      string          `json:"type"`
		Ad        json.RawMessage `json:"ad"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.AdGroupID == "" || len(body.Ad) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "adgroupId and ad content are required")
	}

	ad, err := sa.CreateAd(c.Context(), body.AdGroupID, body.Type, body.Ad)
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, ad.Summarize())
}

// Delete removes a creative.
func (h *AdHandler) Delete(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	if err := sa.DeleteAd(c.Context(), c.Params("id")); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"deleted": c.Params("id")})
}

// SetStatus pauses or resumes a creative.
func (h *AdHandler) SetStatus(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		Paused bool `json:"paused"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := sa.SetAdUserLock(c.Context(), c.Params("id"), body.Paused); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": c.Params("id"), "paused": body.Paused})
}

// AdCluster is a set of creatives across ad groups sharing the same copy.
type AdCluster struct {
	Signature string             `json:"signature"`
	Count     int                `json:"count"`
	Paused    int                `json:"paused"`
	Ads       []models.AdSummary `json:"ads"`
}

// Grouped clusters a campaign's creatives by their visible copy so the
// same ad appearing in many groups can be managed as one.
func (h *AdHandler) Grouped(c fiber.Ctx) error {
	campaignID := c.Query("campaignId", "")
	if campaignID == "" {
		return jsonError(c, fiber.StatusBadRequest, "campaignId is required")
	}
	if _, err := requireClient(c); err != nil {
		return err
	}

	ads, err := h.campaignAds(c, campaignID)
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, clusterAds(ads))
}

// SetGroupedStatus pauses or resumes every creative in a campaign whose
// copy matches the given signature.
func (h *AdHandler) SetGroupedStatus(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		CampaignID string `json:"campaignId"`
		Signature  string `json:"signature"`
		Paused     bool   `json:"paused"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.CampaignID == "" || body.Signature == "" {
		return jsonError(c, fiber.StatusBadRequest, "campaignId and signature are required")
	}

	ads, err := h.campaignAds(c, body.CampaignID)
	if err != nil {
		return upstreamError(c, err)
	}

	updated := make([]string, 0)
	failed := map[string]string{}
	for _, ad := range ads {
		if ad.Signature() != body.Signature {
			continue
		}
		if err := sa.SetAdUserLock(c.Context(), ad.ID, body.Paused); err != nil {
			failed[ad.ID] = err.Error()
			continue
		}
		updated = append(updated, ad.ID)
	}
	if len(updated) == 0 && len(failed) == 0 {
		return jsonError(c, fiber.StatusNotFound, "no ads match the signature")
	}
	return jsonSuccess(c, fiber.Map{
		"updated": updated,
		"failed":  failed,
		"paused":  body.Paused,
	})
}

func summarize(ads []models.Ad) []models.AdSummary {
	out := make([]models.AdSummary, 0, len(ads))
	for i := range ads {
		out = append(out, ads[i].Summarize())
	}
	return out
}

func clusterAds(ads []models.Ad) []AdCluster {
	index := map[string]int{}
	var clusters []AdCluster
	for i := range ads {
		sig := ads[i].Signature()
		pos, ok := index[sig]
		if !ok {
			pos = len(clusters)
			index[sig] = pos
			clusters = append(clusters, AdCluster{Signature: sig})
		}
		clusters[pos].Count++
		if ads[i].UserLock {
			clusters[pos].Paused++
		}
		clusters[pos].Ads = append(clusters[pos].Ads, ads[i].Summarize())
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Count > clusters[j].Count })
	return clusters
}

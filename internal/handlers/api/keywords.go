package api

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"bidpilot/internal/models"
	"bidpilot/internal/rank"
	"bidpilot/internal/searchad"
	"bidpilot/internal/validation"
)

// bulkBidConcurrency caps parallel upstream mutations in a bulk update.
const bulkBidConcurrency = 10

// KeywordHandler serves keyword operations via JSON API.
type KeywordHandler struct{}

// NewKeywordHandler creates a new API keyword handler.
func NewKeywordHandler() *KeywordHandler {
	return &KeywordHandler{}
}

// List returns the keywords of an ad group enriched with today's stats,
// the current rank estimate, and the upstream's bid estimate for the
// requested rank (query param "rank", default 1).
func (h *KeywordHandler) List(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	adGroupID := c.Query("adgroupId", "")
	if adGroupID == "" {
		return jsonError(c, fiber.StatusBadRequest, "adgroupId is required")
	}
	targetRank, err := strconv.Atoi(c.Query("rank", "1"))
	if err != nil || targetRank < 1 || targetRank > 10 {
		return jsonError(c, fiber.StatusBadRequest, "rank must be between 1 and 10")
	}
	device := validation.ValidDevice(c.Query("device", ""))

	group, err := sa.AdGroup(c.Context(), adGroupID)
	if err != nil {
		return upstreamError(c, err)
	}
	keywords, err := sa.Keywords(c.Context(), adGroupID)
	if err != nil {
		return upstreamError(c, err)
	}

	ids := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		ids = append(ids, kw.ID)
	}
	stats, err := statsByID(c.Context(), sa, ids, searchad.Today())
	if err != nil {
		return upstreamError(c, err)
	}

	resolver := rank.NewResolver(sa)
	ranks := resolver.ResolveRanks(c.Context(), ids)
	estimates := resolver.ResolveBidEstimates(c.Context(), ids, targetRank, device)

	out := make([]models.KeywordSummary, 0, len(keywords))
	for _, kw := range keywords {
		summary := models.KeywordSummary{
			ID:          kw.ID,
			AdGroupID:   kw.AdGroupID,
			Text:        kw.Text,
			BidAmt:      kw.EffectiveBid(group.BidAmt),
			OriginalBid: kw.BidAmt,
			UseGroupBid: kw.UseGroupBid,
			Status:      kw.Status,
			Managed:     managedStatus(&kw),
			Stats:       models.ShapeStats(stats[kw.ID]),
			CurrentRank: ranks[kw.ID],
		}
		if bid, ok := estimates[kw.ID]; ok && bid > 0 {
			summary.BidEstimates = []models.BidEstimate{{Rank: targetRank, Bid: bid}}
		}
		out = append(out, summary)
	}
	return jsonSuccess(c, out)
}

// Create bulk-adds keywords to an ad group.
func (h *KeywordHandler) Create(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		AdGroupID string `json:"adgroupId"`
		Keywords  []struct {
			Keyword string `json:"keyword"`
			BidAmt  int    `json:"bidAmt"`
		} `json:"keywords"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.AdGroupID == "" || len(body.Keywords) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "adgroupId and keywords are required")
	}

	seen := map[string]bool{}
	items := make([]searchad.NewKeyword, 0, len(body.Keywords))
	for _, kw := range body.Keywords {
		if !validation.ValidateKeywordText(kw.Keyword) {
			return jsonError(c, fiber.StatusBadRequest, "invalid keyword: "+kw.Keyword)
		}
		norm := validation.NormalizeKeyword(kw.Keyword)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		items = append(items, searchad.NewKeyword{Text: kw.Keyword, BidAmt: kw.BidAmt})
	}

	created, err := sa.CreateKeywords(c.Context(), body.AdGroupID, items)
	if err != nil {
		// Partial creation still reports what landed.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
			"data":   fiber.Map{"created": created},
		})
	}
	return jsonSuccess(c, fiber.Map{"created": created})
}

// UpdateBids applies individual bids to many keywords concurrently.
func (h *KeywordHandler) UpdateBids(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		Updates []struct {
			KeywordID string `json:"keywordId"`
			AdGroupID string `json:"adgroupId"`
			BidAmt    int    `json:"bidAmt"`
		} `json:"updates"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.Updates) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "updates are required")
	}
	for _, u := range body.Updates {
		if u.KeywordID == "" || u.AdGroupID == "" {
			return jsonError(c, fiber.StatusBadRequest, "keywordId and adgroupId are required on every update")
		}
		if !validation.ValidateBidAmount(u.BidAmt) {
			return jsonError(c, fiber.StatusBadRequest, "bidAmt out of range for "+u.KeywordID)
		}
	}

	results := make([]string, len(body.Updates))
	g, ctx := errgroup.WithContext(c.Context())
	g.SetLimit(bulkBidConcurrency)
	for i, u := range body.Updates {
		g.Go(func() error {
			if err := sa.UpdateKeywordBid(ctx, u.KeywordID, u.AdGroupID, u.BidAmt); err != nil {
				results[i] = err.Error()
			}
			return nil
		})
	}
	g.Wait()

	updated := make([]string, 0, len(body.Updates))
	failed := map[string]string{}
	for i, u := range body.Updates {
		if results[i] == "" {
			updated = append(updated, u.KeywordID)
		} else {
			failed[u.KeywordID] = results[i]
		}
	}
	return jsonSuccess(c, fiber.Map{
		"updated": updated,
		"failed":  failed,
	})
}

// managedStatus reduces the upstream status pair to what listings show.
func managedStatus(kw *models.Keyword) string {
	if kw.UserLock {
		return "paused"
	}
	if kw.Status == models.KeywordEligible {
		return "active"
	}
	return "inactive"
}

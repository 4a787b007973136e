package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/models"
	"bidpilot/internal/searchad"
	"bidpilot/internal/validation"
)

// AdGroupHandler serves ad group operations via JSON API.
type AdGroupHandler struct{}

// NewAdGroupHandler creates a new API ad group handler.
func NewAdGroupHandler() *AdGroupHandler {
	return &AdGroupHandler{}
}

// List returns the ad groups of a campaign with today's stats attached.
func (h *AdGroupHandler) List(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	campaignID := c.Query("campaignId", "")
	if campaignID == "" {
		return jsonError(c, fiber.StatusBadRequest, "campaignId is required")
	}

	groups, err := sa.AdGroups(c.Context(), campaignID)
	if err != nil {
		return upstreamError(c, err)
	}

	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	stats, err := statsByID(c.Context(), sa, ids, searchad.Today())
	if err != nil {
		return upstreamError(c, err)
	}

	out := make([]models.AdGroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.AdGroupSummary{
			AdGroup: g,
			Stats:   models.ShapeStats(stats[g.ID]),
		})
	}
	return jsonSuccess(c, out)
}

// Get returns one ad group by id.
func (h *AdGroupHandler) Get(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	group, err := sa.AdGroup(c.Context(), c.Params("id"))
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, group)
}

// Create creates an ad group under a campaign.
func (h *AdGroupHandler) Create(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		CampaignID string `json:"campaignId"`
		Name       string `json:"name"`
		BidAmt     int    `json:"bidAmt"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.CampaignID == "" || body.Name == "" {
		return jsonError(c, fiber.StatusBadRequest, "campaignId and name are required")
	}

	group, err := sa.CreateAdGroup(c.Context(), body.CampaignID, body.Name)
	if err != nil {
		return upstreamError(c, err)
	}

	if body.BidAmt > 0 {
		if !validation.ValidateBidAmount(body.BidAmt) {
			return jsonError(c, fiber.StatusBadRequest, "bidAmt out of range")
		}
		if err := sa.UpdateAdGroupBid(c.Context(), group.ID, body.BidAmt); err != nil {
			return upstreamError(c, err)
		}
		group.BidAmt = body.BidAmt
	}
	return jsonSuccess(c, group)
}

// UpdateBid sets the default bid on one or more ad groups.
func (h *AdGroupHandler) UpdateBid(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		IDs    []string `json:"ids"`
		BidAmt int      `json:"bidAmt"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.IDs) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "ids are required")
	}
	if !validation.ValidateBidAmount(body.BidAmt) {
		return jsonError(c, fiber.StatusBadRequest, "bidAmt out of range")
	}

	updated := make([]string, 0, len(body.IDs))
	failed := map[string]string{}
	for _, id := range body.IDs {
		if err := sa.UpdateAdGroupBid(c.Context(), id, body.BidAmt); err != nil {
			failed[id] = err.Error()
			continue
		}
		updated = append(updated, id)
	}

	return jsonSuccess(c, fiber.Map{
		"updated": updated,
		"failed":  failed,
	})
}

package api

import (
	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/models"
	"bidpilot/internal/searchad"
)

// CampaignHandler serves campaign listings via JSON API.
type CampaignHandler struct{}

// NewCampaignHandler creates a new API campaign handler.
func NewCampaignHandler() *CampaignHandler {
	return &CampaignHandler{}
}

// List returns every campaign with today's performance stats attached.
func (h *CampaignHandler) List(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	campaigns, err := sa.Campaigns(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}

	ids := make([]string, 0, len(campaigns))
	for _, cmp := range campaigns {
		ids = append(ids, cmp.ID)
	}
	stats, err := statsByID(c.Context(), sa, ids, searchad.Today())
	if err != nil {
		return upstreamError(c, err)
	}

	out := make([]models.CampaignSummary, 0, len(campaigns))
	for _, cmp := range campaigns {
		out = append(out, models.CampaignSummary{
			Campaign: cmp,
			Stats:    models.ShapeStats(stats[cmp.ID]),
		})
	}
	return jsonSuccess(c, out)
}

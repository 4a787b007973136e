package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/config"
	"bidpilot/internal/expansion"
)

// ExpansionHandler runs keyword group expansion via JSON API.
type ExpansionHandler struct {
	strategy *config.StrategyConfig
}

// NewExpansionHandler creates a new API expansion handler.
func NewExpansionHandler(strategy *config.StrategyConfig) *ExpansionHandler {
	return &ExpansionHandler{strategy: strategy}
}

// Run adds keywords to an ad group family, spilling into numbered sibling
// groups as capacity runs out.
func (h *ExpansionHandler) Run(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		AdGroupID string   `json:"adgroupId"`
		Keywords  []string `json:"keywords"`
		BidAmt    int      `json:"bidAmt"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	// An empty keyword list is a valid no-op run, not a client error.
	if body.AdGroupID == "" {
		return jsonError(c, fiber.StatusBadRequest, "adgroupId is required")
	}

	var cloner expansion.GroupCloner
	if h.strategy == nil || h.strategy.Expansion.CloneAssets {
		cloner = expansion.NewCloner(sa)
	}

	report, err := expansion.NewAllocator(sa, cloner).Expand(c.Context(), body.AdGroupID, body.Keywords, body.BidAmt)
	if err != nil {
		if errors.Is(err, expansion.ErrStalled) {
			// The partial report still matters when a run stalls.
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"status": "error",
				"error":  err.Error(),
				"data":   report,
			})
		}
		return upstreamError(c, err)
	}
	return jsonSuccess(c, report)
}

package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/audit"
	"bidpilot/internal/bidding"
	"bidpilot/internal/config"
	"bidpilot/internal/db"
	"bidpilot/internal/rank"
)

// BiddingHandler runs bid adjustment passes via JSON API.
type BiddingHandler struct {
	strategy *config.StrategyConfig
	auditor  *audit.Logger
	db       *db.DB
}

// NewBiddingHandler creates a new API bidding handler. The database may be
// nil; bid history is then not persisted.
func NewBiddingHandler(strategy *config.StrategyConfig, auditor *audit.Logger, database *db.DB) *BiddingHandler {
	return &BiddingHandler{strategy: strategy, auditor: auditor, db: database}
}

// Run executes one bid pass over a campaign or ad group and returns the
// full decision report.
func (h *BiddingHandler) Run(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		Target string          `json:"target"`
		DryRun bool            `json:"dryRun"`
		Policy *bidding.Policy `json:"policy"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.Target == "" {
		return jsonError(c, fiber.StatusBadRequest, "target is required")
	}

	policy := h.strategy.PolicyFor(body.Target)
	if body.Policy != nil {
		policy = body.Policy.Normalize()
	}

	var history bidding.HistorySink
	if h.db != nil {
		history = h.db
	}

	runner := bidding.NewRunner(sa, rank.NewResolver(sa), h.auditor, history, policy)
	report, err := runner.Run(c.Context(), body.Target, body.DryRun)
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, report)
}

package handlers

import (
	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/config"
	"bidpilot/internal/db"
)

// DashboardHandler renders the operator dashboard.
type DashboardHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(database *db.DB, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{db: database, cfg: cfg}
}

// Index shows recent bid activity and visit counts.
func (h *DashboardHandler) Index(c fiber.Ctx) error {
	data := fiber.Map{
		"Title":      "Dashboard",
		"SiteTitle":  h.cfg.SiteTitle,
		"SiteFooter": h.cfg.SiteFooter,
		"HasDB":      h.db != nil,
	}

	if h.db != nil {
		if changes, err := h.db.RecentBidChanges(c.Context(), 20); err == nil {
			data["BidChanges"] = changes
		}
		if counts, err := h.db.CountVisitsByType(c.Context()); err == nil {
			data["VisitCounts"] = counts
		}
	}

	return c.Render("dashboard", data)
}

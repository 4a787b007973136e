package handlers

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"bidpilot/internal/db"
	"bidpilot/internal/models"
	"bidpilot/internal/validation"
)

// TrackHandler records landing-page visits and forwards the visitor on.
// Ad landing URLs are pointed at /t?url=<destination> so every paid click
// is classified and logged before the redirect.
type TrackHandler struct {
	db *db.DB
}

// NewTrackHandler creates a new track handler. The database may be nil;
// visits are then classified but not persisted.
func NewTrackHandler(database *db.DB) *TrackHandler {
	return &TrackHandler{db: database}
}

// Redirect classifies the visit and redirects to the destination URL.
func (h *TrackHandler) Redirect(c fiber.Ctx) error {
	dest := c.Query("url", "")
	if dest == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}
	parsed, err := url.Parse(dest)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid destination url")
	}

	// The classifier reads the ad click parameters off the full original
	// request URI, not just the destination.
	visitType, keyword := validation.ClassifyVisit(string(c.Request().URI().FullURI()), c.Get("Referer"))

	if h.db != nil {
		visit := &models.Visit{
			ID:        uuid.New(),
			Timestamp: time.Now(),
			IP:        c.IP(),
			Type:      visitType,
			Keyword:   keyword,
			URL:       dest,
			Referrer:  c.Get("Referer"),
		}
		if err := h.db.InsertVisit(c.Context(), visit); err != nil {
			slog.Error("visit not recorded", "ip", visit.IP, "error", err)
		}
	}

	return c.Redirect().Status(fiber.StatusFound).To(dest)
}

// Record classifies and stores a visit reported by the landing page itself
// (a tracking snippet posting its location and referrer), for sites that
// can't route traffic through the redirect.
func (h *TrackHandler) Record(c fiber.Ctx) error {
	var body struct {
		URL      string `json:"url"`
		Referrer string `json:"referrer"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if body.URL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}

	visitType, keyword := validation.ClassifyVisit(body.URL, body.Referrer)

	if h.db != nil {
		visit := &models.Visit{
			ID:        uuid.New(),
			Timestamp: time.Now(),
			IP:        c.IP(),
			Type:      visitType,
			Keyword:   keyword,
			URL:       body.URL,
			Referrer:  body.Referrer,
		}
		if err := h.db.InsertVisit(c.Context(), visit); err != nil {
			slog.Error("visit not recorded", "ip", visit.IP, "error", err)
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   fiber.Map{"type": visitType, "keyword": keyword},
	})
}

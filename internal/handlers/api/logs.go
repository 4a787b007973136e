package api

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/audit"
	"bidpilot/internal/db"
)

// LogHandler serves persisted bid history and visit records via JSON API,
// and accepts externally produced bid decisions for the CSV audit log.
type LogHandler struct {
	db      *db.DB
	auditor *audit.Logger
}

// NewLogHandler creates a new API log handler. The database may be nil;
// history endpoints then answer 503. CSV saving works regardless.
func NewLogHandler(database *db.DB, auditor *audit.Logger) *LogHandler {
	return &LogHandler{db: database, auditor: auditor}
}

// BidChanges returns the most recent persisted bid adjustments.
func (h *LogHandler) BidChanges(c fiber.Ctx) error {
	if h.db == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "bid history requires a database")
	}

	limit := parseLimit(c.Query("limit", "100"))
	changes, err := h.db.RecentBidChanges(c.Context(), limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch bid history")
	}
	return jsonSuccess(c, changes)
}

// Visits returns the most recent tracked visits.
func (h *LogHandler) Visits(c fiber.Ctx) error {
	if h.db == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "visit tracking requires a database")
	}

	limit := parseLimit(c.Query("limit", "1000"))
	visits, err := h.db.RecentVisits(c.Context(), limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch visits")
	}
	return jsonSuccess(c, visits)
}

// SaveBidLog appends externally produced bid decisions to the daily CSV
// audit log, so manual sessions share the same paper trail as automated
// passes.
func (h *LogHandler) SaveBidLog(c fiber.Ctx) error {
	var body struct {
		Entries []struct {
			Keyword string `json:"keyword"`
			OldBid  int    `json:"oldBid"`
			NewBid  int    `json:"newBid"`
			Reason  string `json:"reason"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.Entries) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "entries is required")
	}

	now := time.Now()
	entries := make([]audit.Entry, 0, len(body.Entries))
	for _, e := range body.Entries {
		if e.Keyword == "" {
			return jsonError(c, fiber.StatusBadRequest, "every entry needs a keyword")
		}
		entries = append(entries, audit.Entry{
			Time:    now,
			Keyword: e.Keyword,
			OldBid:  e.OldBid,
			NewBid:  e.NewBid,
			Reason:  e.Reason,
		})
	}
	if err := h.auditor.Append(entries); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to write bid log")
	}
	return jsonSuccess(c, fiber.Map{"saved": len(entries)})
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 1000 {
		return 100
	}
	return n
}

package api

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"bidpilot/internal/middleware"
	"bidpilot/internal/models"
	"bidpilot/internal/searchad"
)

// client builds an upstream gateway from the credentials the middleware
// extracted for this request. The second return is false when the
// credentials middleware did not run on the route.
func client(c fiber.Ctx) (*searchad.Client, bool) {
	creds, ok := middleware.Credentials(c)
	if !ok {
		return nil, false
	}
	return searchad.New(creds, ""), true
}

// requireClient is the common prologue of every upstream-backed handler.
func requireClient(c fiber.Ctx) (*searchad.Client, error) {
	sa, ok := client(c)
	if !ok {
		return nil, jsonError(c, fiber.StatusUnauthorized, "missing upstream credentials")
	}
	return sa, nil
}

// statsByID fetches stats for the given entity ids over one window,
// chunked to the upstream's per-call ceiling.
func statsByID(ctx context.Context, sa *searchad.Client, ids []string, window searchad.StatsWindow) (map[string]*models.StatRow, error) {
	out := make(map[string]*models.StatRow, len(ids))
	for start := 0; start < len(ids); start += searchad.MaxStatsIDs {
		end := min(start+searchad.MaxStatsIDs, len(ids))
		rows, err := sa.Stats(ctx, ids[start:end], window)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			out[rows[i].ID] = &rows[i]
		}
	}
	return out, nil
}

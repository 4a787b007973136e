// Package rank resolves observed keyword ranks and target-rank bid
// estimates from the upstream stats endpoints.
package rank

import (
	"context"
	"log/slog"
	"time"

	"bidpilot/internal/models"
	"bidpilot/internal/searchad"
)

// StatsAPI is the slice of the gateway the resolver needs.
type StatsAPI interface {
	Stats(ctx context.Context, ids []string, window searchad.StatsWindow) ([]models.StatRow, error)
	EstimateBidsByRank(ctx context.Context, ids []string, position int, device string) (map[string]int, error)
}

// interChunkDelay throttles consecutive chunk queries so a large account
// doesn't trip the upstream rate limit.
const interChunkDelay = 50 * time.Millisecond

// Resolver answers "what rank is this keyword at" with a multi-window
// fallback: today's average first, then yesterday's, then the trailing
// thirty days. Zero means no observation in any window, not rank zero.
type Resolver struct {
	api   StatsAPI
	delay time.Duration
	now   func() time.Time
}

// NewResolver creates a resolver over the given gateway.
func NewResolver(api StatsAPI) *Resolver {
	return &Resolver{api: api, delay: interChunkDelay, now: time.Now}
}

// ResolveRanks returns the best-available observed rank for every keyword
// id. Ids with no data in any window map to 0.0. A failed chunk or window
// degrades to "no data" for its ids without aborting the rest.
func (r *Resolver) ResolveRanks(ctx context.Context, ids []string) map[string]float64 {
	ranks := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return ranks
	}

	windows := []searchad.StatsWindow{
		searchad.Today(),
		searchad.Yesterday(),
		searchad.Trailing30Days(r.now()),
	}

	for start := 0; start < len(ids); start += searchad.MaxStatsIDs {
		if ctx.Err() != nil {
			return ranks
		}
		chunk := ids[start:min(start+searchad.MaxStatsIDs, len(ids))]
		for _, id := range chunk {
			ranks[id] = 0.0
		}

		for _, window := range windows {
			rows, err := r.api.Stats(ctx, chunk, window)
			if err != nil {
				slog.Warn("rank window query failed", "window", window.DatePreset, "keywords", len(chunk), "error", err)
				continue
			}
			// First non-zero observation wins; later windows only fill
			// keywords that still have none.
			for _, row := range rows {
				if ranks[row.ID] == 0.0 {
					ranks[row.ID] = row.AvgRank
				}
			}
		}

		r.throttle(ctx)
	}
	return ranks
}

// ResolveBidEstimates returns the upstream's estimated bid for holding
// targetRank, per keyword id. Missing estimates map to 0. Chunk failures
// are independent.
func (r *Resolver) ResolveBidEstimates(ctx context.Context, ids []string, targetRank int, device string) map[string]int {
	estimates := make(map[string]int, len(ids))
	for start := 0; start < len(ids); start += searchad.MaxStatsIDs {
		if ctx.Err() != nil {
			return estimates
		}
		chunk := ids[start:min(start+searchad.MaxStatsIDs, len(ids))]

		chunkEst, err := r.api.EstimateBidsByRank(ctx, chunk, targetRank, device)
		if err != nil {
			slog.Warn("bid estimate query failed", "keywords", len(chunk), "error", err)
		}
		for _, id := range chunk {
			estimates[id] = chunkEst[id]
		}

		r.throttle(ctx)
	}
	return estimates
}

func (r *Resolver) throttle(ctx context.Context) {
	if r.delay <= 0 {
		return
	}
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
	}
}

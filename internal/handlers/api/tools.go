package api

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"bidpilot/internal/models"
	"bidpilot/internal/searchad"
)

// ToolsHandler serves account-level utility operations via JSON API.
type ToolsHandler struct{}

// NewToolsHandler creates a new API tools handler.
func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// GroupCount is the keyword occupancy of one ad group.
type GroupCount struct {
	GroupID  string `json:"nccAdgroupId"`
	Name     string `json:"name"`
	Keywords int    `json:"keywords"`
	Capacity int    `json:"capacity"`
}

// CampaignCount is the keyword occupancy of one campaign.
type CampaignCount struct {
	CampaignID string       `json:"nccCampaignId"`
	Name       string       `json:"name"`
	Keywords   int          `json:"keywords"`
	Groups     []GroupCount `json:"groups"`
}

// KeywordCounts walks the whole account and reports keyword occupancy per
// campaign and ad group, so operators can see which families are near the
// per-group capacity.
func (h *ToolsHandler) KeywordCounts(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	campaigns, err := sa.Campaigns(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}

	out := make([]CampaignCount, len(campaigns))
	g, ctx := errgroup.WithContext(c.Context())
	g.SetLimit(adFanout)
	for i, cmp := range campaigns {
		g.Go(func() error {
			groups, err := sa.AdGroups(ctx, cmp.ID)
			if err != nil {
				return err
			}

			counts := make([]GroupCount, len(groups))
			var mu sync.Mutex
			total := 0

			inner, ictx := errgroup.WithContext(ctx)
			inner.SetLimit(adFanout)
			for j, grp := range groups {
				inner.Go(func() error {
					keywords, err := sa.Keywords(ictx, grp.ID)
					if err != nil {
						return err
					}
					counts[j] = GroupCount{
						GroupID:  grp.ID,
						Name:     grp.Name,
						Keywords: len(keywords),
						Capacity: models.MaxKeywordsPerGroup,
					}
					mu.Lock()
					total += len(keywords)
					mu.Unlock()
					return nil
				})
			}
			if err := inner.Wait(); err != nil {
				return err
			}

			out[i] = CampaignCount{
				CampaignID: cmp.ID,
				Name:       cmp.Name,
				Keywords:   total,
				Groups:     counts,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, out)
}

// ListIPExclusions returns the account's blocked visitor addresses.
func (h *ToolsHandler) ListIPExclusions(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	list, err := sa.IPExclusions(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, list)
}

// AddIPExclusion appends one address to the blocked list. The upstream only
// supports whole-list replacement, so this is a read-modify-write.
func (h *ToolsHandler) AddIPExclusion(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	var body struct {
		IP   string `json:"ip"`
		Memo string `json:"memo"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if net.ParseIP(body.IP) == nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid ip address")
	}

	list, err := sa.IPExclusions(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}
	for _, e := range list {
		if e.IP == body.IP {
			return jsonSuccess(c, list)
		}
	}

	list = append(list, searchad.IPExclusion{IP: body.IP, Memo: body.Memo})
	if err := sa.PutIPExclusions(c.Context(), list); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, list)
}

// RemoveIPExclusion drops one address from the blocked list.
func (h *ToolsHandler) RemoveIPExclusion(c fiber.Ctx) error {
	sa, err := requireClient(c)
	if err != nil {
		return err
	}

	ip := c.Params("ip")
	list, err := sa.IPExclusions(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}

	kept := list[:0]
	for _, e := range list {
		if e.IP != ip {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(list) {
		return jsonError(c, fiber.StatusNotFound, "ip not in exclusion list")
	}

	if err := sa.PutIPExclusions(c.Context(), kept); err != nil {
		return upstreamError(c, err)
	}
	return jsonSuccess(c, kept)
}
